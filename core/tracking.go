package core

import (
	"time"

	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/schema"
)

// trackResult records one scored dataset as an analysis run with a row per
// sample. Tracking failures are logged and never fail the request.
func trackResult(store contract.AnalysisStore, cfg *contract.Config, res schema.IndexResult, started time.Time) {
	if store == nil {
		return
	}

	params := cfg.ConfigParams()
	params["dataset_id"] = res.DatasetID
	params["source"] = res.Source
	params["metals"] = res.Metals

	analysisID, err := store.BeginAnalysis(started, params)
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return
	}
	if analysisID <= 0 {
		return
	}

	recorded := 0
	for _, r := range res.Samples {
		if err := store.RecordSampleResult(analysisID, schema.NewSampleRecord(r, started)); err != nil {
			logTrackingError("record", r.Sample.ID, err)
			continue
		}
		recorded++
	}

	if err := store.EndAnalysis(analysisID, time.Now(), recorded); err != nil {
		contract.LogWarn("Failed to finalize analysis tracking", err)
	}
}

// logTrackingError logs a per-sample tracking failure.
func logTrackingError(operation, sampleID string, err error) {
	contract.LogWarn("Failed to "+operation+" analysis result for sample "+sampleID, err)
}
