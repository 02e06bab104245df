package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/internal/parquet"
)

// ErrNoAnalysisData is returned when there are no recorded runs to export.
var ErrNoAnalysisData = errors.New("no analysis data found to export")

// ExecuteAnalysisExport writes every recorded run and sample result to two
// Parquet files named after outputFile.
func ExecuteAnalysisExport(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is disabled. Set --analysis-backend to enable it")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return ErrNoAnalysisData
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total sample records: %d\n", status.TableSizes[sampleResultsTable])

	runs, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	samples, err := store.GetAllSampleResults()
	if err != nil {
		return fmt.Errorf("failed to retrieve sample results: %w", err)
	}

	runRows := parquet.ConvertAnalysisRunRecords(runs)
	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(runRows, runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(runRows), runsFile)

	sampleRows := parquet.ConvertSampleResultRecords(samples)
	samplesFile := outputFile + ".sample_results.parquet"
	if err := parquet.WriteSampleResultsParquet(sampleRows, samplesFile); err != nil {
		return fmt.Errorf("failed to write sample results: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d sample results to: %s\n", len(sampleRows), samplesFile)

	return nil
}
