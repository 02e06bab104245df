package schema

import "time"

// SampleRecord is one scored sample written to the analysis store.
type SampleRecord struct {
	AnalysisTime time.Time
	SampleID     string
	Latitude     *float64
	Longitude    *float64
	MetalCount   int
	HMPI         *float64
	RiskCategory string
}

// AnalysisRunRecord represents a row from the hmpi_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID    int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalSamples  int32
	ConfigParams  *string
}

// SampleResultRecord represents a row from the hmpi_sample_results table.
type SampleResultRecord struct {
	AnalysisID   int64
	SampleID     string
	AnalysisTime time.Time
	Latitude     *float64
	Longitude    *float64
	MetalCount   int32
	HMPI         *float64
	RiskCategory string
}

// NewSampleRecord converts a result into the row stored per sample.
func NewSampleRecord(r SampleResult, at time.Time) SampleRecord {
	rec := SampleRecord{
		AnalysisTime: at,
		SampleID:     r.Sample.ID,
		MetalCount:   r.MetalCount(),
		RiskCategory: string(r.Category),
	}
	if r.Sample.Coords != nil {
		lat, lon := r.Sample.Coords.Lat, r.Sample.Coords.Lon
		rec.Latitude, rec.Longitude = &lat, &lon
	}
	if r.Defined {
		h := Round4(r.HMPI)
		rec.HMPI = &h
	}
	return rec
}
