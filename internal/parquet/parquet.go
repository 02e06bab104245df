// Package parquet provides row types and writers for exporting index results
// and analysis history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/hmpi/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single index run with metadata.
// This struct maps to the hmpi_analysis_runs database table.
type AnalysisRun struct {
	AnalysisID    int64      `parquet:"analysis_id,snappy"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalSamples  int32      `parquet:"total_samples,snappy"`

	// ConfigParams contains the JSON-encoded run settings
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// SampleResult is the stored outcome for one sample of a run.
// This struct maps to the hmpi_sample_results database table.
type SampleResult struct {
	AnalysisID   int64     `parquet:"analysis_id,snappy"`
	SampleID     string    `parquet:"sample_id,snappy"`
	AnalysisTime time.Time `parquet:"analysis_time,snappy"`
	Latitude     *float64  `parquet:"latitude,optional,snappy"`
	Longitude    *float64  `parquet:"longitude,optional,snappy"`
	MetalCount   int32     `parquet:"metal_count,snappy"`
	HMPI         *float64  `parquet:"hmpi,optional,snappy"`
	RiskCategory string    `parquet:"risk_category,snappy"`
}

// IndexRow is one metal term of one sample, in long format. Sample-level
// columns repeat on every metal row of the sample.
type IndexRow struct {
	DatasetID     string   `parquet:"dataset_id,snappy"`
	Source        string   `parquet:"source,snappy"`
	SampleID      string   `parquet:"sample_id,snappy"`
	Location      *string  `parquet:"location,optional,snappy"`
	Latitude      *float64 `parquet:"latitude,optional,snappy"`
	Longitude     *float64 `parquet:"longitude,optional,snappy"`
	Metal         string   `parquet:"metal,snappy"`
	Concentration *float64 `parquet:"concentration,optional,snappy"`
	Limit         float64  `parquet:"limit,snappy"`
	Qi            *float64 `parquet:"qi,optional,snappy"`
	Wi            float64  `parquet:"wi,snappy"`
	SIi           *float64 `parquet:"sii,optional,snappy"`
	HMPI          *float64 `parquet:"hmpi,optional,snappy"`
	RiskCategory  *string  `parquet:"risk_category,optional,snappy"`
}

// ClusterPointRow is one member of a risk zone.
type ClusterPointRow struct {
	ClusterID    int32   `parquet:"cluster_id,snappy"`
	AvgValue     float64 `parquet:"avg_value,snappy"`
	RiskCategory string  `parquet:"risk_category,snappy"`
	Color        string  `parquet:"color,snappy"`
	SampleID     string  `parquet:"sample_id,snappy"`
	Latitude     float64 `parquet:"latitude,snappy"`
	Longitude    float64 `parquet:"longitude,snappy"`
	Value        float64 `parquet:"value,snappy"`
}

// WriteRows writes rows to w using the schema inferred from T.
func WriteRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRowsFile writes rows to a new file at outputPath.
func WriteRowsFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteRows(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteAnalysisRunsParquet writes analysis runs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return WriteRowsFile(data, outputPath)
}

// WriteSampleResultsParquet writes stored sample results to a Parquet file.
func WriteSampleResultsParquet(data []SampleResult, outputPath string) error {
	return WriteRowsFile(data, outputPath)
}

// ConvertAnalysisRunRecords converts store records to Parquet rows.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:    record.AnalysisID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalSamples:  record.TotalSamples,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertSampleResultRecords converts store records to Parquet rows.
func ConvertSampleResultRecords(records []schema.SampleResultRecord) []SampleResult {
	result := make([]SampleResult, len(records))
	for i, record := range records {
		result[i] = SampleResult{
			AnalysisID:   record.AnalysisID,
			SampleID:     record.SampleID,
			AnalysisTime: record.AnalysisTime,
			Latitude:     record.Latitude,
			Longitude:    record.Longitude,
			MetalCount:   record.MetalCount,
			HMPI:         record.HMPI,
			RiskCategory: record.RiskCategory,
		}
	}
	return result
}

// ConvertIndexResult flattens an index result into one row per sample and metal.
// Values are rounded to precision decimals.
func ConvertIndexResult(res schema.IndexResult, precision int) []IndexRow {
	var rows []IndexRow
	for _, r := range res.Samples {
		base := IndexRow{
			DatasetID: res.DatasetID,
			Source:    res.Source,
			SampleID:  r.Sample.ID,
		}
		if r.Sample.Location != "" {
			loc := r.Sample.Location
			base.Location = &loc
		}
		if c := r.Sample.Coords; c != nil {
			lat, lon := c.Lat, c.Lon
			base.Latitude, base.Longitude = &lat, &lon
		}
		if r.Defined {
			base.HMPI = roundedPtr(r.HMPI, precision)
			cat := string(r.Category)
			base.RiskCategory = &cat
		}
		for _, mi := range r.Indices {
			row := base
			row.Metal = string(mi.Metal)
			row.Limit = mi.Si
			row.Wi = schema.RoundTo(mi.Wi, precision)
			if mi.Valid {
				row.Concentration = roundedPtr(mi.Ci, precision)
				row.Qi = roundedPtr(mi.Qi, precision)
				row.SIi = roundedPtr(mi.SIi, precision)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// ConvertClusterResult produces one row per clustered point. Noise is omitted.
func ConvertClusterResult(res schema.ClusterResult) []ClusterPointRow {
	var rows []ClusterPointRow
	for _, z := range res.Zones {
		for _, p := range z.Points {
			rows = append(rows, ClusterPointRow{
				ClusterID:    int32(z.ClusterID),
				AvgValue:     schema.RoundTo(z.AvgValue, schema.ClusterPrecision),
				RiskCategory: string(z.Category),
				Color:        z.Color,
				SampleID:     p.ID,
				Latitude:     p.Lat,
				Longitude:    p.Lon,
				Value:        p.Value,
			})
		}
	}
	return rows
}

func roundedPtr(v float64, precision int) *float64 {
	r := schema.RoundTo(v, precision)
	return &r
}
