package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/hmpi/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readRows reads every row of a Parquet file written with T's schema.
func readRows[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"analysis run", new(AnalysisRun), []string{"analysis_id", "start_time", "end_time", "run_duration_ms", "total_samples", "config_params"}},
		{"sample result", new(SampleResult), []string{"analysis_id", "sample_id", "analysis_time", "latitude", "longitude", "metal_count", "hmpi", "risk_category"}},
		{"index row", new(IndexRow), []string{"dataset_id", "sample_id", "metal", "concentration", "limit", "qi", "wi", "sii", "hmpi", "risk_category"}},
		{"cluster point", new(ClusterPointRow), []string{"cluster_id", "avg_value", "risk_category", "color", "sample_id", "latitude", "longitude", "value"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteAnalysisRunsParquet(t *testing.T) {
	now := time.Now().UTC()
	end := now.Add(1500 * time.Millisecond)
	duration := int32(1500)
	params := `{"strategy":"half"}`

	data := ConvertAnalysisRunRecords([]schema.AnalysisRunRecord{
		{AnalysisID: 1, StartTime: now, EndTime: &end, RunDurationMs: &duration, TotalSamples: 12, ConfigParams: &params},
		{AnalysisID: 2, StartTime: now},
	})

	path := filepath.Join(t.TempDir(), "runs.parquet")
	require.NoError(t, WriteAnalysisRunsParquet(data, path))

	got := readRows[AnalysisRun](t, path)
	require.Len(t, got, 2)
	assert.Equal(t, int32(12), got[0].TotalSamples)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, end, *got[0].EndTime, time.Nanosecond)
	require.NotNil(t, got[0].ConfigParams)
	assert.Equal(t, params, *got[0].ConfigParams)
	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteSampleResultsParquet(t *testing.T) {
	lat, lon, h := 22.5, 88.3, 200.0
	data := ConvertSampleResultRecords([]schema.SampleResultRecord{
		{AnalysisID: 1, SampleID: "W1", AnalysisTime: time.Now(), Latitude: &lat, Longitude: &lon, MetalCount: 2, HMPI: &h, RiskCategory: "High"},
		{AnalysisID: 1, SampleID: "W2", AnalysisTime: time.Now()},
	})

	path := filepath.Join(t.TempDir(), "samples.parquet")
	require.NoError(t, WriteSampleResultsParquet(data, path))

	got := readRows[SampleResult](t, path)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].HMPI)
	assert.InDelta(t, 200.0, *got[0].HMPI, 1e-9)
	assert.Equal(t, "High", got[0].RiskCategory)
	assert.Nil(t, got[1].Latitude)
	assert.Nil(t, got[1].HMPI)
}

func TestWriteEmptyAndInvalidPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteAnalysisRunsParquet([]AnalysisRun{}, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size(), "file should contain the schema even if empty")

	assert.Error(t, WriteSampleResultsParquet(nil, "/nonexistent/directory/out.parquet"))
}

func TestConvertIndexResult(t *testing.T) {
	res := schema.IndexResult{
		DatasetID: "ds-1",
		Source:    "wells.csv",
		Samples: []schema.SampleResult{
			{
				Sample: schema.Sample{ID: "W1", Location: "North", Coords: &schema.Coordinates{Lat: 22.5, Lon: 88.3}},
				Indices: []schema.MetalIndex{
					{Metal: schema.Lead, Ci: 0.02, Si: 0.01, Qi: 200, Wi: 3.0 / 13, SIi: 200 * 3.0 / 13, Valid: true},
					{Metal: schema.Cadmium, Si: 0.003, Wi: 10.0 / 13},
				},
				HMPI:     200 * 3.0 / 13,
				Defined:  true,
				Category: schema.ModerateRisk,
			},
			{
				Sample:  schema.Sample{ID: "W2"},
				Indices: []schema.MetalIndex{{Metal: schema.Lead, Si: 0.01, Wi: 3.0 / 13}},
			},
		},
	}

	rows := ConvertIndexResult(res, 2)
	require.Len(t, rows, 3)

	lead := rows[0]
	assert.Equal(t, "ds-1", lead.DatasetID)
	assert.Equal(t, "Lead", lead.Metal)
	require.NotNil(t, lead.Location)
	assert.Equal(t, "North", *lead.Location)
	require.NotNil(t, lead.SIi)
	assert.InDelta(t, 46.15, *lead.SIi, 1e-9)
	assert.InDelta(t, 0.23, lead.Wi, 1e-9)
	require.NotNil(t, lead.RiskCategory)
	assert.Equal(t, "Moderate", *lead.RiskCategory)

	cd := rows[1]
	assert.Nil(t, cd.Concentration)
	assert.Nil(t, cd.Qi)
	assert.InDelta(t, 0.003, cd.Limit, 1e-12)

	undefined := rows[2]
	assert.Nil(t, undefined.HMPI)
	assert.Nil(t, undefined.RiskCategory)
	assert.Nil(t, undefined.Latitude)

	path := filepath.Join(t.TempDir(), "index.parquet")
	require.NoError(t, WriteRowsFile(rows, path))
	assert.Len(t, readRows[IndexRow](t, path), 3)
}

func TestConvertClusterResult(t *testing.T) {
	res := schema.ClusterResult{
		Zones: []schema.ClusterZone{
			{ClusterID: 0, AvgValue: 20.014, Category: schema.SafeRisk, Color: schema.SafeColor, Points: []schema.ClusterPoint{
				{ID: "A0", Lat: 10, Lon: 10, Value: 20},
				{ID: "A1", Lat: 10.01, Lon: 10.01, Value: 20.03},
			}},
		},
		Noise: 1,
	}

	rows := ConvertClusterResult(res)
	require.Len(t, rows, 2)
	assert.InDelta(t, 20.01, rows[0].AvgValue, 1e-9)
	assert.Equal(t, "A1", rows[1].SampleID)
	assert.Equal(t, schema.SafeColor, rows[1].Color)
}
