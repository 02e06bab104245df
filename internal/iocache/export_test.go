package iocache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/hmpi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteAnalysisExport(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	out := filepath.Join(t.TempDir(), "history")

	var buf bytes.Buffer
	assert.ErrorIs(t, ExecuteAnalysisExport(&buf, store, out), ErrNoAnalysisData)

	now := time.Now()
	id, err := store.BeginAnalysis(now, map[string]any{"strategy": "half"})
	require.NoError(t, err)
	require.NoError(t, store.RecordSampleResult(id, schema.SampleRecord{AnalysisTime: now, SampleID: "W1", MetalCount: 1, RiskCategory: "Safe"}))
	require.NoError(t, store.EndAnalysis(id, now.Add(time.Second), 1))

	require.NoError(t, ExecuteAnalysisExport(&buf, store, out))
	assert.Contains(t, buf.String(), "Exported 1 analysis runs")
	assert.Contains(t, buf.String(), "Exported 1 sample results")

	for _, suffix := range []string{".analysis_runs.parquet", ".sample_results.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestExecuteAnalysisExportErrors(t *testing.T) {
	var buf bytes.Buffer

	assert.Error(t, ExecuteAnalysisExport(&buf, &MockAnalysisStore{}, ""), "output file is required")
	assert.Error(t, ExecuteAnalysisExport(&buf, nil, "out"), "tracking must be enabled")

	failing := &MockAnalysisStore{}
	failing.On("GetStatus").Return(schema.AnalysisStatus{}, errors.New("db down"))
	assert.ErrorContains(t, ExecuteAnalysisExport(&buf, failing, "out"), "db down")

	partial := &MockAnalysisStore{}
	partial.On("GetStatus").Return(schema.AnalysisStatus{Backend: "mysql", TotalRuns: 1}, nil)
	partial.On("GetAllAnalysisRuns").Return(nil, errors.New("scan failed"))
	assert.ErrorContains(t, ExecuteAnalysisExport(&buf, partial, "out"), "scan failed")
	partial.AssertExpectations(t)
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	at := time.Date(2026, time.February, 3, 4, 5, 6, 0, time.Local)
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "sqlite", Connected: true, TotalEntries: 2, LastEntryTime: at, OldestEntryTime: at, TableSizeBytes: 4096})
	assert.Contains(t, buf.String(), "Total Entries: 2")
	assert.Contains(t, buf.String(), "Last Entry: 2026-02-03 04:05:06")
	assert.Contains(t, buf.String(), "Table Size: 4096 bytes")

	buf.Reset()
	PrintAnalysisStatus(&buf, schema.AnalysisStatus{
		Backend:            "sqlite",
		Connected:          true,
		TotalRuns:          1,
		LastRunID:          7,
		LastRunTime:        at,
		OldestRunTime:      at,
		TotalSamplesScored: 12,
		TableSizes:         map[string]int64{sampleResultsTable: 12, analysisRunsTable: 1},
	})
	out := buf.String()
	assert.Contains(t, out, "Last Run ID: 7")
	assert.Contains(t, out, "Total Samples Scored: 12")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(analysisRunsTable)), bytes.Index(buf.Bytes(), []byte(sampleResultsTable)),
		"tables are listed in name order")
}
