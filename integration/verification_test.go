//go:build basic

// Package integration contains integration tests for hmpi.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noBackends keeps integration runs away from the user's cache files.
var noBackends = []string{"HMPI_CACHE_BACKEND=none", "HMPI_ANALYSIS_BACKEND="}

type indexOutput struct {
	Source  string `json:"source"`
	Summary struct {
		Safe     int `json:"safe"`
		Moderate int `json:"moderate"`
		High     int `json:"high"`
	} `json:"summary"`
	Samples []struct {
		SampleID     string   `json:"sample_id"`
		HMPI         *float64 `json:"hmpi"`
		RiskCategory string   `json:"risk_category"`
	} `json:"samples"`
}

// TestIndexVerification checks the CLI's index values against hand-computed ones.
func TestIndexVerification(t *testing.T) {
	survey := writeSurvey(t)

	out, err := runCommand(t, noBackends, "index", survey, "--output", "json", "--sort", "hmpi")
	require.NoError(t, err)

	var results []indexOutput
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, 1, res.Summary.High)
	assert.Equal(t, 1, res.Summary.Moderate)
	assert.Equal(t, 1, res.Summary.Safe)

	expected := []struct {
		id       string
		hmpi     float64
		category string
	}{
		{"W1", 200, "High"},
		{"W2", 87.1795, "Moderate"},
		{"W3", 20, "Safe"},
	}
	require.Len(t, res.Samples, len(expected))
	for i, want := range expected {
		got := res.Samples[i]
		assert.Equal(t, want.id, got.SampleID)
		require.NotNil(t, got.HMPI)
		assert.InDelta(t, want.hmpi, *got.HMPI, 1e-4)
		assert.Equal(t, want.category, got.RiskCategory)
	}
}

// TestClustersGeoJSON checks that nearby high-index samples form one zone.
func TestClustersGeoJSON(t *testing.T) {
	survey := writeSurvey(t)
	outFile := filepath.Join(t.TempDir(), "zones.geojson")

	_, err := runCommand(t, noBackends, "clusters", survey, "--output", "geojson", "--output-file", outFile, "--min-pts", "1")
	require.NoError(t, err)
	assert.FileExists(t, outFile)
}

// TestInvalidStrategy checks that bad flags fail before any scoring.
func TestInvalidStrategy(t *testing.T) {
	survey := writeSurvey(t)
	_, err := runCommand(t, noBackends, "index", survey, "--strategy", "knn")
	require.Error(t, err)
}

// TestLimitsCSV checks the standard limits listing.
func TestLimitsCSV(t *testing.T) {
	out, err := runCommand(t, noBackends, "limits", "--output", "csv")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "Pb") && strings.Contains(out, "0.01"), out)
}
