package algo

import (
	"testing"

	"github.com/huangsam/hmpi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestForecastPoints tests grouping of forecast rows by sample.
func TestForecastPoints(t *testing.T) {
	table := schema.RawTable{
		Headers: []string{"Sample_ID", "Latitude", "Longitude", "Predicted_HMPI_Ensemble"},
		Rows: [][]string{
			{"W1", "10", "20", "50"},
			{"W1", "", "", "70"},
			{"W2", "", "", "30"},
			{"W3", "11", "21", "NA"},
			{"W4", "12", "22", "90"},
		},
	}

	points, skipped, err := ForecastPoints(table, DefaultForecastColumn)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, []schema.ClusterPoint{
		{ID: "W1", Lat: 10, Lon: 20, Value: 60},
		{ID: "W4", Lat: 12, Lon: 22, Value: 90},
	}, points)
}

// TestForecastPointsOrder tests that groups are ordered by sample id and that
// each coordinate comes from its own first available cell.
func TestForecastPointsOrder(t *testing.T) {
	table := schema.RawTable{
		Headers: []string{"Sample_ID", "Latitude", "Longitude", "Predicted_HMPI_Ensemble"},
		Rows: [][]string{
			{"W9", "30", "40", "10"},
			{"W2", "5", "", "20"},
			{"W2", "", "6", "40"},
			{"W5", "7", "8", "15"},
		},
	}

	points, skipped, err := ForecastPoints(table, DefaultForecastColumn)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, []schema.ClusterPoint{
		{ID: "W2", Lat: 5, Lon: 6, Value: 30},
		{ID: "W5", Lat: 7, Lon: 8, Value: 15},
		{ID: "W9", Lat: 30, Lon: 40, Value: 10},
	}, points)
}

// TestForecastPointsColumn tests value column lookup.
func TestForecastPointsColumn(t *testing.T) {
	table := schema.RawTable{
		Headers: []string{"Latitude", "Longitude", "hmpi forecast"},
		Rows:    [][]string{{"1", "2", "40"}, {"3", "4", "45"}},
	}

	points, _, err := ForecastPoints(table, "HMPI_Forecast")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "S1", points[0].ID)
	assert.Equal(t, "S2", points[1].ID)

	_, _, err = ForecastPoints(table, DefaultForecastColumn)
	assert.ErrorIs(t, err, ErrData)
}
