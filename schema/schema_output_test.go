package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/huangsam/hmpi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSampleOutput(t *testing.T) {
	r := schema.SampleResult{
		Sample: schema.Sample{ID: "W1", Location: "North Well", Coords: &schema.Coordinates{Lat: 22.5, Lon: 88.3}},
		Indices: []schema.MetalIndex{
			{Metal: schema.Lead, Ci: 0.02, Si: 0.01, Qi: 200, Wi: 3.0 / 13.0, SIi: 600.0 / 13.0, Valid: true},
			{Metal: schema.Cadmium, Si: 0.003, Wi: 10.0 / 13.0},
		},
		HMPI:     600.0 / 13.0,
		Defined:  true,
		Category: schema.SafeRisk,
	}

	out := schema.NewSampleOutput(r)
	assert.Equal(t, "W1", out.SampleID)
	assert.Equal(t, "North Well", out.Location)
	assert.Equal(t, 1, out.NoOfMetals)
	require.NotNil(t, out.HMPI)
	assert.Equal(t, 46.1538, *out.HMPI)
	assert.Equal(t, schema.SafeRisk, out.RiskCategory)
	assert.Equal(t, &schema.Coordinates{Lat: 22.5, Lon: 88.3}, out.Geometry)

	require.NotNil(t, out.Concentrations[schema.Lead])
	assert.Equal(t, 0.02, *out.Concentrations[schema.Lead])
	assert.Nil(t, out.Concentrations[schema.Cadmium])

	assert.Equal(t, 0.2308, out.Indices[schema.Lead].Wi)
	assert.Nil(t, out.Indices[schema.Cadmium].Qi)
	assert.Equal(t, 0.7692, out.Indices[schema.Cadmium].Wi)
}

func TestNewSampleOutputUndefined(t *testing.T) {
	out := schema.NewSampleOutput(schema.SampleResult{Sample: schema.Sample{ID: "S3"}})

	data, err := json.Marshal(out)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["hmpi"])
	assert.Nil(t, decoded["geometry"])
	assert.NotContains(t, decoded, "risk_category")
	assert.NotContains(t, decoded, "location")
}

func TestNewClusterOutput(t *testing.T) {
	res := schema.ClusterResult{
		Zones: []schema.ClusterZone{
			{
				ClusterID: 0,
				AvgValue:  123.456,
				Category:  schema.HighRisk,
				Color:     "#ef4444",
				Points:    []schema.ClusterPoint{{ID: "a", Lat: 1, Lon: 2}, {ID: "b", Lat: 3, Lon: 4}},
			},
		},
	}
	out := schema.NewClusterOutput(res)
	require.Len(t, out.Clusters, 1)
	assert.Equal(t, 123.46, out.Clusters[0].AvgHMPI)
	assert.Equal(t, [][2]float64{{1, 2}, {3, 4}}, out.Clusters[0].Points)

	empty := schema.NewClusterOutput(schema.ClusterResult{})
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"clusters":[]}`, string(data))
}
