package algo

import (
	"testing"

	"github.com/huangsam/hmpi/schema"
	"github.com/stretchr/testify/assert"
)

// TestRankSamples tests sample ranking logic.
func TestRankSamples(t *testing.T) {
	build := func() []schema.SampleResult {
		return []schema.SampleResult{
			{Sample: schema.Sample{ID: "low"}, Defined: true, HMPI: 10},
			{Sample: schema.Sample{ID: "none"}},
			{Sample: schema.Sample{ID: "high"}, Defined: true, HMPI: 90},
			{Sample: schema.Sample{ID: "medium"}, Defined: true, HMPI: 50},
			{Sample: schema.Sample{ID: "critical"}, Defined: true, HMPI: 195},
		}
	}

	t.Run("rank and limit", func(t *testing.T) {
		ranked := RankSamples(build(), 2)
		assert.Equal(t, 2, len(ranked))
		assert.Equal(t, "critical", ranked[0].Sample.ID)
		assert.Equal(t, "high", ranked[1].Sample.ID)
	})

	t.Run("undefined sorts last", func(t *testing.T) {
		ranked := RankSamples(build(), 0)
		assert.Equal(t, 5, len(ranked))
		assert.Equal(t, "none", ranked[4].Sample.ID)
		for i := 1; i < 4; i++ {
			assert.LessOrEqual(t, ranked[i].HMPI, ranked[i-1].HMPI)
		}
	})

	t.Run("limit exceeds length", func(t *testing.T) {
		assert.Equal(t, 5, len(LimitSamples(build(), 10)))
	})
}

// TestRankZones tests zone ordering by average value.
func TestRankZones(t *testing.T) {
	zones := []schema.ClusterZone{
		{ClusterID: 0, AvgValue: 30},
		{ClusterID: 1, AvgValue: 120},
		{ClusterID: 2, AvgValue: 75},
	}
	ranked := RankZones(zones)
	assert.Equal(t, 1, ranked[0].ClusterID)
	assert.Equal(t, 2, ranked[1].ClusterID)
	assert.Equal(t, 0, ranked[2].ClusterID)
}
