package algo

import (
	"testing"

	"github.com/huangsam/hmpi/schema"
	"github.com/stretchr/testify/assert"
)

// TestClassify tests the category boundaries.
func TestClassify(t *testing.T) {
	tests := []struct {
		hmpi float64
		want schema.RiskCategory
	}{
		{0, schema.SafeRisk},
		{35.5, schema.SafeRisk},
		{60, schema.SafeRisk},
		{60.0001, schema.ModerateRisk},
		{100, schema.ModerateRisk},
		{100.0001, schema.HighRisk},
		{2500, schema.HighRisk},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.hmpi), "hmpi=%v", tt.hmpi)
	}
}

// TestDistribution tests category counting.
func TestDistribution(t *testing.T) {
	results := []schema.SampleResult{
		{Defined: true, HMPI: 10, Category: schema.SafeRisk},
		{Defined: true, HMPI: 20, Category: schema.SafeRisk},
		{Defined: true, HMPI: 80, Category: schema.ModerateRisk},
		{Defined: true, HMPI: 180, Category: schema.HighRisk},
		{Defined: false},
	}
	d := Distribution(results)
	assert.Equal(t, schema.RiskDistribution{Safe: 2, Moderate: 1, High: 1, Undefined: 1}, d)
	assert.Equal(t, 5, d.Total())
}
