package schema

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Pb", "pb"},
		{"Pb (mg/L)", "pbmgl"},
		{"Sample_ID", "sampleid"},
		{"  Lead Conc. ", "leadconc"},
		{"Fe-2", "fe2"},
		{"Pb (µg/L)", "pbgl"},
		{"Café_Zn", "cafzn"},
		{"", ""},
		{"%%", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.in))
		})
	}
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		decimals int
		want     float64
	}{
		{"four decimals", 153.84615384, 4, 153.8462},
		{"two decimals", 20.005000001, 2, 20.01},
		{"half away from zero", -0.125, 2, -0.13},
		{"integer", 7, 4, 7},
		{"zero decimals", 2.5, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RoundTo(tt.v, tt.decimals), 1e-12)
		})
	}

	assert.True(t, math.IsNaN(RoundTo(math.NaN(), 4)))
	assert.True(t, math.IsInf(RoundTo(math.Inf(1), 4), 1))
	assert.Equal(t, 0.2308, Round4(3.0/13.0))
}

func TestRoundPtr(t *testing.T) {
	assert.Nil(t, roundPtr(None(), 4))
	p := roundPtr(Some(0.123456), 4)
	if assert.NotNil(t, p) {
		assert.Equal(t, 0.1235, *p)
	}
}
