package schema

import (
	"math"
	"strings"
)

// Output precision for index values.
const (
	IndexPrecision   = 4
	ClusterPrecision = 2
)

// NormalizeHeader lower-cases s and drops every rune outside [a-z0-9].
func NormalizeHeader(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RoundTo rounds v half away from zero to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Round4 rounds v to the index output precision.
func Round4(v float64) float64 {
	return RoundTo(v, IndexPrecision)
}

// roundPtr rounds an optional reading, returning nil when it has no value.
func roundPtr(r Reading, decimals int) *float64 {
	if !r.Valid {
		return nil
	}
	v := RoundTo(r.Value, decimals)
	return &v
}
