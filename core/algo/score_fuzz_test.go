package algo

import (
	"math"
	"testing"

	"github.com/huangsam/hmpi/schema"
)

// FuzzScoreSample fuzzes index scoring with arbitrary lead and cadmium readings.
func FuzzScoreSample(f *testing.F) {
	f.Add(0.02, 0.006)
	f.Add(0.0, 0.0)
	f.Add(1e-9, 50.0)
	f.Add(-1.0, 0.5)

	limits := schema.DefaultStandardLimits()
	metals := []schema.MetalKind{schema.Lead, schema.Cadmium}
	weights, err := Weights(metals, limits)
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, pb, cd float64) {
		if math.IsNaN(pb) || math.IsNaN(cd) || math.IsInf(pb, 0) || math.IsInf(cd, 0) {
			t.Skip()
		}
		s := schema.Sample{
			ID: "F",
			Readings: map[schema.MetalKind]schema.Reading{
				schema.Lead:    schema.Some(pb),
				schema.Cadmium: schema.Some(cd),
			},
		}
		r := ScoreSample(s, metals, limits, weights)
		if !r.Defined {
			t.Fatal("sample with readings must be defined")
		}
		total := 0.0
		for _, mi := range r.Indices {
			total += mi.SIi
		}
		if math.Abs(total-r.HMPI) > 1e-9*math.Max(1, math.Abs(total)) {
			t.Fatalf("HMPI %v differs from sum of terms %v", r.HMPI, total)
		}
		if r.Category != Classify(r.HMPI) {
			t.Fatalf("category %s does not match index %v", r.Category, r.HMPI)
		}
	})
}
