package algo

import (
	"fmt"
	"maps"
	"math"

	"github.com/huangsam/hmpi/schema"
)

// Unit heuristic constants. A column with any value above unitRatio*Si is
// taken to be in ug/L and rescaled to mg/L.
const (
	unitRatio   = 100.0
	unitDivisor = 1000.0
)

// ScoredMetals returns the detected metals that have a standard limit, in the
// order they were detected. Only these contribute to the index.
func ScoredMetals(detected []schema.MetalKind, limits schema.StandardLimits) []schema.MetalKind {
	var out []schema.MetalKind
	for _, m := range detected {
		if _, ok := limits.Limit(m); ok {
			out = append(out, m)
		}
	}
	return out
}

// Weights computes Wi = (1/Si) / sum(1/Sm) over the given metals. The result is
// scoped to the dataset: every sample uses the same weights.
func Weights(metals []schema.MetalKind, limits schema.StandardLimits) (map[schema.MetalKind]float64, error) {
	if len(metals) == 0 {
		return nil, ErrNoMetalColumns
	}
	total := 0.0
	for _, m := range metals {
		si, ok := limits.Limit(m)
		if !ok {
			return nil, dataError(fmt.Sprintf("no standard limit for %s", m))
		}
		total += 1 / si
	}
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		return nil, computationError("weight normalization is degenerate", fmt.Errorf("sum of inverse limits is %v", total))
	}
	w := make(map[schema.MetalKind]float64, len(metals))
	for _, m := range metals {
		si, _ := limits.Limit(m)
		w[m] = (1 / si) / total
	}
	return w, nil
}

// NormalizeUnits applies the unit heuristic once per metal column: if any
// present reading exceeds 100*Si the whole column is divided by 1000. It never
// rescales individual values. The returned samples carry their own reading
// maps, along with the metals that were rescaled.
func NormalizeUnits(samples []schema.Sample, metals []schema.MetalKind, limits schema.StandardLimits) ([]schema.Sample, []schema.MetalKind) {
	out := make([]schema.Sample, len(samples))
	for i, s := range samples {
		out[i] = s
		out[i].Readings = maps.Clone(s.Readings)
	}

	var converted []schema.MetalKind
	for _, m := range metals {
		si, ok := limits.Limit(m)
		if !ok {
			continue
		}
		if !anyAbove(out, m, unitRatio*si) {
			continue
		}
		for i := range out {
			if r := out[i].Readings[m]; r.Valid {
				out[i].Readings[m] = schema.Some(r.Value / unitDivisor)
			}
		}
		converted = append(converted, m)
	}
	return out, converted
}

// anyAbove reports whether any present reading of metal m exceeds threshold.
func anyAbove(samples []schema.Sample, m schema.MetalKind, threshold float64) bool {
	for _, s := range samples {
		if r := s.Readings[m]; r.Valid && r.Value > threshold {
			return true
		}
	}
	return false
}

// SubIndex returns Qi = (Ci/Si)*100.
func SubIndex(ci, si float64) float64 {
	return (ci / si) * 100
}

// ScoreSample computes the per-metal terms and HMPI for one sample. Values are
// kept at full precision; rounding is left to the output boundary.
func ScoreSample(s schema.Sample, metals []schema.MetalKind, limits schema.StandardLimits, weights map[schema.MetalKind]float64) schema.SampleResult {
	res := schema.SampleResult{
		Sample:  s,
		Indices: make([]schema.MetalIndex, 0, len(metals)),
	}
	for _, m := range metals {
		si, _ := limits.Limit(m)
		mi := schema.MetalIndex{Metal: m, Si: si, Wi: weights[m]}
		if r := s.Readings[m]; r.Valid {
			mi.Ci = r.Value
			mi.Qi = SubIndex(r.Value, si)
			mi.SIi = mi.Qi * mi.Wi
			mi.Valid = true
			res.HMPI += mi.SIi
			res.Defined = true
		}
		res.Indices = append(res.Indices, mi)
	}
	if res.Defined {
		res.Category = Classify(res.HMPI)
	}
	return res
}

// ComputeIndex normalizes units and scores every sample over the detected
// metals that have a standard limit. An empty scored set is a data error.
func ComputeIndex(samples []schema.Sample, detected []schema.MetalKind, limits schema.StandardLimits) (schema.IndexResult, error) {
	metals := ScoredMetals(detected, limits)
	weights, err := Weights(metals, limits)
	if err != nil {
		return schema.IndexResult{}, err
	}

	normalized, converted := NormalizeUnits(samples, metals, limits)
	results := make([]schema.SampleResult, len(normalized))
	for i, s := range normalized {
		results[i] = ScoreSample(s, metals, limits, weights)
	}

	return schema.IndexResult{
		Metals:    metals,
		Weights:   weights,
		Converted: converted,
		Samples:   results,
	}, nil
}
