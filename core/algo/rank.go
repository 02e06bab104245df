package algo

import (
	"sort"

	"github.com/huangsam/hmpi/schema"
)

// RankSamples sorts samples by index in descending order and returns the top
// 'limit' samples. Samples with an undefined index sort last. Ties keep their
// input order. A limit of zero or less returns every sample.
func RankSamples(samples []schema.SampleResult, limit int) []schema.SampleResult {
	sort.SliceStable(samples, func(i, j int) bool {
		a, b := samples[i], samples[j]
		if a.Defined != b.Defined {
			return a.Defined
		}
		return a.HMPI > b.HMPI
	})
	return LimitSamples(samples, limit)
}

// LimitSamples returns the first 'limit' samples, or all of them when limit is
// zero, negative or larger than the slice.
func LimitSamples(samples []schema.SampleResult, limit int) []schema.SampleResult {
	if limit > 0 && len(samples) > limit {
		return samples[:limit]
	}
	return samples
}

// RankZones sorts zones by average value in descending order.
func RankZones(zones []schema.ClusterZone) []schema.ClusterZone {
	sort.SliceStable(zones, func(i, j int) bool {
		return zones[i].AvgValue > zones[j].AvgValue
	})
	return zones
}
