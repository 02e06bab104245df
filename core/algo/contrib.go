package algo

import "github.com/huangsam/hmpi/schema"

// Breakdown explains a sample's index: each metal's weighted sub-index, its
// share of the total, and the concentration-versus-limit pairs for a radar
// chart. The radar polygon is closed by repeating the first metal. There is no
// breakdown for a sample whose index is undefined or not positive.
func Breakdown(r schema.SampleResult) (schema.ContributionBreakdown, bool) {
	if !r.Defined || r.HMPI <= 0 {
		return schema.ContributionBreakdown{}, false
	}

	b := schema.ContributionBreakdown{
		SampleID: r.Sample.ID,
		HMPI:     r.HMPI,
		Category: r.Category,
	}
	for _, mi := range r.Indices {
		if !mi.Valid {
			continue
		}
		b.Contributions = append(b.Contributions, schema.Contribution{
			Metal:   mi.Metal,
			SIi:     mi.SIi,
			Percent: mi.SIi / r.HMPI * 100,
		})
		b.Radar = append(b.Radar, schema.RadarPoint{
			Metal:         mi.Metal,
			Concentration: mi.Ci,
			Limit:         mi.Si,
		})
	}
	if len(b.Radar) > 0 {
		b.Radar = append(b.Radar, b.Radar[0])
	}
	return b, true
}

// Breakdowns explains every sample that has a positive index.
func Breakdowns(results []schema.SampleResult) []schema.ContributionBreakdown {
	var out []schema.ContributionBreakdown
	for _, r := range results {
		if b, ok := Breakdown(r); ok {
			out = append(out, b)
		}
	}
	return out
}
