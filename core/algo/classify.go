package algo

import "github.com/huangsam/hmpi/schema"

// Classify buckets an index value. The thresholds do not depend on the dataset:
// values up to 60 are Safe, up to 100 Moderate, and above 100 High.
func Classify(hmpi float64) schema.RiskCategory {
	switch {
	case hmpi <= schema.SafeThreshold:
		return schema.SafeRisk
	case hmpi <= schema.ModerateThreshold:
		return schema.ModerateRisk
	default:
		return schema.HighRisk
	}
}

// Distribution counts the samples of an index result per category.
func Distribution(results []schema.SampleResult) schema.RiskDistribution {
	var d schema.RiskDistribution
	for _, r := range results {
		d.Add(r.Category)
	}
	return d
}
