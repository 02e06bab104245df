package algo

import (
	"fmt"
	"maps"

	"github.com/huangsam/hmpi/schema"
	"github.com/montanaflynn/stats"
)

// ImputeOptions configures missing value handling.
type ImputeOptions struct {
	Strategy schema.ImputationStrategy

	// DetectionLimits, when non-nil, replaces the column minimum in the half
	// strategy. A metal absent from the map is filled with 0.
	DetectionLimits map[schema.MetalKind]float64
}

// columnValues returns the present readings of one metal across samples and
// the number of samples with no reading.
func columnValues(samples []schema.Sample, metal schema.MetalKind) ([]float64, int) {
	values := make([]float64, 0, len(samples))
	missing := 0
	for _, s := range samples {
		r := s.Readings[metal]
		if r.Valid {
			values = append(values, r.Value)
		} else {
			missing++
		}
	}
	return values, missing
}

// fillValue computes the replacement for missing readings of one metal.
// The boolean is false when the strategy keeps missing values as they are.
func fillValue(values []float64, metal schema.MetalKind, opts ImputeOptions) (float64, bool, error) {
	switch opts.Strategy {
	case schema.HalfImpute, "":
		if opts.DetectionLimits != nil {
			return 0.5 * opts.DetectionLimits[metal], true, nil
		}
		if len(values) == 0 {
			return 0, true, nil
		}
		minVal, err := stats.Min(values)
		if err != nil {
			return 0, false, computationError(fmt.Sprintf("column minimum for %s", metal), err)
		}
		return 0.5 * minVal, true, nil
	case schema.ZeroImpute:
		return 0, true, nil
	case schema.MeanImpute:
		if len(values) == 0 {
			return 0, true, nil
		}
		mean, err := stats.Mean(values)
		if err != nil {
			return 0, false, computationError(fmt.Sprintf("column mean for %s", metal), err)
		}
		return mean, true, nil
	case schema.MedianImpute:
		if len(values) == 0 {
			return 0, true, nil
		}
		median, err := stats.Median(values)
		if err != nil {
			return 0, false, computationError(fmt.Sprintf("column median for %s", metal), err)
		}
		return median, true, nil
	case schema.NoImpute:
		return 0, false, nil
	default:
		return 0, false, dataError(fmt.Sprintf("unknown imputation strategy %q", opts.Strategy))
	}
}

// Impute fills missing readings for each metal. The input samples are not
// modified; the returned samples carry their own reading maps. The count map
// records how many cells were filled per metal. Columns without missing values
// are left untouched.
func Impute(samples []schema.Sample, metals []schema.MetalKind, opts ImputeOptions) ([]schema.Sample, map[schema.MetalKind]int, error) {
	out := make([]schema.Sample, len(samples))
	for i, s := range samples {
		out[i] = s
		out[i].Readings = maps.Clone(s.Readings)
		if out[i].Readings == nil {
			out[i].Readings = make(map[schema.MetalKind]schema.Reading)
		}
	}

	filled := make(map[schema.MetalKind]int)
	for _, metal := range metals {
		values, missing := columnValues(out, metal)
		if missing == 0 {
			continue
		}
		fill, ok, err := fillValue(values, metal, opts)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}
		for i := range out {
			if !out[i].Readings[metal].Valid {
				out[i].Readings[metal] = schema.Some(fill)
				filled[metal]++
			}
		}
	}
	return out, filled, nil
}
