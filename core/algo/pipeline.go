// Package algo is the contamination index engine: column mapping, imputation,
// index computation, classification, contribution analysis and clustering.
// It performs no I/O and holds no state beyond the read-only tables it is given.
package algo

import (
	"github.com/google/uuid"
	"github.com/huangsam/hmpi/schema"
)

// Options configures a full index computation.
type Options struct {
	Limits   schema.StandardLimits
	Keywords map[schema.MetalKind][]string
	Match    schema.MatchMode
	Impute   ImputeOptions
}

// DefaultOptions returns the built-in limits and keywords, substring matching
// and the half imputation strategy.
func DefaultOptions() Options {
	return Options{
		Limits:   schema.DefaultStandardLimits(),
		Keywords: schema.MetalKeywords,
		Match:    schema.SubstringMatch,
		Impute:   ImputeOptions{Strategy: schema.HalfImpute},
	}
}

// Prepare maps the columns of a table and builds its samples.
func Prepare(table schema.RawTable, opts Options) (schema.Dataset, error) {
	if len(table.Rows) == 0 {
		return schema.Dataset{}, dataError("dataset has no samples")
	}
	keywords := opts.Keywords
	if keywords == nil {
		keywords = schema.MetalKeywords
	}
	cm, err := MapColumns(table.Headers, keywords, opts.Match)
	if err != nil {
		return schema.Dataset{}, err
	}
	return schema.Dataset{
		ID:      uuid.NewString(),
		Source:  table.Source,
		Samples: BuildSamples(table, cm),
		Mapping: cm,
	}, nil
}

// Compute imputes missing readings and scores every sample of a dataset.
func Compute(ds schema.Dataset, opts Options) (schema.IndexResult, error) {
	limits := opts.Limits
	if limits == nil {
		limits = schema.DefaultStandardLimits()
	}
	metals := ScoredMetals(ds.Metals(), limits)
	if len(metals) == 0 {
		return schema.IndexResult{}, ErrNoMetalColumns
	}

	samples, filled, err := Impute(ds.Samples, metals, opts.Impute)
	if err != nil {
		return schema.IndexResult{}, err
	}
	res, err := ComputeIndex(samples, metals, limits)
	if err != nil {
		return schema.IndexResult{}, err
	}

	res.DatasetID = ds.ID
	res.Source = ds.Source
	res.Strategy = opts.Impute.Strategy
	if res.Strategy == "" {
		res.Strategy = schema.HalfImpute
	}
	res.Imputed = filled
	return res, nil
}

// Run prepares and computes a table in one step.
func Run(table schema.RawTable, opts Options) (schema.IndexResult, error) {
	ds, err := Prepare(table, opts)
	if err != nil {
		return schema.IndexResult{}, err
	}
	return Compute(ds, opts)
}
