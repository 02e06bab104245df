// Package core has core logic for scoring, clustering and reporting on
// water-quality datasets. It wires the engine in core/algo to file loading,
// caching, token accounting, analysis tracking and output.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/hmpi/core/algo"
	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/internal/ledger"
	"github.com/huangsam/hmpi/internal/loader"
	"github.com/huangsam/hmpi/internal/outwriter"
	"github.com/huangsam/hmpi/schema"
	"golang.org/x/sync/errgroup"
)

// ErrNoInputs is returned when a command that reads datasets is given none.
var ErrNoInputs = errors.New("no input files given")

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteIndex scores every input and prints the results.
// It serves as the main entry point for the 'index' command.
func ExecuteIndex(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	results, duration, err := GetIndexResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteIndex(results, cfg, duration)
}

// GetIndexResults scores every input, then orders and limits the samples of
// each dataset as configured.
func GetIndexResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.IndexResult, time.Duration, error) {
	start := time.Now()
	results, err := scoreInputs(ctx, cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	for i := range results {
		results[i].Samples = orderSamples(results[i].Samples, cfg)
	}
	return results, time.Since(start), nil
}

// ExecuteClusters groups samples into risk zones and prints them.
func ExecuteClusters(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetClusterResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteClusters(result, cfg, duration)
}

// GetClusterResults clusters the samples of every input together. With a
// value column the inputs are forecast tables; otherwise they are scored first
// and clustered on their index.
func GetClusterResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.ClusterResult, time.Duration, error) {
	start := time.Now()

	var (
		points  []schema.ClusterPoint
		skipped int
		err     error
	)
	if cfg.ValueColumn != "" {
		points, skipped, err = forecastPoints(ctx, cfg)
	} else {
		points, skipped, err = indexPoints(ctx, cfg, mgr)
	}
	if err != nil {
		return schema.ClusterResult{}, 0, err
	}

	result, err := algo.Cluster(points, algo.ClusterOptions{Eps: cfg.Eps, MinPts: cfg.MinPts})
	if err != nil {
		return schema.ClusterResult{}, 0, err
	}
	result.Skipped = skipped
	if cfg.Sort == schema.HMPIOrder {
		result.Zones = algo.RankZones(result.Zones)
	}
	return result, time.Since(start), nil
}

// ExecuteContrib prints the per-metal contributions and chart data of every input.
func ExecuteContrib(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	reports, err := GetContributions(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteContributions(reports, cfg)
}

// GetContributions builds a contribution report per input. The distribution
// counts every sample; breakdowns follow the configured order and limit.
func GetContributions(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]outwriter.ContributionReport, error) {
	results, err := scoreInputs(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	reports := make([]outwriter.ContributionReport, 0, len(results))
	for _, res := range results {
		dist := algo.Distribution(res.Samples)
		res.Samples = orderSamples(res.Samples, cfg)
		reports = append(reports, outwriter.ContributionReport{
			Result:       res,
			Breakdowns:   algo.Breakdowns(res.Samples),
			Distribution: dist,
		})
	}
	return reports, nil
}

// ExecuteLimits prints the effective standard limits.
func ExecuteLimits(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	limits, weights, err := GetLimits(cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteLimits(limits, weights, cfg)
}

// GetLimits returns the effective limits and the unit weight of every
// regulated metal when all of them are detected.
func GetLimits(cfg *contract.Config) (schema.StandardLimits, map[schema.MetalKind]float64, error) {
	limits := cfg.Limits
	if limits == nil {
		limits = schema.DefaultStandardLimits()
	}
	weights, err := algo.Weights(algo.ScoredMetals(schema.AllMetals, limits), limits)
	if err != nil {
		return nil, nil, err
	}
	return limits, weights, nil
}

// engineOptions maps the validated config onto the engine options.
func engineOptions(cfg *contract.Config) algo.Options {
	opts := algo.DefaultOptions()
	if cfg.Limits != nil {
		opts.Limits = cfg.Limits
	}
	if cfg.Match != "" {
		opts.Match = cfg.Match
	}
	if cfg.Strategy != "" {
		opts.Impute.Strategy = cfg.Strategy
	}
	opts.Impute.DetectionLimits = cfg.DetectionLimits
	return opts
}

// scoreInputs runs the index pipeline over every input with a bounded pool of
// workers. Results keep the order of cfg.Inputs. The first failure cancels
// the inputs not yet started.
func scoreInputs(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.IndexResult, error) {
	if len(cfg.Inputs) == 0 {
		return nil, ErrNoInputs
	}
	if !shouldSuppressHeader(ctx) {
		contract.LogInfo("Scoring datasets", "files", len(cfg.Inputs), "strategy", cfg.Strategy, "workers", cfg.Workers)
	}

	opts := engineOptions(cfg)
	tokens := LedgerFor(cfg, mgr)
	var (
		resultStore   contract.CacheStore
		analysisStore contract.AnalysisStore
	)
	if mgr != nil {
		resultStore = mgr.GetResultStore()
		analysisStore = mgr.GetAnalysisStore()
	}

	results := make([]schema.IndexResult, len(cfg.Inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i, path := range cfg.Inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := scoreInput(cfg.CloneWithInput(path), path, opts, tokens, resultStore, analysisStore)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// scoreInput loads one file, charges its user, computes the index and records the run.
func scoreInput(cfg *contract.Config, path string, opts algo.Options, tokens contract.TokenLedger, resultStore contract.CacheStore, analysisStore contract.AnalysisStore) (schema.IndexResult, error) {
	started := time.Now()
	table, err := loader.Load(path)
	if err != nil {
		return schema.IndexResult{}, err
	}

	if cfg.User != "" {
		q, err := ledger.Charge(tokens, cfg.User, len(table.Rows))
		if err != nil {
			if errors.Is(err, ledger.ErrInsufficientTokens) {
				return schema.IndexResult{}, fmt.Errorf("%w: %d rows need %d tokens, %s has %d", err, q.Rows, q.Tokens, q.User, q.Balance)
			}
			return schema.IndexResult{}, err
		}
		if q.Tokens > 0 {
			contract.LogInfo("Charged tokens", "user", q.User, "tokens", q.Tokens, "balance", q.Balance)
		}
	}

	res, err := cachedCompute(resultStore, table, opts)
	if err != nil {
		return schema.IndexResult{}, err
	}
	logNotes(res)
	trackResult(analysisStore, cfg, res, started)
	return res, nil
}

// logNotes reports the adjustments the engine made to a dataset.
func logNotes(res schema.IndexResult) {
	if len(res.Converted) > 0 {
		contract.LogInfo("Converted concentrations from ug/L to mg/L", "source", res.Source, "metals", res.Converted)
	}
	for _, m := range res.Metals {
		if n := res.Imputed[m]; n > 0 {
			contract.LogDebug("Imputed missing readings", "source", res.Source, "metal", m, "cells", n, "strategy", res.Strategy)
		}
	}
}

// orderSamples applies the configured sort order and result limit. The input
// slice is left untouched.
func orderSamples(samples []schema.SampleResult, cfg *contract.Config) []schema.SampleResult {
	out := make([]schema.SampleResult, len(samples))
	copy(out, samples)
	if cfg.Sort == schema.HMPIOrder {
		return algo.RankSamples(out, cfg.ResultLimit)
	}
	return algo.LimitSamples(out, cfg.ResultLimit)
}

// indexPoints scores every input and returns the samples that can be clustered.
func indexPoints(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.ClusterPoint, int, error) {
	results, err := scoreInputs(ctx, cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	var (
		points  []schema.ClusterPoint
		skipped int
	)
	for _, res := range results {
		p, s := algo.PointsFromResults(res.Samples)
		points = append(points, p...)
		skipped += s
	}
	return points, skipped, nil
}

// forecastPoints reads the forecast value column of every input.
func forecastPoints(ctx context.Context, cfg *contract.Config) ([]schema.ClusterPoint, int, error) {
	if len(cfg.Inputs) == 0 {
		return nil, 0, ErrNoInputs
	}
	var (
		points  []schema.ClusterPoint
		skipped int
	)
	for _, path := range cfg.Inputs {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		table, err := loader.Load(path)
		if err != nil {
			return nil, 0, err
		}
		p, s, err := algo.ForecastPoints(table, cfg.ValueColumn)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", path, err)
		}
		points = append(points, p...)
		skipped += s
	}
	return points, skipped, nil
}
