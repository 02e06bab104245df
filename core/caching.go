package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/hmpi/core/algo"
	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/schema"
)

// currentCacheVersion defines the version of the cached result layout
const currentCacheVersion = 1

// cacheTTL is how long a cached result stays valid.
const cacheTTL = 7 * 24 * time.Hour

// cacheKeyInput is everything that determines an index result.
type cacheKeyInput struct {
	Headers         []string                     `json:"headers"`
	Rows            [][]string                   `json:"rows"`
	Strategy        schema.ImputationStrategy    `json:"strategy"`
	DetectionLimits map[schema.MetalKind]float64 `json:"detection_limits"`
	Match           schema.MatchMode             `json:"match"`
	Limits          schema.StandardLimits        `json:"limits"`
}

// cachedCompute returns the index result for a table, reading and filling the
// result cache when one is configured.
func cachedCompute(store contract.CacheStore, table schema.RawTable, opts algo.Options) (schema.IndexResult, error) {
	if store == nil {
		// Fallback to direct computation
		return algo.Run(table, opts)
	}

	key, err := generateCacheKey(table, opts)
	if err != nil {
		contract.LogWarn("Skipping result cache", err)
		return algo.Run(table, opts)
	}

	if result, ok := checkCacheHit(store, key); ok {
		contract.LogDebug("Result cache hit", "source", table.Source)
		result.DatasetID = uuid.NewString()
		result.Source = table.Source
		return result, nil
	}

	return computeAndStore(store, table, opts, key)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) (schema.IndexResult, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return schema.IndexResult{}, false // Cache miss
	}

	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return schema.IndexResult{}, false
	}

	var result schema.IndexResult
	if err := json.Unmarshal(data, &result); err != nil {
		return schema.IndexResult{}, false
	}
	return result, true
}

// computeAndStore computes the result and stores it in cache
func computeAndStore(store contract.CacheStore, table schema.RawTable, opts algo.Options, key string) (schema.IndexResult, error) {
	result, err := algo.Run(table, opts)
	if err != nil {
		return schema.IndexResult{}, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		contract.LogWarn("Failed to encode result for cache", err)
		return result, nil
	}
	if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Failed to store result in cache", err)
	}
	return result, nil
}

// generateCacheKey hashes the table content together with the engine options.
// The source path is left out so a renamed file still hits.
func generateCacheKey(table schema.RawTable, opts algo.Options) (string, error) {
	payload, err := json.Marshal(cacheKeyInput{
		Headers:         table.Headers,
		Rows:            table.Rows,
		Strategy:        opts.Impute.Strategy,
		DetectionLimits: opts.Impute.DetectionLimits,
		Match:           opts.Match,
		Limits:          opts.Limits,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", sha256.Sum256(payload)), nil
}
