package core

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/huangsam/hmpi/core/algo"
	"github.com/huangsam/hmpi/internal/iocache"
	"github.com/huangsam/hmpi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func cacheTable() schema.RawTable {
	return schema.RawTable{
		Source:  "wells.csv",
		Headers: []string{"Sample_ID", "Pb", "Cd"},
		Rows:    [][]string{{"W1", "0.02", "0.006"}, {"W2", "0.002", "0.0006"}},
	}
}

func TestGenerateCacheKey(t *testing.T) {
	opts := algo.DefaultOptions()
	table := cacheTable()

	key, err := generateCacheKey(table, opts)
	require.NoError(t, err)
	assert.Len(t, key, 64)

	renamed := table
	renamed.Source = "renamed.csv"
	sameKey, err := generateCacheKey(renamed, opts)
	require.NoError(t, err)
	assert.Equal(t, key, sameKey)

	zero := opts
	zero.Impute.Strategy = schema.ZeroImpute
	otherKey, err := generateCacheKey(table, zero)
	require.NoError(t, err)
	assert.NotEqual(t, key, otherKey)

	edited := cacheTable()
	edited.Rows[0][1] = "0.03"
	editedKey, err := generateCacheKey(edited, opts)
	require.NoError(t, err)
	assert.NotEqual(t, key, editedKey)
}

func TestCheckCacheHit(t *testing.T) {
	res, err := algo.Run(cacheTable(), algo.DefaultOptions())
	require.NoError(t, err)
	data, err := json.Marshal(res)
	require.NoError(t, err)

	fresh := time.Now().Unix()
	stale := time.Now().Add(-8 * 24 * time.Hour).Unix()

	tests := []struct {
		name    string
		data    []byte
		version int
		ts      int64
		err     error
		hit     bool
	}{
		{"hit", data, currentCacheVersion, fresh, nil, true},
		{"missing", nil, 0, 0, sql.ErrNoRows, false},
		{"old version", data, currentCacheVersion + 1, fresh, nil, false},
		{"stale", data, currentCacheVersion, stale, nil, false},
		{"corrupt", []byte("{"), currentCacheVersion, fresh, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &iocache.MockCacheStore{}
			store.On("Get", "key").Return(tt.data, tt.version, tt.ts, tt.err)

			got, ok := checkCacheHit(store, "key")
			assert.Equal(t, tt.hit, ok)
			if tt.hit {
				require.Len(t, got.Samples, 2)
				assert.InDelta(t, 200, got.Samples[0].HMPI, 1e-9)
				assert.Equal(t, res.Weights, got.Weights)
			}
		})
	}
}

func TestCachedComputeStoresOnMiss(t *testing.T) {
	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), sql.ErrNoRows)
	store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)

	res, err := cachedCompute(store, cacheTable(), algo.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, res.Samples, 2)
	store.AssertNumberOfCalls(t, "Set", 1)
}

func TestCachedComputeSetFailureIsNotFatal(t *testing.T) {
	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), sql.ErrNoRows)
	store.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := cachedCompute(store, cacheTable(), algo.DefaultOptions())
	assert.NoError(t, err)
}

func TestCachedComputeWithSQLite(t *testing.T) {
	store, err := iocache.NewCacheStore("hmpi_result_cache", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := withSuppressHeader(context.Background())
	path := writeFixture(t, "wells.csv", wellsCSV)
	mgr := iocache.NewCacheStoreManager(store, nil, nil)

	first, _, err := GetIndexResults(ctx, baseConfig(path), mgr)
	require.NoError(t, err)
	second, _, err := GetIndexResults(ctx, baseConfig(path), mgr)
	require.NoError(t, err)

	assert.NotEqual(t, first[0].DatasetID, second[0].DatasetID)
	assert.Equal(t, first[0].Source, second[0].Source)
	require.Len(t, second[0].Samples, 3)
	assert.InDelta(t, first[0].Samples[0].HMPI, second[0].Samples[0].HMPI, 1e-12)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalEntries)
}
