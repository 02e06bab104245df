package iocache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/huangsam/hmpi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetManager gives each test a fresh global manager.
func resetManager(t *testing.T) {
	t.Helper()
	Manager = &CacheStoreManager{}
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	t.Cleanup(func() {
		CloseCaching()
		Manager = &CacheStoreManager{}
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
	})
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite cache and analysis", func(t *testing.T) {
		resetManager(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		analysisPath := filepath.Join(dir, "analysis.db")

		err := InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, analysisPath)
		require.NoError(t, err)

		assert.NotNil(t, Manager.GetResultStore())
		assert.NotNil(t, Manager.GetLedgerStore())
		assert.NotNil(t, Manager.GetAnalysisStore())

		_, err = os.Stat(cachePath)
		assert.NoError(t, err)
		_, err = os.Stat(analysisPath)
		assert.NoError(t, err)
	})

	t.Run("none backend", func(t *testing.T) {
		resetManager(t)
		require.NoError(t, InitStores(schema.NoneBackend, "", "", ""))

		assert.NotNil(t, Manager.GetResultStore(), "none backend still yields a no-op store")
		assert.NotNil(t, Manager.GetLedgerStore())
		assert.Nil(t, Manager.GetAnalysisStore(), "analysis tracking is off without a backend")
	})

	t.Run("empty cache backend means none", func(t *testing.T) {
		resetManager(t)
		require.NoError(t, InitStores("", "", "", ""))
		status, err := Manager.GetResultStore().GetStatus()
		require.NoError(t, err)
		assert.Equal(t, string(schema.NoneBackend), status.Backend)
	})

	t.Run("idempotent", func(t *testing.T) {
		resetManager(t)
		path := filepath.Join(t.TempDir(), "cache.db")
		assert.NoError(t, InitStores(schema.SQLiteBackend, path, "", ""))
		assert.NoError(t, InitStores(schema.SQLiteBackend, path, "", ""))
		CloseCaching()
		CloseCaching()
	})

	t.Run("bad analysis backend closes cache stores", func(t *testing.T) {
		resetManager(t)
		path := filepath.Join(t.TempDir(), "cache.db")
		err := InitStores(schema.SQLiteBackend, path, schema.MySQLBackend, "invalid://connection")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "analysis store")
		assert.Nil(t, Manager.GetResultStore())
	})
}

func TestNewCacheStoreManager(t *testing.T) {
	result := &MockCacheStore{}
	ledger := &MockCacheStore{}
	analysis := &MockAnalysisStore{}
	mgr := NewCacheStoreManager(result, ledger, analysis)

	assert.Same(t, result, mgr.GetResultStore())
	assert.Same(t, ledger, mgr.GetLedgerStore())
	assert.Same(t, analysis, mgr.GetAnalysisStore())

	result.On("Close").Return(nil).Once()
	ledger.On("Close").Return(nil).Once()
	analysis.On("Close").Return(nil).Once()
	mgr.close()
	result.AssertExpectations(t)
	ledger.AssertExpectations(t)
	analysis.AssertExpectations(t)
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.db")
		store, err := NewCacheStore(resultTable, schema.SQLiteBackend, path)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file is fine", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "absent.db"), ""))
	})

	t.Run("sqlite requires a path", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
		assert.NoError(t, ClearAnalysis(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.Error(t, ClearCache("unsupported", "", ""))
		assert.Error(t, ClearAnalysis("unsupported", "", ""))
	})

	t.Run("unreachable server", func(t *testing.T) {
		assert.Error(t, ClearAnalysis(schema.MySQLBackend, "", "invalid://connection"))
	})
}
