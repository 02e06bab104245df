package iocache

import (
	"sync"

	"github.com/huangsam/hmpi/internal/contract"
)

// CacheStoreManager holds the stores opened for one process.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	result       contract.CacheStore
	ledger       contract.CacheStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewCacheStoreManager builds a manager over already opened stores.
func NewCacheStoreManager(result, ledger contract.CacheStore, analysis contract.AnalysisStore) *CacheStoreManager {
	return &CacheStoreManager{result: result, ledger: ledger, analysis: analysis}
}

// GetResultStore returns the result cache.
func (mgr *CacheStoreManager) GetResultStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.result
}

// GetLedgerStore returns the token balance store.
func (mgr *CacheStoreManager) GetLedgerStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.ledger
}

// GetAnalysisStore returns the analysis store, or nil when tracking is off.
func (mgr *CacheStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}

// close closes every open store. The caller holds the lock when needed.
func (mgr *CacheStoreManager) close() {
	if mgr.result != nil {
		_ = mgr.result.Close()
	}
	if mgr.ledger != nil {
		_ = mgr.ledger.Close()
	}
	if mgr.analysis != nil {
		_ = mgr.analysis.Close()
	}
}
