// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/hmpi/schema"
)

// CacheManager defines the interface for managing the persistent stores.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	GetResultStore() CacheStore
	GetLedgerStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for key/value data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking index runs and their per-sample results.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, totalSamples int) error

	// RecordSampleResult stores the scored result of one sample
	RecordSampleResult(analysisID int64, record schema.SampleRecord) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns returns every recorded run
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllSampleResults returns every recorded sample result
	GetAllSampleResults() ([]schema.SampleResultRecord, error)

	// Close closes the underlying connection
	Close() error
}

// TokenLedger tracks the token balance of each user.
type TokenLedger interface {
	// Balance returns the current balance of user.
	Balance(user string) (int, error)

	// Credit adds n tokens and returns the new balance.
	Credit(user string, n int) (int, error)

	// Debit removes n tokens and returns the new balance. It fails without
	// changing the balance when the user holds fewer than n tokens.
	Debit(user string, n int) (int, error)
}
