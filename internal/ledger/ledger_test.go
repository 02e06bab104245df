package ledger

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/hmpi/internal/iocache"
	"github.com/huangsam/hmpi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokensRequired(t *testing.T) {
	tests := []struct {
		rows int
		want int
	}{
		{0, 0},
		{10, 0},
		{50, 0},
		{51, 3},
		{55, 3},
		{56, 5},
		{60, 5},
		{61, 8},
		{100, 25},
		{150, 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TokensRequired(tt.rows), "rows=%d", tt.rows)
	}
}

func TestMemoryLedger(t *testing.T) {
	l := NewMemoryLedger()

	balance, err := l.Balance("alice")
	require.NoError(t, err)
	assert.Equal(t, 0, balance, "unknown users start at zero")

	balance, err = l.Credit(" alice ", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)

	balance, err = l.Debit("alice", 4)
	require.NoError(t, err)
	assert.Equal(t, 6, balance)

	balance, err = l.Debit("alice", 7)
	assert.ErrorIs(t, err, ErrInsufficientTokens)
	assert.Equal(t, 6, balance, "failed debits leave the balance alone")

	_, err = l.Credit("alice", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = l.Debit("alice", -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = l.Balance("  ")
	assert.ErrorIs(t, err, ErrNoUser)
}

func TestMemoryLedgerConcurrent(t *testing.T) {
	l := NewMemoryLedger()
	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			_, err := l.Credit("bob", 5)
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	balance, err := l.Balance("bob")
	require.NoError(t, err)
	assert.Equal(t, 100, balance)
}

func newSQLiteLedger(t *testing.T) *StoreLedger {
	t.Helper()
	store, err := iocache.NewCacheStore("hmpi_token_ledger", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewStoreLedger(store)
}

func TestStoreLedger(t *testing.T) {
	l := newSQLiteLedger(t)
	fixed := time.Date(2026, time.April, 1, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	balance, err := l.Balance("carol")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	balance, err = l.Credit("carol", 30)
	require.NoError(t, err)
	assert.Equal(t, 30, balance)

	balance, err = l.Debit("carol", 25)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)

	_, err = l.Debit("carol", 6)
	assert.ErrorIs(t, err, ErrInsufficientTokens)

	entry, err := l.Entry("carol")
	require.NoError(t, err)
	assert.Equal(t, 5, entry.Balance)
	assert.Equal(t, "carol", entry.User)
	assert.True(t, fixed.Equal(entry.UpdatedAt))
}

func TestStoreLedgerCorruptEntry(t *testing.T) {
	store := &iocache.MockCacheStore{}
	store.On("Get", "dave").Return([]byte("not json"), 1, int64(0), nil)

	l := NewStoreLedger(store)
	_, err := l.Balance("dave")
	assert.ErrorContains(t, err, "corrupt balance entry")
	_, err = l.Credit("dave", 1)
	assert.Error(t, err)
	store.AssertNotCalled(t, "Set")
}

func TestStoreLedgerReadsExistingEntry(t *testing.T) {
	data, err := json.Marshal(schema.LedgerEntry{User: "erin", Balance: 12})
	require.NoError(t, err)

	store := &iocache.MockCacheStore{}
	store.On("Get", "erin").Return(data, 1, int64(0), nil)

	l := NewStoreLedger(store)
	balance, err := l.Balance("erin")
	require.NoError(t, err)
	assert.Equal(t, 12, balance)
}

func TestQuoteFor(t *testing.T) {
	l := NewMemoryLedger()
	_, err := l.Credit("frank", 10)
	require.NoError(t, err)

	q, err := QuoteFor(l, "frank", 100)
	require.NoError(t, err)
	assert.Equal(t, 25, q.Tokens)
	assert.Equal(t, 10, q.Balance)
	assert.False(t, q.Sufficient)
	assert.Equal(t, 15, q.Short)

	q, err = QuoteFor(l, "frank", 20)
	require.NoError(t, err)
	assert.True(t, q.Sufficient)
	assert.Equal(t, 0, q.Short)
}

func TestCharge(t *testing.T) {
	l := NewMemoryLedger()

	q, err := Charge(l, "gina", 40)
	require.NoError(t, err, "free requests need no balance")
	assert.Equal(t, 0, q.Tokens)

	q, err = Charge(l, "gina", 60)
	assert.ErrorIs(t, err, ErrInsufficientTokens)
	assert.False(t, q.Sufficient)
	assert.Equal(t, 5, q.Short)

	_, err = l.Credit("gina", 8)
	require.NoError(t, err)
	q, err = Charge(l, "gina", 60)
	require.NoError(t, err)
	assert.True(t, q.Sufficient)
	assert.Equal(t, 3, q.Balance)
}
