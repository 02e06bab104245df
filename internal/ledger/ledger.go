// Package ledger prices index requests in tokens and keeps per-user balances.
package ledger

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/schema"
)

// Pricing constants. Requests up to FreeRows rows cost nothing; each started
// block of RowsPerStep rows beyond that costs TokensPerStep tokens.
const (
	FreeRows      = 50
	RowsPerStep   = 5
	TokensPerStep = 2.5
)

// entryVersion is the version stamped on persisted balances.
const entryVersion = 1

// Ledger errors.
var (
	ErrInsufficientTokens = errors.New("insufficient tokens")
	ErrInvalidAmount      = errors.New("token amount must be positive")
	ErrNoUser             = errors.New("user is required")
)

// TokensRequired returns the token cost of a request over rows samples.
func TokensRequired(rows int) int {
	if rows <= FreeRows {
		return 0
	}
	k := math.Ceil(float64(rows-FreeRows) / RowsPerStep)
	return int(math.Ceil(TokensPerStep * k))
}

// Quote describes the cost of a request against a user's balance.
type Quote struct {
	User       string `json:"user"`
	Rows       int    `json:"rows"`
	Tokens     int    `json:"tokens_needed"`
	Balance    int    `json:"current_tokens"`
	Sufficient bool   `json:"sufficient_tokens"`
	Short      int    `json:"tokens_short"`
}

// QuoteFor prices rows against the balance of user.
func QuoteFor(l contract.TokenLedger, user string, rows int) (Quote, error) {
	q := Quote{User: user, Rows: rows, Tokens: TokensRequired(rows)}
	balance, err := l.Balance(user)
	if err != nil {
		return q, err
	}
	q.Balance = balance
	q.Sufficient = balance >= q.Tokens
	q.Short = max(0, q.Tokens-balance)
	return q, nil
}

// Charge debits the cost of rows from user. Free requests never touch the ledger.
// The returned quote carries the balance after the debit.
func Charge(l contract.TokenLedger, user string, rows int) (Quote, error) {
	q := Quote{User: user, Rows: rows, Tokens: TokensRequired(rows), Sufficient: true}
	if q.Tokens == 0 {
		return q, nil
	}
	balance, err := l.Debit(user, q.Tokens)
	if err != nil {
		if errors.Is(err, ErrInsufficientTokens) {
			if current, berr := l.Balance(user); berr == nil {
				q.Balance = current
				q.Short = q.Tokens - current
			}
			q.Sufficient = false
		}
		return q, err
	}
	q.Balance = balance
	return q, nil
}

// normalizeUser trims user and rejects blank names.
func normalizeUser(user string) (string, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return "", ErrNoUser
	}
	return user, nil
}

// MemoryLedger keeps balances in process memory.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int
}

var _ contract.TokenLedger = &MemoryLedger{} // Compile-time check

// NewMemoryLedger returns an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]int)}
}

// Balance implements contract.TokenLedger.
func (m *MemoryLedger) Balance(user string) (int, error) {
	user, err := normalizeUser(user)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[user], nil
}

// Credit implements contract.TokenLedger.
func (m *MemoryLedger) Credit(user string, n int) (int, error) {
	user, err := normalizeUser(user)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[user] += n
	return m.balances[user], nil
}

// Debit implements contract.TokenLedger.
func (m *MemoryLedger) Debit(user string, n int) (int, error) {
	user, err := normalizeUser(user)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[user] < n {
		return m.balances[user], fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientTokens, user, m.balances[user], n)
	}
	m.balances[user] -= n
	return m.balances[user], nil
}

// StoreLedger persists balances as JSON entries in a key/value store.
// Updates are serialized within the process.
type StoreLedger struct {
	mu    sync.Mutex
	store contract.CacheStore
	now   func() time.Time
}

var _ contract.TokenLedger = &StoreLedger{} // Compile-time check

// NewStoreLedger returns a ledger backed by store.
func NewStoreLedger(store contract.CacheStore) *StoreLedger {
	return &StoreLedger{store: store, now: time.Now}
}

// Balance implements contract.TokenLedger.
func (s *StoreLedger) Balance(user string) (int, error) {
	user, err := normalizeUser(user)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.load(user)
	return entry.Balance, err
}

// Entry returns the stored entry for user, with a zero balance when absent.
func (s *StoreLedger) Entry(user string) (schema.LedgerEntry, error) {
	user, err := normalizeUser(user)
	if err != nil {
		return schema.LedgerEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(user)
}

// Credit implements contract.TokenLedger.
func (s *StoreLedger) Credit(user string, n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.update(user, func(balance int) (int, error) { return balance + n, nil })
}

// Debit implements contract.TokenLedger.
func (s *StoreLedger) Debit(user string, n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.update(user, func(balance int) (int, error) {
		if balance < n {
			return balance, fmt.Errorf("%w: has %d, needs %d", ErrInsufficientTokens, balance, n)
		}
		return balance - n, nil
	})
}

func (s *StoreLedger) update(user string, apply func(int) (int, error)) (int, error) {
	user, err := normalizeUser(user)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.load(user)
	if err != nil {
		return 0, err
	}
	next, err := apply(entry.Balance)
	if err != nil {
		return entry.Balance, fmt.Errorf("%s: %w", user, err)
	}

	entry.Balance = next
	entry.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(entry)
	if err != nil {
		return 0, fmt.Errorf("failed to encode balance for %s: %w", user, err)
	}
	if err := s.store.Set(user, data, entryVersion, entry.UpdatedAt.Unix()); err != nil {
		return 0, fmt.Errorf("failed to save balance for %s: %w", user, err)
	}
	return next, nil
}

func (s *StoreLedger) load(user string) (schema.LedgerEntry, error) {
	entry := schema.LedgerEntry{User: user}
	data, _, _, err := s.store.Get(user)
	if errors.Is(err, sql.ErrNoRows) {
		return entry, nil
	}
	if err != nil {
		return entry, fmt.Errorf("failed to read balance for %s: %w", user, err)
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return entry, fmt.Errorf("corrupt balance entry for %s: %w", user, err)
	}
	return entry, nil
}
