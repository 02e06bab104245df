package core

import (
	"context"

	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/internal/ledger"
	"github.com/huangsam/hmpi/internal/loader"
	"github.com/huangsam/hmpi/internal/outwriter"
	"github.com/huangsam/hmpi/schema"
)

// memoryLedger holds balances for the lifetime of the process when no cache
// backend is configured.
var memoryLedger = ledger.NewMemoryLedger()

// LedgerFor returns the token ledger for cfg. Balances persist in the cache
// backend's ledger table; with no backend they live in process memory.
func LedgerFor(cfg *contract.Config, mgr contract.CacheManager) contract.TokenLedger {
	if mgr == nil || cfg.CacheBackend == "" || cfg.CacheBackend == schema.NoneBackend {
		return memoryLedger
	}
	store := mgr.GetLedgerStore()
	if store == nil {
		return memoryLedger
	}
	return ledger.NewStoreLedger(store)
}

// ExecuteTokenQuote prices a request of extra rows plus the rows of every input.
func ExecuteTokenQuote(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, extraRows int) error {
	q, err := GetTokenQuote(ctx, cfg, mgr, extraRows)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteQuote(q, cfg)
}

// GetTokenQuote counts the rows of every input and quotes them against the
// balance of cfg.User.
func GetTokenQuote(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, extraRows int) (ledger.Quote, error) {
	rows := max(extraRows, 0)
	for _, path := range cfg.Inputs {
		if err := ctx.Err(); err != nil {
			return ledger.Quote{}, err
		}
		table, err := loader.Load(path)
		if err != nil {
			return ledger.Quote{}, err
		}
		rows += len(table.Rows)
	}
	return ledger.QuoteFor(LedgerFor(cfg, mgr), cfg.User, rows)
}

// ExecuteTokenBalance prints the balance of cfg.User.
func ExecuteTokenBalance(_ context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	q, err := ledger.QuoteFor(LedgerFor(cfg, mgr), cfg.User, 0)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteQuote(q, cfg)
}

// ExecuteTokenAdd credits amount tokens to cfg.User and prints the new balance.
func ExecuteTokenAdd(_ context.Context, cfg *contract.Config, mgr contract.CacheManager, amount int) error {
	balance, err := LedgerFor(cfg, mgr).Credit(cfg.User, amount)
	if err != nil {
		return err
	}
	contract.LogInfo("Credited tokens", "user", cfg.User, "tokens", amount, "balance", balance)
	return outwriter.NewOutWriter().WriteQuote(ledger.Quote{User: cfg.User, Balance: balance, Sufficient: true}, cfg)
}
