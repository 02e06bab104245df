package cmd

import (
	"github.com/huangsam/hmpi/core"
	"github.com/huangsam/hmpi/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// tokensCmd manages token balances.
var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Quote and manage token balances",
	Long: `Quote the token cost of scoring datasets and manage per-user balances.

The first 50 rows of a dataset are free. Every started block of 5 rows after that
costs 2.5 tokens, rounded up to a whole token. Balances persist in the cache backend (none keeps them in memory).

Subcommands:
  quote   - Price files and extra rows against a balance
  balance - Show the balance of --user
  add     - Credit tokens to --user

Examples:
  hmpi tokens quote wells.csv --user alice
  hmpi tokens add --user alice --amount 20`,
}

// tokensQuoteCmd prices a request.
var tokensQuoteCmd = &cobra.Command{
	Use:     "quote [file]...",
	Short:   "Price files and extra rows against a user's balance",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTokenQuote(rootCtx, cfg, cacheManager, viper.GetInt("rows")); err != nil {
			contract.LogFatal("Cannot quote tokens", err)
		}
	},
}

// tokensBalanceCmd shows a balance.
var tokensBalanceCmd = &cobra.Command{
	Use:     "balance",
	Short:   "Show the token balance of --user",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTokenBalance(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot read balance", err)
		}
	},
}

// tokensAddCmd credits tokens.
var tokensAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Credit tokens to --user",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTokenAdd(rootCtx, cfg, cacheManager, viper.GetInt("amount")); err != nil {
			contract.LogFatal("Cannot credit tokens", err)
		}
	},
}
