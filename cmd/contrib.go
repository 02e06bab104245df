package cmd

import (
	"github.com/huangsam/hmpi/core"
	"github.com/huangsam/hmpi/internal/contract"
	"github.com/spf13/cobra"
)

// contribCmd breaks each index down by metal.
var contribCmd = &cobra.Command{
	Use:   "contrib <file>...",
	Short: "Show which metals drive each sample's index",
	Long: `Break the index of each sample down into per-metal sub-indices and percentage
shares, alongside the measured concentration and standard limit of every metal.

A summary of how many samples fall in each risk category is printed per dataset.
Samples with an undefined or zero index have no breakdown.

Examples:
  # Contributions for the five worst samples
  hmpi contrib wells.csv --sort hmpi --limit 5

  # Export breakdowns as JSON
  hmpi contrib wells.csv --output json --output-file contrib.json`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteContrib(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compute contributions", err)
		}
	},
}
