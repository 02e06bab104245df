package cmd

import (
	"github.com/huangsam/hmpi/core"
	"github.com/huangsam/hmpi/internal/contract"
	"github.com/spf13/cobra"
)

// indexCmd scores every sample of one or more datasets.
var indexCmd = &cobra.Command{
	Use:   "index <file>...",
	Short: "Compute the pollution index and risk category of every sample",
	Long: `Compute the Heavy Metal Pollution Index (HMPI) of every sample in one or more
CSV or XLSX files.

Headers are mapped to metals by keyword (e.g. "Pb", "Lead_mg_L"), missing readings are
filled by the chosen --strategy, and columns reported in ug/L are detected and converted.
Each sample is classified as:
  Safe     - HMPI at most 60
  Moderate - HMPI above 60 and at most 100
  High     - HMPI above 100

Arguments may be glob patterns. Datasets with more rows than the free allowance are
charged to --user.

Examples:
  # Score a survey with default settings
  hmpi index wells.csv

  # Rank the ten most contaminated samples
  hmpi index wells.csv --sort hmpi --limit 10

  # Keep missing readings out of the index
  hmpi index 'surveys/*.xlsx' --strategy none --output json`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteIndex(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compute index", err)
		}
	},
}
