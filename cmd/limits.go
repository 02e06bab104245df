package cmd

import (
	"github.com/huangsam/hmpi/core"
	"github.com/huangsam/hmpi/internal/contract"
	"github.com/spf13/cobra"
)

// limitsCmd prints the standard limits table.
var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "List standard limits and unit weights",
	Long: `List the regulatory limit (mg/L) of every metal and the unit weight it would
receive if every regulated metal were detected.

Limits can be overridden in the config file:

  limits:
    Pb: 0.01
    Zn: 0     # a zero limit unregulates the metal

Examples:
  hmpi limits
  hmpi limits --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLimits(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list limits", err)
		}
	},
}
