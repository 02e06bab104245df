package cmd

import (
	"github.com/huangsam/hmpi/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the HMPI MCP server",
	Long: `Launch an MCP server on stdio so AI agents can score datasets, cluster risk
zones, explain contributions and quote token costs through standard tools.

Flags given here become the defaults of every tool call.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
