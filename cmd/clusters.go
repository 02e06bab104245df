package cmd

import (
	"github.com/huangsam/hmpi/core"
	"github.com/huangsam/hmpi/internal/contract"
	"github.com/spf13/cobra"
)

// clustersCmd groups samples into spatial risk zones.
var clustersCmd = &cobra.Command{
	Use:   "clusters <file>...",
	Short: "Group samples into spatial risk zones",
	Long: `Group geolocated samples into risk zones with DBSCAN.

Latitude, longitude and index value are standardized to z-scores before clustering,
so --eps is measured in standard deviations. Samples without coordinates are skipped,
and samples that belong to no dense region are reported as noise.

By default the computed HMPI is clustered. Use --value-column to cluster a
precomputed forecast column instead, or --forecast for the default forecast column.

Examples:
  # Zones with default parameters
  hmpi clusters wells.csv

  # Tighter zones ranked by average index
  hmpi clusters wells.csv --eps 0.8 --min-pts 3 --sort hmpi

  # Zones over an ensemble forecast as GeoJSON
  hmpi clusters forecast.csv --forecast --output geojson --output-file zones.geojson`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteClusters(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot cluster samples", err)
		}
	},
}
