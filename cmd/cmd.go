// Package cmd defines the command-line interface for hmpi.
package cmd

import (
	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(clustersCmd)
	rootCmd.AddCommand(contribCmd)
	rootCmd.AddCommand(limitsCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the tokens subcommands to the parent tokens command
	tokensCmd.AddCommand(tokensQuoteCmd)
	tokensCmd.AddCommand(tokensBalanceCmd)
	tokensCmd.AddCommand(tokensAddCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of samples to display per dataset (0 = all)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or geojson or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of datasets scored concurrently")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("strategy", string(schema.HalfImpute), "Missing value strategy: half or zero or mean or median or none")
	rootCmd.PersistentFlags().String("match-mode", string(schema.SubstringMatch), "Header matching: substring or exact")
	rootCmd.PersistentFlags().String("sort", string(schema.InputOrder), "Sample order: input or hmpi")
	rootCmd.PersistentFlags().String("user", "", "Account charged for datasets over the free row allowance")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emoji risk markers in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of clustersCmd to Viper
	clustersCmd.Flags().Float64("eps", schema.DefaultEps, "DBSCAN neighborhood radius in standardized units")
	clustersCmd.Flags().Int("min-pts", schema.DefaultMinPts, "DBSCAN minimum points per dense region")
	clustersCmd.Flags().String("value-column", "", "Cluster on this forecast column instead of the computed index")
	clustersCmd.Flags().Bool("forecast", false, "Cluster on the "+contract.DefaultValueColumn+" column")
	if err := viper.BindPFlags(clustersCmd.Flags()); err != nil {
		contract.LogFatal("Error binding clusters flags", err)
	}

	// Bind all flags of tokensQuoteCmd to Viper
	tokensQuoteCmd.Flags().Int("rows", 0, "Extra rows to price on top of the given files")
	if err := viper.BindPFlags(tokensQuoteCmd.Flags()); err != nil {
		contract.LogFatal("Error binding tokens quote flags", err)
	}

	// Bind all flags of tokensAddCmd to Viper
	tokensAddCmd.Flags().Int("amount", 0, "Number of tokens to credit")
	if err := viper.BindPFlags(tokensAddCmd.Flags()); err != nil {
		contract.LogFatal("Error binding tokens add flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
