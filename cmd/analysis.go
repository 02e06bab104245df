package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/internal/iocache"
	"github.com/huangsam/hmpi/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// analysisSetup opens only the analysis store.
func analysisSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := backendFromConfig("analysis-backend", "analysis-db-connect", schema.NoneBackend)
	if err != nil {
		return err
	}
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize analysis: %w", err)
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// analysisSetupWrapper wraps analysisSetup to provide PreRunE for analysis commands.
func analysisSetupWrapper(_ *cobra.Command, _ []string) error {
	return analysisSetup()
}

// analysisMigrateSetup resolves the analysis backend without opening it, so
// migrations can run against a fresh database.
func analysisMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := backendFromConfig("analysis-backend", "analysis-db-connect", schema.NoneBackend)
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetAnalysisDBFilePath()
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	return nil
}

// trackingStore returns the analysis store, or nil when tracking is disabled.
func trackingStore() contract.AnalysisStore {
	if cfg.AnalysisBackend == schema.NoneBackend {
		return nil
	}
	return iocache.Manager.GetAnalysisStore()
}

// analysisCmd manages the index run history.
var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Manage the history of index runs",
	Long: `Manage the history of index runs recorded when --analysis-backend is set.

Each scored dataset is stored as one run holding:
- Run metadata (timestamp, engine settings, duration)
- Every sample's index, risk category and coordinates

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show run history statistics
  export  - Export runs and sample results to Parquet
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  # Record runs while scoring
  hmpi index wells.csv --analysis-backend sqlite

  # Export for analysis in pandas/DuckDB
  hmpi analysis export --analysis-backend sqlite --output-file history.parquet`,
}

// analysisClearCmd clears the analysis data.
var analysisClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs and sample results",
	Long: `Delete all stored index runs and their sample results.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  hmpi analysis export --analysis-backend sqlite --output-file backup.parquet
  hmpi analysis clear --analysis-backend sqlite`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearAnalysis(cfg.AnalysisBackend, contract.GetAnalysisDBFilePath(), cfg.AnalysisDBConnect); err != nil {
			contract.LogFatal("Failed to clear analysis data", err)
		}
		fmt.Println("Analysis data cleared successfully.")
	},
}

// analysisStatusCmd shows analysis status.
var analysisStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show the backend, connection state, number of runs, run timestamps, number of
samples scored and table sizes of the analysis store.

Examples:
  hmpi analysis status --analysis-backend sqlite`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetAnalysisStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get analysis status", err)
		}
		iocache.PrintAnalysisStatus(os.Stdout, status)
	},
}

// analysisExportCmd exports analysis data to Parquet files.
var analysisExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet",
	Long: `Export all recorded runs and sample results to Parquet.

Two files are written using --output-file as the prefix: <prefix>.analysis_runs.parquet
and <prefix>.sample_results.parquet. Both can be queried with DuckDB, pandas or Spark.

Requires: --output-file parameter

Examples:
  hmpi analysis export --analysis-backend sqlite --output-file history.parquet
  duckdb -c "SELECT risk_category, count(*) FROM read_parquet('history.parquet.sample_results.parquet') GROUP BY 1"`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteAnalysisExport(os.Stdout, trackingStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export analysis data", err)
		}
	},
}

// analysisMigrateCmd runs database migrations for the analysis store.
var analysisMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Move the analysis store schema to the latest or a given version.

Examples:
  # Migrate to latest version (default)
  hmpi analysis migrate --analysis-backend sqlite

  # Rollback to the initial state
  hmpi analysis migrate --analysis-backend sqlite --target-version 0`,
	PreRunE: analysisMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateAnalysis(cfg.AnalysisBackend, cfg.AnalysisDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
