package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/internal/iocache"
	"github.com/huangsam/hmpi/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup opens only the result cache and token ledger, skipping input
// and engine validation.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := backendFromConfig("cache-backend", "cache-db-connect", schema.SQLiteBackend)
	if err != nil {
		return err
	}
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// backendFromConfig reads a backend and its connection string from viper and
// validates the pair. An empty backend resolves to fallback.
func backendFromConfig(backendKey, connKey string, fallback schema.DatabaseBackend) (schema.DatabaseBackend, string, error) {
	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString(backendKey)))
	if backend == "" {
		backend = fallback
	}
	connStr := viper.GetString(connKey)
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Cache subcommands use cacheSetup instead of sharedSetup, so they run
// without input files or engine options.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the result cache and token ledger",
	Long: `Manage the store that holds computed index results and token balances.

Index results are cached by dataset content and engine options, so scoring the
same table twice skips the computation. Token balances live in the same backend.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove cached results and token balances

Examples:
  # Check cache status
  hmpi cache status

  # Start over after changing standard limits outside the config file
  hmpi cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached results and token balances",
	Long: `Delete cached index results and token balances from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the result and ledger tables

Examples:
  # Clear SQLite cache (default)
  hmpi cache clear

  # Clear MySQL cache (set connection string via env variable)
  HMPI_CACHE_BACKEND=mysql HMPI_CACHE_DB_CONNECT="..." hmpi cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, contract.GetCacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the backend, connection state, entry count, entry timestamps and table
size of the result cache.

Examples:
  hmpi cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetResultStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
