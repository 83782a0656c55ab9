package cmd

import (
	"fmt"

	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/internal/iocache"
	"github.com/huangsam/repohealth/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get cache-related config values
	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by scoring commands. This avoids repository
// resolution and complex config processing for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the repository snapshot cache (improves performance)",
	Long: `Manage the snapshot cache that speeds up repeated scoring.

Repohealth caches fetched repository snapshots keyed by source, repository and
revision, so re-scoring an unchanged repository skips the API or git calls.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show cache statistics and connection info
  clear   - Remove all cached data
  migrate - Upgrade or roll back the cache schema

Examples:
  # Check cache status
  repohealth cache status

  # Clear cache after a force push
  repohealth cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached repository snapshots",
	Long: `Delete all cached snapshots from the configured backend.

Use this when:
- Repository history was rewritten (rebase, force push)
- Cache may be stale or corrupted
- Testing performance without cache

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache tables

Examples:
  # Clear SQLite cache (default)
  repohealth cache clear

  # Clear MySQL cache (set connection string via env variable)
  REPOHEALTH_CACHE_BACKEND=mysql REPOHEALTH_CACHE_DB_CONNECT="..." repohealth cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, iocache.GetDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the snapshot cache.

Displays:
- Backend type and connection status
- Total number of cached entries
- Last and oldest cache entry timestamps
- Cache table size

Examples:
  # Check cache status
  repohealth cache status`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cacheSetupWrapper(cmd, args); err != nil {
			return err
		}
		if err := iocache.InitCaching(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		status, err := cacheManager.GetSnapshotStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(status)
	},
}

// cacheMigrateCmd runs schema migrations.
var cacheMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the snapshot cache.

Migrations allow:
- Upgrading to new schema versions when repohealth is updated
- Rolling back schema changes if needed

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  repohealth cache migrate

  # Rollback to initial state
  repohealth cache migrate --target-version 0`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateCache(cfg.CacheBackend, cfg.CacheDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
