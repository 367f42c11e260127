package cmd

import (
	"fmt"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/internal/iocache"
	"github.com/huangsam/reposcore/internal/outwriter"
	"github.com/spf13/cobra"
)

// cacheCmd focused on cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analysis result cache (avoids repeated GitHub calls)",
	Long: `Manage the cache that stores complete analysis results per repository.

A cached result is reused until --cache-ttl elapses, so repeated analyses of the
same repository skip the GitHub API entirely. Use --refresh on analyze or batch
to bypass it for one run.

Supported backends: file (default), SQLite, MySQL, PostgreSQL, or none (in-memory)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  reposcore cache status

  # Clear cache after tuning weights
  reposcore cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached analysis results",
	Long: `Delete all cached analysis results from the configured backend.

Use this when:
- Weights changed and cached scores are outdated
- A repository changed significantly within the TTL
- Cache may be stale or corrupted

Examples:
  reposcore cache clear
  reposcore cache clear --cache-backend sqlite`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the analysis cache.

Displays:
- Backend type and connection status
- Number of persisted entries
- Oldest and newest entry timestamps
- Persisted size

Examples:
  reposcore cache status
  reposcore cache status --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.GetCacheStatus(cfg.CacheBackend)
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		if err := outwriter.NewOutWriter().WriteCacheStatus(status, cfg); err != nil {
			contract.LogFatal("Cannot write cache status", err)
		}
	},
}
