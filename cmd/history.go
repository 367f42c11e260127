package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/reposcore/core"
	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/internal/iocache"
	"github.com/huangsam/reposcore/internal/outwriter"
	"github.com/huangsam/reposcore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyTracker returns a tracker over the configured history store.
func historyTracker() *core.HistoryTracker {
	return core.NewHistoryTracker(iocache.Manager.GetHistoryStore())
}

// historyRepository parses the single positional repository argument.
func historyRepository(args []string) schema.RepositoryCoordinates {
	repo, err := contract.ParseRepositoryReference(args[0])
	if err != nil {
		contract.LogFatal("Invalid repository", err)
	}
	return repo
}

// migrateSetupWrapper validates config without opening stores, so migrations can run
// on a fresh database.
func migrateSetupWrapper(cmd *cobra.Command, args []string) error {
	return configSetupWrapper(cmd, args)
}

// historyCmd focused on score history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage the score history of analyzed repositories",
	Long: `Manage the score history recorded after every successful analysis.

For each repository Reposcore keeps the most recent 100 snapshots, storing:
- Analysis timestamp
- Overall score
- The six dimension scores

Supported backends: file (default), SQLite, MySQL, PostgreSQL, or none (in-memory)

Subcommands:
  trends  - Compare the two most recent snapshots of a repository
  stats   - Summarize every retained snapshot of a repository
  status  - Show history store statistics
  clear   - Remove all history
  export  - Export snapshots to Parquet
  migrate - Run database schema migrations

Examples:
  # See how a repository moved since its last analysis
  reposcore history trends cli/cli

  # Export for analysis in pandas/DuckDB
  reposcore history export --output-file history.parquet`,
}

// historyTrendsCmd prints trend directions between the two latest snapshots.
var historyTrendsCmd = &cobra.Command{
	Use:   "trends <repository>",
	Short: "Compare the two most recent snapshots of a repository",
	Long: `Compare the overall score and each dimension between the two most recent snapshots.

A change above +1% is "up", below -1% is "down", anything else is "stable".
A dimension whose previous value was 0 is reported as stable with no change.

Requires at least two recorded analyses.

Examples:
  reposcore history trends cli/cli
  reposcore history trends cli/cli --output csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		repo := historyRepository(args)
		report, err := historyTracker().GetTrends(repo.Owner, repo.Name)
		if err != nil {
			contract.LogFatal("Cannot compute trends", err)
		}
		if err := outwriter.NewOutWriter().WriteTrends(report, cfg); err != nil {
			contract.LogFatal("Cannot write trends", err)
		}
	},
}

// historyStatsCmd prints summary statistics of the retained snapshots.
var historyStatsCmd = &cobra.Command{
	Use:   "stats <repository>",
	Short: "Summarize every retained snapshot of a repository",
	Long: `Report count, mean, max and min of the overall score over the retained window.

The long-run trend splits the snapshots at their midpoint and compares the averages
of both halves: more than 2% higher is "improving", more than 2% lower is "declining".

Examples:
  reposcore history stats cli/cli --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		repo := historyRepository(args)
		stats, err := historyTracker().GetStatistics(repo.Owner, repo.Name)
		if err != nil {
			contract.LogFatal("Cannot compute statistics", err)
		}
		if err := outwriter.NewOutWriter().WriteStatistics(stats, cfg); err != nil {
			contract.LogFatal("Cannot write statistics", err)
		}
	},
}

// historyStatusCmd shows history store status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history store statistics and connection details",
	Long: `Show detailed information about the history store.

Displays:
- Backend type and connection status
- Number of repositories tracked
- Number of snapshots stored
- Oldest and newest snapshot timestamps
- Storage size

Examples:
  reposcore history status
  reposcore history status --history-backend sqlite`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.GetHistoryStatus(cfg.HistoryBackend)
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		if err := outwriter.NewOutWriter().WriteHistoryStatus(status, cfg); err != nil {
			contract.LogFatal("Cannot write history status", err)
		}
	},
}

// historyClearCmd clears the history store.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded score history",
	Long: `Delete every stored snapshot for every repository.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  reposcore history export --output-file backup.parquet
  reposcore history clear`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyExportCmd exports snapshots to a Parquet file.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export score history to Parquet for BI tools and analytics",
	Long: `Export every stored snapshot to Parquet, one row per snapshot.

Each row carries the repository, timestamp, overall score, grade and
the six dimension scores.

Requires: --output-file parameter

Examples:
  reposcore history export --output-file history.parquet

  # Query with DuckDB
  duckdb -c "SELECT repository_id, avg(overall_score) FROM read_parquet('history.parquet') GROUP BY 1"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if err := iocache.ExecuteHistoryExport(os.Stdout, store, cfg.OutputFile, core.GradeForScore); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the SQL history store.

By default, migrates to the latest version. Use --target-version for specific versions.
Only the sqlite, mysql and postgresql backends have migrations.

Examples:
  # Migrate to latest version (default)
  reposcore history migrate --history-backend sqlite

  # Rollback to initial state
  reposcore history migrate --history-backend postgresql --target-version 0`,
	PreRunE: migrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
