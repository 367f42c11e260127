// Package cmd defines the command-line interface for reposcore.
package cmd

import (
	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(weightsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyTrendsCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.Int("max-repos", contract.DefaultMaxReposPerBatch, "Maximum repositories per batch; extra references are dropped")
	flags.Int("concurrency", contract.DefaultConcurrency, "Repositories analyzed at once within a batch window")
	flags.String("timeout", contract.DefaultTimeout.String(), "Per-request GitHub timeout (Go duration or milliseconds)")
	flags.String("cache-ttl", contract.DefaultCacheTTL.String(), "How long a cached result stays valid (Go duration or milliseconds)")
	flags.String("cache", "yes", "Enable the result cache (yes/no/true/false/1/0)")
	flags.String("cache-backend", string(schema.FileBackend), "Cache backend: file or sqlite or mysql or postgresql or none")
	flags.String("cache-dir", "", "Directory for the file cache backend (default $HOME/.reposcore/cache)")
	flags.String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("history-backend", string(schema.FileBackend), "History backend: file or sqlite or mysql or postgresql or none")
	flags.String("history-dir", "", "Directory for the file history backend (default $HOME/.reposcore/history)")
	flags.String("history-db-connect", "", "Database connection string for history (must differ from cache-db-connect)")
	flags.String("github-host", contract.DefaultGitHubHost, "GitHub host, for GitHub Enterprise Server")
	flags.String("github-token", "", "GitHub token (defaults to the gh CLI credentials)")
	flags.String("output", string(schema.TextOut), "Output format: text or json or csv")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.BoolP("verbose", "v", false, "Log debug details to stderr")
	flags.String("metrics-addr", "", "Serve Prometheus metrics at this address (e.g., :9464)")
	flags.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	flags.String("config", "", "Path to config file")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Per-run switches shared by analyze and batch; read from the command, not Viper
	for _, c := range []*cobra.Command{analyzeCmd, batchCmd} {
		c.Flags().Bool("refresh", false, "Skip the cache and analyze again")
		c.Flags().Bool("no-history", false, "Do not record this analysis in the history")
	}

	// Bind all flags of batchCmd to Viper
	batchCmd.Flags().String("input-file", "", "File with one repository reference per line (# starts a comment)")
	if err := viper.BindPFlag("input-file", batchCmd.Flags().Lookup("input-file")); err != nil {
		contract.LogFatal("Error binding batch flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
