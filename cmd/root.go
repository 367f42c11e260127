package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/reposcore/core"
	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/internal/iocache"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Build metadata, overridden with -ldflags "-X" at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the parent of every per-command context.
var rootCtx = context.Background()

// cfg is the validated configuration every command reads.
var cfg = &contract.Config{}

// input receives the merged viper values before validation.
var input = &contract.ConfigRawInput{}

// profile is filled from --profile during setup.
var profile = &contract.ProfileConfig{}

// rootCmd is the reposcore command; it only prints help on its own.
var rootCmd = &cobra.Command{
	Use:   "reposcore",
	Short: "Score GitHub repositories on code quality, docs, testing, community, security and dependencies.",
	Long: `Reposcore collects signals about a GitHub repository, aggregates them into a
weighted 0-100 quality score with a letter grade, and tracks how that score moves over time.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig wires the config file, REPOSCORE_* variables and defaults into viper.
func initConfig() {
	setConfigFile()

	// REPOSCORE_CACHE_TTL maps to cache-ttl
	viper.SetEnvPrefix("REPOSCORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	defaults := contract.DefaultRawInput()
	for key, value := range map[string]any{
		"max-repos":          defaults.MaxRepos,
		"concurrency":        defaults.Concurrency,
		"timeout":            defaults.Timeout,
		"cache-ttl":          defaults.CacheTTL,
		"cache":              defaults.Cache,
		"cache-backend":      defaults.CacheBackend,
		"cache-dir":          "",
		"cache-db-connect":   "",
		"history-backend":    defaults.HistoryBackend,
		"history-dir":        "",
		"history-db-connect": "",
		"github-host":        defaults.GitHubHost,
		"github-token":       "",
		"output":             defaults.Output,
		"color":              defaults.Color,
	} {
		viper.SetDefault(key, value)
	}
}

// setConfigFile points Viper at --config or the default .reposcore search paths.
func setConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".reposcore")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// loadConfig reads the config file, unmarshals every source and validates the result into cfg.
func loadConfig() error {
	// A missing .reposcore is fine; a broken one is not
	var notFound viper.ConfigFileNotFoundError
	if err := viper.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("cannot read config file %s: %w", viper.ConfigFileUsed(), err)
	}

	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("cannot decode configuration: %w", err)
	}

	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	contract.SetVerbose(cfg.Verbose)
	color.NoColor = !cfg.UseColors
	return nil
}

// sharedSetup validates config and opens the cache and history stores.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	if err := contract.ProcessProfilingConfig(profile, viper.GetString("profile")); err != nil {
		return fmt.Errorf("invalid --profile: %w", err)
	}
	if err := startProfiling(); err != nil {
		return err
	}

	if err := loadConfig(); err != nil {
		return err
	}

	// Persistence failures degrade to memory and are logged by InitStores
	iocache.InitStores(cfg)
	return nil
}

// sharedSetupWrapper adapts sharedSetup to PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// configSetupWrapper validates config without touching any store.
func configSetupWrapper(_ *cobra.Command, _ []string) error {
	return loadConfig()
}

// runContext returns the root context decorated with the --refresh and --no-history switches of cmd.
func runContext(cmd *cobra.Command) context.Context {
	ctx := rootCtx
	if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
		ctx = core.WithRefresh(ctx)
	}
	if skip, _ := cmd.Flags().GetBool("no-history"); skip {
		ctx = core.WithoutHistory(ctx)
	}
	return ctx
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
