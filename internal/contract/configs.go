package contract

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/reposcore/schema"
)

// Default values for configuration.
const (
	DefaultMaxReposPerBatch = 10
	MaxReposPerBatchLimit   = 100
	DefaultConcurrency      = 3
	DefaultTimeout          = 30 * time.Second
	DefaultCacheTTL         = time.Hour
	DefaultGitHubHost       = "github.com"
)

// weightTolerance is the allowed deviation of the weight sum from 1.0.
const weightTolerance = 0.01

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DefaultWeights returns the built-in dimension weights.
func DefaultWeights() map[schema.Dimension]float64 {
	return map[schema.Dimension]float64{
		schema.CodeQualityDimension:   0.20,
		schema.DocumentationDimension: 0.15,
		schema.TestingDimension:       0.20,
		schema.CommunityDimension:     0.15,
		schema.SecurityDimension:      0.20,
		schema.DependenciesDimension:  0.10,
	}
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// WeightsRawInput holds custom dimension weights from the YAML config file.
// Use float64 pointers so that omitted dimensions keep their defaults.
type WeightsRawInput struct {
	CodeQuality   *float64 `mapstructure:"code_quality"`
	Documentation *float64 `mapstructure:"documentation"`
	Testing       *float64 `mapstructure:"testing"`
	Community     *float64 `mapstructure:"community"`
	Security      *float64 `mapstructure:"security"`
	Dependencies  *float64 `mapstructure:"dependencies"`
}

// Config holds the runtime configuration for the pipeline.
// This struct is the "final, validated" config.
type Config struct {
	Weights          map[schema.Dimension]float64
	MaxReposPerBatch int
	Concurrency      int
	Timeout          time.Duration
	CacheTTL         time.Duration
	CacheEnabled     bool

	CacheBackend   schema.DatabaseBackend
	CacheDir       string
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDir       string
	HistoryDBConnect string // Please use env var as this is plaintext

	GitHubHost  string
	GitHubToken string

	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
	Verbose     bool
	MetricsAddr string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	MaxRepos         int    `mapstructure:"max-repos"`
	Concurrency      int    `mapstructure:"concurrency"`
	Timeout          string `mapstructure:"timeout"`
	CacheTTL         string `mapstructure:"cache-ttl"`
	Cache            string `mapstructure:"cache"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDir         string `mapstructure:"cache-dir"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDir       string `mapstructure:"history-dir"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	GitHubHost       string `mapstructure:"github-host"`
	GitHubToken      string `mapstructure:"github-token"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	Verbose          bool   `mapstructure:"verbose"`
	MetricsAddr      string `mapstructure:"metrics-addr"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`
}

// DefaultRawInput returns the raw input that corresponds to all defaults.
func DefaultRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		MaxRepos:       DefaultMaxReposPerBatch,
		Concurrency:    DefaultConcurrency,
		Timeout:        DefaultTimeout.String(),
		CacheTTL:       DefaultCacheTTL.String(),
		Cache:          "yes",
		CacheBackend:   string(schema.FileBackend),
		HistoryBackend: string(schema.FileBackend),
		GitHubHost:     DefaultGitHubHost,
		Output:         string(schema.TextOut),
		Color:          "yes",
	}
}

// DefaultConfig returns a fully-populated configuration built from defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := ProcessAndValidate(cfg, DefaultRawInput()); err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return cfg
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Weights != nil {
		clone.Weights = make(map[schema.Dimension]float64, len(c.Weights))
		maps.Copy(clone.Weights, c.Weights)
	}
	return &clone
}

// ProcessAndValidate populates cfg from input and rejects invalid values.
// Every returned error matches ErrConfigInvalid.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDurations(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processCustomWeights(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates limits, flags and output settings.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose
	cfg.MetricsAddr = input.MetricsAddr
	cfg.GitHubToken = input.GitHubToken

	cfg.GitHubHost = input.GitHubHost
	if cfg.GitHubHost == "" {
		cfg.GitHubHost = DefaultGitHubHost
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return configError("invalid --color value: %v", err)
	}
	cfg.UseColors = colors

	cacheEnabled, err := ParseBoolString(input.Cache)
	if err != nil {
		return configError("invalid --cache value: %v", err)
	}
	cfg.CacheEnabled = cacheEnabled

	if input.MaxRepos < 1 || input.MaxRepos > MaxReposPerBatchLimit {
		return configError("max-repos must be between 1 and %d (received %d)", MaxReposPerBatchLimit, input.MaxRepos)
	}
	cfg.MaxReposPerBatch = input.MaxRepos

	// A window never needs to be wider than the batch itself
	if input.Concurrency < 1 {
		return configError("concurrency must be greater than 0 (received %d)", input.Concurrency)
	}
	cfg.Concurrency = min(input.Concurrency, input.MaxRepos)

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return configError("invalid output format '%s'. must be text, json, csv", input.Output)
	}

	return nil
}

// processDurations parses the timeout and cache TTL.
func processDurations(cfg *Config, input *ConfigRawInput) error {
	timeout, err := parsePositiveDuration("timeout", input.Timeout)
	if err != nil {
		return err
	}
	cfg.Timeout = timeout

	ttl, err := parsePositiveDuration("cache-ttl", input.CacheTTL)
	if err != nil {
		return err
	}
	cfg.CacheTTL = ttl
	return nil
}

// parsePositiveDuration accepts Go durations ("30s", "1h") or bare milliseconds ("30000").
func parsePositiveDuration(name, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, configError("%s is required", name)
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		ms, parseErr := strconv.ParseInt(value, 10, 64)
		if parseErr != nil {
			return 0, configError("invalid %s '%s': %v", name, value, err)
		}
		d = time.Duration(ms) * time.Millisecond
	}
	if d <= 0 {
		return 0, configError("%s must be positive (received %s)", name, value)
	}
	return d, nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.FileBackend, schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseBackend normalizes a backend name, treating an empty value as the file backend.
func ParseBackend(kind, value string) (schema.DatabaseBackend, error) {
	if value == "" {
		return schema.FileBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(value))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid %s backend '%s'. must be file, sqlite, mysql, postgresql, none", kind, value)
	}
	return backend, nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	backend, err := ParseBackend("cache", input.CacheBackend)
	if err != nil {
		return configError("%v", err)
	}
	cfg.CacheBackend = backend
	cfg.CacheDir = input.CacheDir
	if cfg.CacheDir == "" {
		cfg.CacheDir = GetCacheDirPath()
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return configError("cache: %v", err)
	}

	// --- History Backend Validation ---
	backend, err = ParseBackend("history", input.HistoryBackend)
	if err != nil {
		return configError("%v", err)
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDir = input.HistoryDir
	if cfg.HistoryDir == "" {
		cfg.HistoryDir = GetHistoryDirPath()
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return configError("history: %v", err)
	}

	// Cache and history must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return configError("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	// The same applies to file directories
	if cfg.CacheBackend == schema.FileBackend && cfg.HistoryBackend == schema.FileBackend && cfg.CacheDir == cfg.HistoryDir {
		return configError("cache and history storage must use different directories. Both resolve to %q", cfg.CacheDir)
	}

	return nil
}

// ProcessWeightsRawInput converts WeightsRawInput into the final weights map.
// Custom weights are merged over the defaults. If validateSum is true, the merged
// weights must sum to 1.0 within tolerance.
func ProcessWeightsRawInput(weights WeightsRawInput, validateSum bool) (map[schema.Dimension]float64, error) {
	result := DefaultWeights()

	custom := map[schema.Dimension]*float64{
		schema.CodeQualityDimension:   weights.CodeQuality,
		schema.DocumentationDimension: weights.Documentation,
		schema.TestingDimension:       weights.Testing,
		schema.CommunityDimension:     weights.Community,
		schema.SecurityDimension:      weights.Security,
		schema.DependenciesDimension:  weights.Dependencies,
	}

	sum := 0.0
	for _, d := range schema.AllDimensions {
		if w := custom[d]; w != nil {
			if *w < 0 || *w > 1 {
				return nil, fmt.Errorf("weight for %s must be between 0 and 1, got %.3f", d, *w)
			}
			result[d] = *w
		}
		sum += result[d]
	}

	if validateSum && (sum < 1-weightTolerance || sum > 1+weightTolerance) {
		return nil, fmt.Errorf("dimension weights must sum to 1.0, got %.3f", sum)
	}

	return result, nil
}

// processCustomWeights computes cfg.Weights from defaults and custom overrides.
func processCustomWeights(cfg *Config, input *ConfigRawInput) error {
	weights, err := ProcessWeightsRawInput(input.Weights, true)
	if err != nil {
		return configError("%v", err)
	}
	cfg.Weights = weights
	return nil
}

// ProcessProfilingConfig processes the profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	profile.Enabled = profilePrefix != ""
	profile.Prefix = profilePrefix
	return nil
}
