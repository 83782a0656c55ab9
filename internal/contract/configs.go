package contract

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/repohealth/schema"
)

// Default values for configuration.
const (
	DefaultPrecision   = 1
	DefaultAPIURL      = "https://api.github.com"
	DefaultTimeout     = 30 * time.Second
	DefaultRetries     = 5
	DefaultRateLimit   = 10.0
	DefaultCacheTTL    = time.Hour
	DefaultOverallGate = 60.0
	MaxRetries         = 10
)

// OverallTarget is the threshold key that gates the overall score.
const OverallTarget = "overall"

// TokenEnvVar is read when no token is configured explicitly.
const TokenEnvVar = "GITHUB_TOKEN"

// weightTolerance is how far custom weights may drift from a sum of 1.0.
const weightTolerance = 0.001

// DefaultWorkers is the default number of concurrent analyzer workers.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// WeightsRawInput holds custom analyzer weights from the YAML config file.
// Use float64 pointers so that omitted analyzers keep their default.
type WeightsRawInput struct {
	Documentation *float64 `mapstructure:"documentation"`
	Tests         *float64 `mapstructure:"tests"`
	CICD          *float64 `mapstructure:"cicd"`
	Dependencies  *float64 `mapstructure:"dependencies"`
	BusFactor     *float64 `mapstructure:"bus_factor"`
}

// ThresholdsRawInput holds check thresholds from the YAML config file.
type ThresholdsRawInput struct {
	Overall       *float64 `mapstructure:"overall"`
	Documentation *float64 `mapstructure:"documentation"`
	Tests         *float64 `mapstructure:"tests"`
	CICD          *float64 `mapstructure:"cicd"`
	Dependencies  *float64 `mapstructure:"dependencies"`
	BusFactor     *float64 `mapstructure:"bus_factor"`
}

// Config holds the runtime configuration for a scoring run.
// This struct remains the "final, validated" config.
type Config struct {
	Target RepoTarget

	Token     string // Please use env var as this is plaintext
	APIURL    string
	Timeout   time.Duration
	Retries   int
	RateLimit float64 // Requests per second against the API

	Workers    int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	Quiet      bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	// CustomWeights holds only the weights set by the user, keyed by analyzer name.
	CustomWeights map[string]float64

	// Weights is the final weight of every analyzer, computed from defaults + custom overrides.
	Weights map[string]float64

	// Thresholds maps "overall" or an analyzer name to its minimum passing score.
	Thresholds map[string]float64

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoArg string

	// --- Fields from rootCmd.PersistentFlags() ---
	Source         string  `mapstructure:"source"`
	Token          string  `mapstructure:"token"`
	APIURL         string  `mapstructure:"api-url"`
	Timeout        string  `mapstructure:"timeout"`
	Retries        int     `mapstructure:"retries"`
	RateLimit      float64 `mapstructure:"rate-limit"`
	Workers        int     `mapstructure:"workers"`
	Precision      int     `mapstructure:"precision"`
	Output         string  `mapstructure:"output"`
	OutputFile     string  `mapstructure:"output-file"`
	Width          int     `mapstructure:"width"`
	Quiet          bool    `mapstructure:"quiet"`
	CacheBackend   string  `mapstructure:"cache-backend"`
	CacheDBConnect string  `mapstructure:"cache-db-connect"`
	CacheTTL       string  `mapstructure:"cache-ttl"`
	Emoji          string  `mapstructure:"emoji"`
	Color          string  `mapstructure:"color"`

	// --- Fields from checkCmd.Flags() ---
	ThresholdsStr string `mapstructure:"thresholds-override"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`

	// --- Check thresholds from config file ---
	Thresholds ThresholdsRawInput `mapstructure:"thresholds"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.CustomWeights != nil {
		clone.CustomWeights = maps.Clone(c.CustomWeights)
	}
	if c.Weights != nil {
		clone.Weights = maps.Clone(c.Weights)
	}
	if c.Thresholds != nil {
		clone.Thresholds = maps.Clone(c.Thresholds)
	}
	return &clone
}

// CloneWithTarget creates a copy of the Config that scores a different repository.
func (c *Config) CloneWithTarget(target RepoTarget) *Config {
	clone := c.Clone()
	clone.Target = target
	return clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := ProcessSettings(cfg, input); err != nil {
		return err
	}
	if err := resolveTarget(ctx, cfg, client, input); err != nil {
		return err
	}
	return nil
}

// ProcessSettings validates every input except the repository argument.
// Commands that do not score a single repository use it on its own.
func ProcessSettings(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSourceSettings(cfg, input); err != nil {
		return err
	}
	if err := processCustomWeights(cfg, input); err != nil {
		return err
	}
	return processThresholds(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
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

// validateBackendConfigs validates the cache backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		ttl, err := time.ParseDuration(input.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache-ttl '%s': %w", input.CacheTTL, err)
		}
		if ttl < 0 {
			return fmt.Errorf("cache-ttl cannot be negative (received %s)", input.CacheTTL)
		}
		cfg.CacheTTL = ttl
	}
	return nil
}

// validateSimpleInputs processes and validates all output and runtime fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Quiet = input.Quiet

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json, yaml, csv, markdown, parquet, prometheus", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	if cfg.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", cfg.Width)
	}

	// --- 3. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processSourceSettings validates the API access settings used by remote sources.
func processSourceSettings(cfg *Config, input *ConfigRawInput) error {
	cfg.Token = strings.TrimSpace(input.Token)
	if cfg.Token == "" {
		cfg.Token = os.Getenv(TokenEnvVar)
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(input.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if !strings.HasPrefix(cfg.APIURL, "http://") && !strings.HasPrefix(cfg.APIURL, "https://") {
		return fmt.Errorf("api-url must start with http:// or https:// (received %q)", input.APIURL)
	}

	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		timeout, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout '%s': %w", input.Timeout, err)
		}
		if timeout <= 0 {
			return fmt.Errorf("timeout must be greater than 0 (received %s)", input.Timeout)
		}
		cfg.Timeout = timeout
	}

	if input.Retries < 0 || input.Retries > MaxRetries {
		return fmt.Errorf("retries must be between 0 and %d (received %d)", MaxRetries, input.Retries)
	}
	cfg.Retries = input.Retries

	if input.RateLimit <= 0 {
		return fmt.Errorf("rate-limit must be greater than 0 (received %.2f)", input.RateLimit)
	}
	cfg.RateLimit = input.RateLimit
	return nil
}

// weightsByName pairs each raw weight with the analyzer it configures.
func weightsByName(w WeightsRawInput) map[string]*float64 {
	return map[string]*float64{
		schema.DocumentationName: w.Documentation,
		schema.TestsName:         w.Tests,
		schema.CICDName:          w.CICD,
		schema.DependenciesName:  w.Dependencies,
		schema.BusFactorName:     w.BusFactor,
	}
}

// ProcessWeightsRawInput converts WeightsRawInput into the final weights map.
// Omitted analyzers keep their default weight. If validateSum is true and any
// weight was customized, the final weights must sum to 1.0.
func ProcessWeightsRawInput(weights WeightsRawInput, validateSum bool) (custom map[string]float64, final map[string]float64, err error) {
	custom = make(map[string]float64)
	for name, raw := range weightsByName(weights) {
		if raw == nil {
			continue
		}
		if *raw < 0.0 || *raw > 1.0 {
			return nil, nil, fmt.Errorf("weight for %s must be between 0.0 and 1.0 (received %.3f)", name, *raw)
		}
		custom[name] = *raw
	}

	final = maps.Clone(schema.DefaultWeights)
	maps.Copy(final, custom)

	if validateSum && len(custom) > 0 {
		sum := 0.0
		for _, name := range schema.AnalyzerOrder {
			sum += final[name]
		}
		if sum < 1.0-weightTolerance || sum > 1.0+weightTolerance {
			return nil, nil, fmt.Errorf("analyzer weights must sum to 1.0, got %.3f", sum)
		}
	}
	return custom, final, nil
}

// processCustomWeights converts the raw input into cfg.CustomWeights and cfg.Weights.
func processCustomWeights(cfg *Config, input *ConfigRawInput) error {
	custom, final, err := ProcessWeightsRawInput(input.Weights, true)
	if err != nil {
		return err
	}
	cfg.CustomWeights = custom
	cfg.Weights = final
	return nil
}

// processThresholds converts the raw threshold input into the final cfg.Thresholds map.
// The overall gate defaults to DefaultOverallGate; analyzers are only gated when set.
// Command-line --thresholds-override flag takes precedence over config file settings.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	thresholds := map[string]float64{OverallTarget: DefaultOverallGate}

	raw := input.Thresholds
	if raw.Overall != nil {
		thresholds[OverallTarget] = *raw.Overall
	}
	for name, value := range map[string]*float64{
		schema.DocumentationName: raw.Documentation,
		schema.TestsName:         raw.Tests,
		schema.CICDName:          raw.CICD,
		schema.DependenciesName:  raw.Dependencies,
		schema.BusFactorName:     raw.BusFactor,
	} {
		if value != nil {
			thresholds[name] = *value
		}
	}

	if input.ThresholdsStr != "" {
		parsed, err := ParseThresholdsString(input.ThresholdsStr)
		if err != nil {
			return fmt.Errorf("invalid --thresholds-override format: %w", err)
		}
		maps.Copy(thresholds, parsed)
	}

	for target, threshold := range thresholds {
		if threshold < 0.0 || threshold > 100.0 {
			return fmt.Errorf("threshold for %s must be between 0.0 and 100.0 (received %.2f)", target, threshold)
		}
	}

	cfg.Thresholds = thresholds
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// resolveTarget turns the positional repository argument into cfg.Target.
func resolveTarget(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	target, err := ResolveRepoTarget(ctx, client, input.RepoArg, input.Source)
	if err != nil {
		return err
	}
	cfg.Target = target
	return nil
}

// ResolveRepoTarget turns a repository argument into a RepoTarget.
// Without an explicit source, an existing directory is treated as a local
// clone and anything else as a GitHub repository.
func ResolveRepoTarget(ctx context.Context, client GitClient, arg string, sourceStr string) (RepoTarget, error) {
	arg = strings.TrimSpace(arg)
	source := schema.SourceKind(strings.ToLower(strings.TrimSpace(sourceStr)))

	if source == "" {
		source = schema.GitHubSource
		if arg == "" {
			source = schema.LocalSource
		} else if info, err := os.Stat(arg); err == nil && info.IsDir() {
			source = schema.LocalSource
		}
	}
	if _, ok := schema.ValidSourceKinds[source]; !ok {
		return RepoTarget{}, fmt.Errorf("invalid source '%s'. must be github, local", sourceStr)
	}

	if source == schema.GitHubSource {
		owner, name, err := ParseRepoInput(arg)
		if err != nil {
			return RepoTarget{}, err
		}
		return RepoTarget{Source: schema.GitHubSource, Owner: owner, Name: name}, nil
	}

	if arg == "" {
		arg = "."
	}
	absPath, err := filepath.Abs(arg)
	if err != nil {
		return RepoTarget{}, err
	}
	gitRoot, err := client.GetRepoRoot(ctx, filepath.Clean(absPath))
	if err != nil {
		return RepoTarget{}, err
	}
	return NewLocalTarget(gitRoot), nil
}

// ParseThresholdsString parses a string like "overall:70,tests:50,bus_factor:40"
// into a map of threshold target to minimum score.
func ParseThresholdsString(s string) (map[string]float64, error) {
	thresholds := make(map[string]float64)

	if s == "" {
		return thresholds, nil
	}

	parts := strings.SplitSeq(s, ",")
	for part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		keyValue := strings.Split(part, ":")
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("invalid threshold format '%s', expected 'target:value'", part)
		}

		targetStr := strings.TrimSpace(keyValue[0])
		valueStr := strings.TrimSpace(keyValue[1])

		target := OverallTarget
		if !strings.EqualFold(targetStr, OverallTarget) {
			name, ok := schema.AnalyzerNameForKey(targetStr)
			if !ok {
				return nil, fmt.Errorf("invalid target '%s', must be overall, documentation, tests, cicd, dependencies, or bus_factor", targetStr)
			}
			target = name
		}

		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold value '%s' for %s: %w", valueStr, target, err)
		}

		thresholds[target] = value
	}

	return thresholds, nil
}
