// Package cmd defines the command-line interface for repohealth.
package cmd

import (
	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(busFactorCmd)
	rootCmd.AddCommand(analyzersCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("source", "", "Repository source: github or local (inferred from the argument when empty)")
	rootCmd.PersistentFlags().String("token", "", "GitHub API token (defaults to $"+contract.TokenEnvVar+")")
	rootCmd.PersistentFlags().String("api-url", contract.DefaultAPIURL, "GitHub API base URL")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout.String(), "Timeout for a single API request")
	rootCmd.PersistentFlags().Int("retries", contract.DefaultRetries, "Retry attempts for transient API failures")
	rootCmd.PersistentFlags().Float64("rate-limit", contract.DefaultRateLimit, "Maximum API requests per second")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent analyzer workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for scores")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or json or yaml or csv or markdown or parquet or prometheus")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress output on stderr")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL.String(), "How long cached snapshots stay fresh (0 disables reads and writes)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in progress output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().String("thresholds-override", "", "Score thresholds for CI/CD gating (format: 'overall:70,tests:50,bus_factor:40')")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of cacheMigrateCmd to Viper
	cacheMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(cacheMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache migrate flags", err)
	}
}
