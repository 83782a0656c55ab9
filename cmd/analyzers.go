package cmd

import (
	"fmt"

	"github.com/huangsam/repohealth/core"
	"github.com/huangsam/repohealth/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settingsSetup validates the configuration without resolving a repository.
func settingsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return contract.ProcessSettings(cfg, input)
}

// settingsSetupWrapper wraps settingsSetup to provide PreRunE.
func settingsSetupWrapper(_ *cobra.Command, _ []string) error {
	return settingsSetup()
}

// analyzersCmd displays the analyzer registry.
var analyzersCmd = &cobra.Command{
	Use:   "analyzers",
	Short: "Display the analyzers, their weights and scoring criteria",
	Long: `Show every registered analyzer with its active weight and scoring ladder.

Custom weights from .repohealth.yaml are applied, so this is also a quick way
to validate a weights section. No repository data is fetched.

Examples:
  # Show default weights
  repohealth analyzers

  # View with custom weights from config file
  repohealth analyzers --config .repohealth.yaml`,
	Args:    cobra.NoArgs,
	PreRunE: settingsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyzers(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot display analyzers", err)
		}
	},
}
