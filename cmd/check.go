package cmd

import (
	"github.com/huangsam/repohealth/core"
	"github.com/huangsam/repohealth/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check [repo]",
	Short: "Enforce health thresholds for CI/CD pipelines (fails build on violations)",
	Long: `Score a repository and enforce minimum health scores.

Designed specifically for CI/CD integration - exits with a non-zero code when the
overall score or any gated analyzer falls below its threshold.

Default thresholds: overall 60.0; analyzers are only gated when configured.

Thresholds come from the thresholds section of .repohealth.yaml and can be
overridden with --thresholds-override.

Examples:
  # Gate the current clone on the default overall threshold
  repohealth check

  # Require strong tests and a healthy bus factor
  repohealth check golang/go --thresholds-override "overall:70,tests:60,bus_factor:40"`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHealthCheck(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Health check failed", err)
		}
	},
}
