package cmd

import (
	"github.com/huangsam/repohealth/core"
	"github.com/huangsam/repohealth/internal/contract"
	"github.com/spf13/cobra"
)

// busFactorCmd reports contributor concentration for a repository.
var busFactorCmd = &cobra.Command{
	Use:   "busfactor [repo]",
	Short: "Show the bus factor and top contributors of a repository.",
	Long: `Compute the bus factor: the minimum number of contributors whose
commits add up to at least half of all commits.

A bus factor of 1 means a single person wrote most of the code.

Examples:
  # Bus factor of a GitHub repository
  repohealth busfactor golang/go

  # Export the top contributors as CSV
  repohealth busfactor --output csv --output-file contributors.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBusFactor(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compute bus factor", err)
		}
	},
}
