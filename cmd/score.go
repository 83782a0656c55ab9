package cmd

import (
	"github.com/huangsam/repohealth/core"
	"github.com/huangsam/repohealth/internal/contract"
	"github.com/spf13/cobra"
)

// scoreCmd scores a repository and renders the health report.
var scoreCmd = &cobra.Command{
	Use:   "score [repo]",
	Short: "Score a repository and print its health report.",
	Long: `Fetch a repository snapshot and grade it with every analyzer.

The repository can be a GitHub "owner/name", a GitHub URL, or a local clone.
Without an argument the current directory is scored.

Each analyzer awards points on a fixed ladder:
- Documentation: README, README depth, docs directory, LICENSE, CONTRIBUTING
- Tests: test directories, test file counts, CI, coverage badge
- CI/CD: GitHub Actions, other CI systems, pipeline definitions
- Dependencies: manifests, dependency estimate, active repository
- Bus Factor: how many contributors account for half of all commits

The overall score is the weighted sum of the analyzer scores.

Examples:
  # Score a GitHub repository
  repohealth score golang/go

  # Score the current clone and write a Markdown report
  repohealth score --output markdown --output-file HEALTH.md

  # Export scores for a dashboard
  repohealth score kubernetes/kubernetes --output parquet --output-file health.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHealthScore(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot score repository", err)
		}
	},
}
