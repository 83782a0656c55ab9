package cmd

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/huangsam/repohealth/core"
	"github.com/huangsam/repohealth/internal/contract"
	"github.com/spf13/cobra"
)

// errNoOutputFileInWatch explains why watch writes to stdout only.
var errNoOutputFileInWatch = errors.New("watch prints every report to stdout")

// watchCmd re-scores a local clone whenever its branches move.
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-score a local clone whenever HEAD or a branch changes",
	Long: `Score a local clone, then keep watching its git metadata and print a new
report after every commit, checkout, merge or pull. Runs until interrupted.

Examples:
  # Watch the current clone
  repohealth watch

  # Watch another clone with a compact report
  repohealth watch ~/src/project --output markdown`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		if cfg.OutputFile != "" {
			contract.LogWarn("Ignoring --output-file", errNoOutputFileInWatch)
			cfg.OutputFile = ""
		}
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := core.ExecuteWatch(ctx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot watch repository", err)
		}
	},
}
