package cmd

import (
	"fmt"

	"github.com/huangsam/repohealth/internal/iocache"
	"github.com/huangsam/repohealth/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the repohealth MCP server",
	Long:  `Launch an MCP server that allows AI agents to score repositories via standard tools.`,
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// The repository comes with every tool call, so only settings are validated here.
		// Handlers suppress progress headers to keep stdio clean for the protocol.
		if err := settingsSetupWrapper(cmd, args); err != nil {
			return err
		}
		if err := iocache.InitCaching(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
			return fmt.Errorf("failed to initialize persistence: %w", err)
		}
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager, gitClient)
	},
}
