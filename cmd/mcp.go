package cmd

import (
	"github.com/huangsam/reposcore/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Reposcore MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents score repositories
and read their trends through standard tools.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		analyzer, err := buildAnalyzer()
		if err != nil {
			return err
		}
		return mcp.StartMCPServer(analyzer)
	},
}
