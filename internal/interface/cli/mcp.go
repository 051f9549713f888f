package cli

import (
	"fmt"

	"github.com/neilberkman/hireplan/cmd/hireplan/mcp"
	"github.com/neilberkman/hireplan/internal/core/logging"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server exposing the hiring tools",
	Long: `Start an MCP (Model Context Protocol) server over stdio that exposes
search_job_market, draft_job_description, create_hiring_checklist,
get_session_detail and get_usage_stats.

Configure in your MCP client's config file:
  {
    "mcpServers": {
      "hireplan": {
        "command": "hireplan",
        "args": ["serve-mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	// stdout carries the protocol; logs go to stderr.
	a, err := openAppWithLogger(logging.Setup(cmd.ErrOrStderr(), logging.FormatJSON, level))
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	if err := mcp.StartServer(mcp.Deps{
		Sessions:  a.sessions,
		Analytics: a.analytics,
		Generator: a.generator(),
		Logger:    a.logger,
		Version:   rootCmd.Version,
	}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
