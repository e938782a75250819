// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs a stdio MCP server over a fresh session.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/pulse/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server holds one session for as long as it runs and communicates via
stdin/stdout. Add it to an MCP client config:

  {
    "mcpServers": {
      "pulse": {
        "command": "pulse",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_bmi          Record a BMI entry
  add_period       Record a period
  add_appointment  Schedule an appointment
  delete_record    Delete an entry by its one-based index
  list_records     List entries, optionally by kind
  get_latest       Most recent bmi or period, or next appointment
  predict_period   Predict the next period start date

AVAILABLE RESOURCES:

  pulse://summary       Every record plus the next-period prediction
  pulse://appointments  Scheduled appointments, earliest first`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(session, version)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
