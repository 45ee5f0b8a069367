package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/impulse/internal/cli"
	"github.com/aretw0/impulse/pkg/runner"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts impulse as an MCP Server so AI agents can run funnel simulations as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		sm := runner.NewSignalManager()
		defer sm.Stop()

		return cli.ServeMCP(sm.Context(), cli.MCPOptions{Config: cfg, Transport: transport, Port: port})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", cli.TransportStdio, "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
