package main

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/yourusername/chart-tally/cmd/chart-tally/mcp-server"
)

var mcpServerCmd = &cobra.Command{
	Use:   "mcp-server",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server that exposes equipment scanning and
daily tally data to AI assistants via stdio transport.`,
	Run: mcpserver.RunMCPServer,
}

func init() {
	mcpserver.Version = version
}
