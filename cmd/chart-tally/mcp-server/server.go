// Package mcpserver exposes the daily tally engine over the Model Context
// Protocol so an AI assistant can scan equipment and query counts directly.
package mcpserver

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yourusername/chart-tally/cmd/chart-tally/mcp-server/prompts"
	"github.com/yourusername/chart-tally/cmd/chart-tally/mcp-server/tools"
	"github.com/yourusername/chart-tally/internal/config"
	"github.com/yourusername/chart-tally/internal/datepath"
	"github.com/yourusername/chart-tally/internal/filecache"
	"github.com/yourusername/chart-tally/internal/metrics"
	"github.com/yourusername/chart-tally/internal/progress"
	"github.com/yourusername/chart-tally/internal/report"
	"github.com/yourusername/chart-tally/internal/scanner"
)

// Version is stamped by the CLI entry point.
var Version = "dev"

// runner adapts the scanner and report packages to the tools.Runner
// interface.
type runner struct {
	cfg *config.Config
}

func (r *runner) newScanner() *scanner.Scanner {
	return scanner.New(r.cfg, progress.Zerolog{Logger: log.Logger})
}

func (r *runner) ScanEquipment(ctx context.Context, equipmentID string, target datepath.Date) (metrics.ChartSet, error) {
	eq := r.cfg.EquipmentByID(equipmentID)
	if eq == nil {
		return nil, fmt.Errorf("unknown equipment %q", equipmentID)
	}
	return r.newScanner().ScanEquipment(ctx, eq, target), nil
}

func (r *runner) Summary(ctx context.Context, target datepath.Date) *report.Summary {
	res := r.newScanner().ScanAll(ctx, target)
	return report.Build(r.cfg, res)
}

// RunMCPServer starts the MCP server on stdio transport.
func RunMCPServer(cmd *cobra.Command, args []string) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	// stdout carries the protocol; logging stays on stderr.
	level := cfg.Logging.Level
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}
	InitLogging(level, cfg.Logging.Format)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "chart-tally",
		Version: Version,
	}, nil)

	cache := filecache.NewStore(cfg.Cache.Dir)
	tools.RegisterAll(server, &runner{cfg: cfg}, cfg, cache, Version)
	prompts.RegisterAll(server)

	log.Info().Str("version", Version).Msg("Starting MCP server on stdio")
	if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
		log.Error().Err(err).Msg("MCP server stopped")
		os.Exit(1)
	}
}
