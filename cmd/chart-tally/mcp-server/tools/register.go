package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/chart-tally/internal/config"
)

// RegisterAll registers all MCP tools
func RegisterAll(s *mcp.Server, runner Runner, cfg *config.Config, cache Cache, version string) {
	RegisterScanEquipment(s, runner)
	RegisterGetDailySummary(s, runner)
	RegisterGetEquipmentList(s, cfg)
	RegisterGetConfiguration(s, cfg, version)
	RegisterClearScanCache(s, cache)

	log.Info().Int("tools", 5).Msg("MCP tools registered")
}
