package prompts

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// RegisterAll registers all MCP prompts
func RegisterAll(s *mcp.Server) {
	RegisterDaily(s)

	log.Info().Int("prompts", 1).Msg("MCP prompts registered")
}
