package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

func RegisterClearScanCache(s *mcp.Server, cache Cache) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "clear_scan_cache",
		Description: "Drop every known-old filename cache so the next scan probes all files from scratch",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args map[string]interface{}) (*mcp.CallToolResult, interface{}, error) {
		log.Info().Str("tool", "clear_scan_cache").Msg("Tool called")

		dropped := len(cache.Infos())
		if err := cache.ClearAll(); err != nil {
			log.Error().Err(err).Str("tool", "clear_scan_cache").Msg("Tool failed")
			return nil, nil, fmt.Errorf("failed to clear cache: %w", err)
		}

		result := map[string]interface{}{
			"status":  "cleared",
			"dropped": dropped,
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Cleared %d cache files", dropped)},
			},
		}, result, nil
	})
}
