package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/chart-tally/internal/config"
)

func RegisterGetEquipmentList(s *mcp.Server, cfg *config.Config) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_equipment_list",
		Description: "List the configured equipment ids, names, and scan paths",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args map[string]interface{}) (*mcp.CallToolResult, interface{}, error) {
		log.Info().Str("tool", "get_equipment_list").Msg("Tool called")

		list := make([]map[string]interface{}, 0, len(cfg.Equipment))
		for _, eq := range cfg.Equipment {
			list = append(list, map[string]interface{}{
				"id":   eq.ID,
				"name": eq.Name,
				"path": eq.Path,
				"scan": string(eq.Scan),
			})
		}

		response := map[string]interface{}{"equipment": list}

		log.Trace().Str("tool", "get_equipment_list").Interface("response", response).Msg("Tool response")

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("%d equipment configured", len(list))},
			},
		}, response, nil
	})
}
