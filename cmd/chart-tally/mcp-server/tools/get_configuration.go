package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/chart-tally/internal/config"
)

func RegisterGetConfiguration(s *mcp.Server, cfg *config.Config, version string) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_configuration",
		Description: "Show the current chart-tally configuration (equipment, composites, cache, validation bounds)",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args map[string]interface{}) (*mcp.CallToolResult, interface{}, error) {
		log.Info().Str("tool", "get_configuration").Msg("Tool called")

		composites := make([]map[string]interface{}, 0, len(cfg.Composites))
		for _, comp := range cfg.Composites {
			composites = append(composites, map[string]interface{}{
				"name":      comp.Name,
				"intersect": comp.Intersect,
			})
		}
		categories := make([]string, 0, len(cfg.Categories))
		for _, cat := range cfg.Categories {
			categories = append(categories, cat.Name)
		}

		response := map[string]interface{}{
			"version":          version,
			"equipment_count":  len(cfg.Equipment),
			"composites":       composites,
			"categories":       categories,
			"cache_dir":        cfg.Cache.Dir,
			"cache_disabled":   cfg.Cache.Disabled,
			"chart_number_min": cfg.Validation.ChartNumberMin,
			"chart_number_max": cfg.Validation.ChartNumberMax,
			"scan_workers":     cfg.Scan.Workers,
			"log_level":        cfg.Logging.Level,
			"log_format":       cfg.Logging.Format,
		}

		log.Trace().Str("tool", "get_configuration").Interface("response", response).Msg("Tool response")

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Configuration: %d equipment, %d composites", len(cfg.Equipment), len(cfg.Composites))},
			},
		}, response, nil
	})
}
