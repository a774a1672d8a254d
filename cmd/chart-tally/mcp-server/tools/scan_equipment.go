package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

func RegisterScanEquipment(s *mcp.Server, runner Runner) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "scan_equipment",
		Description: "Scan one equipment's output directory and return its deduplicated chart numbers for a date",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"equipment_id": map[string]interface{}{
					"type":        "string",
					"description": "Equipment id from the configuration (e.g. HFA, OCT, TOPO)",
				},
				"date": map[string]interface{}{
					"type":        "string",
					"description": "Report date YYYY-MM-DD (default: today)",
				},
			},
			"required": []string{"equipment_id"},
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args map[string]interface{}) (*mcp.CallToolResult, interface{}, error) {
		log.Info().Str("tool", "scan_equipment").Interface("params", args).Msg("Tool called")

		equipmentID, _ := args["equipment_id"].(string)
		target, err := parseDate(args)
		if err != nil {
			return nil, nil, err
		}

		set, err := runner.ScanEquipment(ctx, equipmentID, target)
		if err != nil {
			log.Error().Err(err).Str("tool", "scan_equipment").Msg("Tool failed")
			return nil, nil, err
		}

		result := map[string]interface{}{
			"equipment_id":  equipmentID,
			"date":          target.String(),
			"count":         len(set),
			"chart_numbers": set.Sorted(),
		}

		log.Trace().Str("tool", "scan_equipment").Interface("response", result).Msg("Tool response")

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("%s: %d patients on %s", equipmentID, len(set), target)},
			},
		}, result, nil
	})
}
