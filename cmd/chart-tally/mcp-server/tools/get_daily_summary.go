package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

func RegisterGetDailySummary(s *mcp.Server, runner Runner) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_daily_summary",
		Description: "Scan every equipment and category and return all counts, composite metrics, and identifier sets for a date",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"date": map[string]interface{}{
					"type":        "string",
					"description": "Report date YYYY-MM-DD (default: today)",
				},
			},
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args map[string]interface{}) (*mcp.CallToolResult, interface{}, error) {
		log.Info().Str("tool", "get_daily_summary").Interface("params", args).Msg("Tool called")

		target, err := parseDate(args)
		if err != nil {
			return nil, nil, err
		}

		summary := runner.Summary(ctx, target)

		total := 0
		for _, n := range summary.Counts {
			total += n
		}

		log.Trace().Str("tool", "get_daily_summary").Interface("response", summary).Msg("Tool response")

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("%s: %d exams across %d equipment", summary.Date, total, len(summary.Counts))},
			},
		}, summary, nil
	})
}
