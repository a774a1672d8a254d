package prompts

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

func RegisterDaily(s *mcp.Server) {
	s.AddPrompt(&mcp.Prompt{
		Name:        "daily",
		Description: "Produce the end-of-day clinical examination report",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "date",
				Description: "Report date YYYY-MM-DD (default: today)",
				Required:    false,
			},
		},
	}, func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {

		log.Info().Str("prompt", "daily").Interface("args", req.Params.Arguments).Msg("Prompt called")

		date := time.Now().Format("2006-01-02")
		if dateArg, ok := req.Params.Arguments["date"]; ok && dateArg != "" {
			date = dateArg
		}

		promptMsg := fmt.Sprintf(`Produce the daily examination report for %s.

Please use the chart-tally tools and provide:

1. **Per-equipment counts**: call get_daily_summary and list each equipment's
   deduplicated patient count for %s.

2. **Composite metrics**: report every composite (patients appearing in both
   of two equipment's output the same day) and every union category, with the
   cross-source overlap where available.

3. **Anomalies**: call out equipment with zero patients or scan warnings, and
   note whether a path was unreachable or a dated folder had not been
   archived yet.

4. **Totals**: overall examinations for the day.

Format the response as a short, structured report the clinic staff can paste
into the daily template. Use scan_equipment to drill into any surprising
number.`, date, date)

		return &mcp.GetPromptResult{
			Description: fmt.Sprintf("Daily examination report for %s", date),
			Messages: []*mcp.PromptMessage{
				{
					Role: "user",
					Content: &mcp.TextContent{
						Text: promptMsg,
					},
				},
			},
		}, nil
	})
}
