package tools

import (
	"context"

	"github.com/yourusername/chart-tally/internal/datepath"
	"github.com/yourusername/chart-tally/internal/filecache"
	"github.com/yourusername/chart-tally/internal/metrics"
	"github.com/yourusername/chart-tally/internal/report"
)

// Runner interface defines the scan operations needed by tools
type Runner interface {
	ScanEquipment(ctx context.Context, equipmentID string, target datepath.Date) (metrics.ChartSet, error)
	Summary(ctx context.Context, target datepath.Date) *report.Summary
}

// Cache interface defines the cache administration needed by tools
type Cache interface {
	ClearAll() error
	Infos() []filecache.Info
}

// parseDate reads an optional "date" argument, defaulting to today.
func parseDate(args map[string]interface{}) (datepath.Date, error) {
	s, ok := args["date"].(string)
	if !ok || s == "" {
		return datepath.Today(), nil
	}
	return datepath.Parse(s)
}
