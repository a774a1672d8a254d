package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yourusername/chart-tally/internal/config"
	"github.com/yourusername/chart-tally/internal/datepath"
	"github.com/yourusername/chart-tally/internal/progress"
	"github.com/yourusername/chart-tally/internal/report"
	"github.com/yourusername/chart-tally/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan all equipment directories and print the daily tally",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().String("date", "", "Report date (YYYY-MM-DD, default today)")
	scanCmd.Flags().String("json", "", "Write the full summary (counts and identifier sets) to this JSON file")
	scanCmd.Flags().Bool("no-cache", false, "Skip the known-old filename cache and probe every candidate")
}

func runScan(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyLogging(cmd, cfg)

	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Disabled = true
	}

	target := datepath.Today()
	if dateStr, _ := cmd.Flags().GetString("date"); dateStr != "" {
		target, err = datepath.Parse(dateStr)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("date", target.String()).
		Int("equipment", len(cfg.Equipment)).
		Int("categories", len(cfg.Categories)).
		Msg("Starting daily scan")

	s := scanner.New(cfg, progress.Zerolog{Logger: log.Logger})
	res := s.ScanAll(ctx, target)

	log.Info().
		Int("entries", res.EntriesScanned).
		Int("probes", res.ProbesIssued).
		Int("errors", len(res.Errors)).
		Dur("duration", res.Duration).
		Msg("Scan completed")

	summary := report.Build(cfg, res)
	summary.Render(os.Stdout)

	if jsonPath, _ := cmd.Flags().GetString("json"); jsonPath != "" {
		if err := summary.WriteJSON(jsonPath); err != nil {
			return err
		}
		log.Info().Str("path", jsonPath).Msg("Summary written")
	}
	return nil
}
