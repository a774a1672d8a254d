package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yourusername/chart-tally/internal/config"
	"github.com/yourusername/chart-tally/internal/datepath"
	"github.com/yourusername/chart-tally/internal/progress"
	"github.com/yourusername/chart-tally/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor equipment directories live and report new chart numbers",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyLogging(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Int("equipment", len(cfg.Equipment)).Msg("Starting watch mode, Ctrl-C to stop")

	w := watch.New(cfg, progress.Zerolog{Logger: log.Logger})
	err = w.Run(ctx, datepath.Today())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
