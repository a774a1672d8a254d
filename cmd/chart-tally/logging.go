package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yourusername/chart-tally/internal/config"
)

func initLogging(level, format, file string, maxSizeMB, maxBackups int) {
	var out io.Writer = os.Stderr
	if file != "" {
		if maxSizeMB <= 0 {
			maxSizeMB = 10
		}
		if maxBackups <= 0 {
			maxBackups = 5
		}
		// Daily operation on a shared workstation: rotate instead of growing
		// one file forever.
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		})
	}

	if format == "json" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		console := zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
	}

	setLogLevel(level)
}

func setLogLevel(levelStr string) {
	switch strings.ToLower(levelStr) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	default:
		log.Warn().Str("level", levelStr).Msg("Unknown log level, using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// applyLogging reconfigures logging from the loaded config, letting the
// --log-level flag win over the file.
func applyLogging(cmd *cobra.Command, cfg *config.Config) {
	level := cfg.Logging.Level
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}
	initLogging(level, cfg.Logging.Format, cfg.Logging.File, cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups)
}
