package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "chart-tally",
	Short: "Daily clinical-equipment tally scanner",
	Long: `chart-tally scans the output directories of diagnostic equipment, extracts
the patient chart number encoded in each file or folder name, and tallies the
deduplicated daily counts per equipment, including composite metrics that
correlate identifier sets across equipment.

Counts and the full identifier sets can be exported as JSON for the daily
report writer, served over an MCP stdio server, or followed live in watch
mode.`,
	Version: version,
}

func main() {
	// Set up basic logging for startup
	initLogging("info", "console", "", 0, 0)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(mcpServerCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "Log level (debug, info, warn, error, trace)")
}
