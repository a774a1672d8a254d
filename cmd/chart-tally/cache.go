package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yourusername/chart-tally/internal/config"
	"github.com/yourusername/chart-tally/internal/filecache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the known-old filename caches",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "List cache files with entry counts and last-update times",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cacheStore(cmd)
		if err != nil {
			return err
		}
		infos := store.Infos()
		if len(infos) == 0 {
			fmt.Println("No cache files.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DIRECTORY\tENTRIES\tLAST UPDATED\tFILE")
		for _, info := range infos {
			updated := "-"
			if !info.LastUpdated.IsZero() {
				updated = info.LastUpdated.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", info.Directory, info.Count, updated, info.File)
		}
		return w.Flush()
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [directory]",
	Short: "Drop the cache for one scanned directory, or all caches",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cacheStore(cmd)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			if err := store.Clear(args[0]); err != nil {
				return err
			}
			log.Info().Str("directory", args[0]).Msg("Cache cleared")
			return nil
		}
		if err := store.ClearAll(); err != nil {
			return err
		}
		log.Info().Msg("All caches cleared")
		return nil
	},
}

func cacheStore(cmd *cobra.Command) (*filecache.Store, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return filecache.NewStore(cfg.Cache.Dir), nil
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
