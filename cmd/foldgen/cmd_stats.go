package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wojtekmal/foldgen/internal/manifest"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-group case counts from the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			store, err := manifest.Open(cfg.Output.Dir)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.GroupStats(cmd.Context())
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(stats)
			}

			if len(stats) == 0 {
				fmt.Fprintln(out, "No cases recorded.")
				return nil
			}
			for _, gs := range stats {
				fmt.Fprintf(out, "%-12s %d\n", gs.Group, gs.Count)
			}
			return nil
		},
	}
}
