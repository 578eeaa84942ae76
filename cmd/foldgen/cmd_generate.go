package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wojtekmal/foldgen/internal/config"
	"github.com/wojtekmal/foldgen/internal/gen"
	"github.com/wojtekmal/foldgen/internal/logging"
	"github.com/wojtekmal/foldgen/internal/manifest"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [group...]",
		Short: "Generate test files for the configured difficulty groups",
		Long: `Generate test files for the configured difficulty groups.

Each group produces <count> files named <out>/<group>/<index>.in. A test
case that exhausts its retry budget is discarded and its slot is re-rolled
with fresh random draws. With the manifest enabled, completed slots are
recorded and an interrupted run resumes after the last recorded index.

Examples:
  foldgen generate                          # All configured groups
  foldgen generate tiny                     # One group
  foldgen generate tiny --count 10          # Override the file count
  foldgen generate tiny --sheets 5 --queries 20
  foldgen generate --seed 42                # Reproducible corpus`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			log := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
			trace := logging.NewTraceLogger(cfg.Output.Dir, cfg.Logging.Level)
			defer trace.Close()

			seed, _ := cmd.Flags().GetUint64("seed")
			if seed == 0 {
				seed = cfg.Seed
			}
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			log.Info("starting generation", "seed", seed, "out", cfg.Output.Dir)

			groups := cfg.Groups
			if len(args) > 0 {
				groups = nil
				for _, name := range args {
					g, ok := cfg.Group(name)
					if !ok {
						return fmt.Errorf("unknown group %q", name)
					}
					groups = append(groups, g)
				}
			}

			var store *manifest.Store
			if cfg.Output.Manifest {
				store, err = manifest.Open(cfg.Output.Dir)
				if err != nil {
					return err
				}
				defer store.Close()
			}

			countOverride, _ := cmd.Flags().GetInt("count")
			sheetsOverride, _ := cmd.Flags().GetInt("sheets")
			queriesOverride, _ := cmd.Flags().GetInt("queries")
			ctx := cmd.Context()
			for _, grp := range groups {
				count := grp.Count
				if countOverride > 0 {
					count = countOverride
				}
				if sheetsOverride > 0 {
					grp.Sheets = sheetsOverride
				}
				if queriesOverride >= 0 {
					grp.Queries = queriesOverride
				}
				if err := generateGroup(ctx, cfg, grp, count, rng, seed, log, trace, store); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().Uint64("seed", 0, "Seed for the pseudorandom source (0 = config seed, then current time)")
	cmd.Flags().Int("count", 0, "Override the per-group file count")
	cmd.Flags().Int("sheets", 0, "Override the per-case operation count N")
	cmd.Flags().Int("queries", -1, "Override the per-case query count Q")

	return cmd
}

// generateGroup fills every output slot of one group. A slot whose
// generation exhausts its retry budget is deleted and re-rolled; any
// other failure (unwritable destination, manifest error) aborts the run.
func generateGroup(
	ctx context.Context,
	cfg *config.Config,
	grp config.GroupConfig,
	count int,
	rng *rand.Rand,
	seed uint64,
	log *slog.Logger,
	trace *logging.TraceLogger,
	store *manifest.Store,
) error {
	dir := filepath.Join(cfg.Output.Dir, grp.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create group directory: %w", err)
	}

	start := 0
	if store != nil {
		recorded, err := store.Count(ctx, grp.Name)
		if err != nil {
			return err
		}
		if recorded >= count {
			log.Info("group already complete", "group", grp.Name, "count", recorded)
			return nil
		}
		start = recorded
	}

	params := gen.Params{
		Sheets:   grp.Sheets,
		Queries:  grp.Queries,
		MaxTries: cfg.Limits.MaxTries,
		CoordMin: cfg.Ranges.CoordMin,
		CoordMax: cfg.Ranges.CoordMax,
		SizeMin:  cfg.Ranges.SizeMin,
		SizeMax:  cfg.Ranges.SizeMax,
	}

	for idx := start; idx < count; idx++ {
		path := filepath.Join(dir, fmt.Sprintf("%d.in", idx))

		filled := false
		for attempt := 0; attempt < cfg.Limits.MaxFileRetries; attempt++ {
			g := gen.New(rng, params)
			g.Log = log
			g.Trace = trace

			err := g.GenerateFile(path)
			if err == nil {
				filled = true
				break
			}
			if errors.Is(err, gen.ErrRetriesExhausted) {
				// Partial file; discard and re-roll the slot.
				os.Remove(path)
				log.Debug("test case discarded", "group", grp.Name, "index", idx, "attempt", attempt)
				continue
			}
			return err
		}
		if !filled {
			return fmt.Errorf("group %s index %d: no valid test case within %d attempts",
				grp.Name, idx, cfg.Limits.MaxFileRetries)
		}

		if store != nil {
			sha, err := manifest.HashFile(path)
			if err != nil {
				return err
			}
			err = store.Record(ctx, manifest.Case{
				Group:   grp.Name,
				Index:   idx,
				Path:    path,
				Seed:    seed,
				Sheets:  grp.Sheets,
				Queries: grp.Queries,
				SHA256:  sha,
			})
			if err != nil {
				return err
			}
		}

		if (idx+1)%1000 == 0 {
			log.Info("progress", "group", grp.Name, "done", idx+1, "total", count)
		}
	}

	log.Info("group complete", "group", grp.Name, "count", count)
	return nil
}
