package gen

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/wojtekmal/foldgen/internal/logging"
)

// Generator produces one complete test case per Generate call. It owns an
// explicit pseudorandom source: a given seed replays the exact same test
// case, and independent generators can run in parallel on independently
// seeded sources.
type Generator struct {
	// Log receives operational messages. Defaults to a discard logger.
	Log *slog.Logger

	// Trace, when non-nil, records every rejected candidate as JSONL.
	Trace *logging.TraceLogger

	rng    *rand.Rand
	params Params
}

// New creates a Generator drawing from rng.
func New(rng *rand.Rand, params Params) *Generator {
	return &Generator{
		Log:    slog.New(slog.DiscardHandler),
		rng:    rng,
		params: params,
	}
}

// Generate writes one test case to w: the "N Q" header, N operation
// lines, then Q query lines, each written as soon as it is accepted.
// On error the destination may hold a partial test case; the caller is
// responsible for discarding it. There is no rollback.
func (g *Generator) Generate(w io.Writer) error {
	if err := g.params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}

	if _, err := fmt.Fprintf(w, "%d %d\n", g.params.Sheets, g.params.Queries); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	b := NewBuilder(g.rng, g.params)
	b.Trace = g.Trace
	for i := 1; i <= g.params.Sheets; i++ {
		op, err := b.Next()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, op); err != nil {
			return fmt.Errorf("write operation %d: %w", i, err)
		}
		g.Log.Debug("operation accepted", "index", i, "op", string(op.Kind))
	}

	qs := NewQuerySampler(g.rng, g.params, b.History())
	qs.Trace = g.Trace
	for j := 0; j < g.params.Queries; j++ {
		q, err := qs.Next()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, q); err != nil {
			return fmt.Errorf("write query %d: %w", j, err)
		}
	}

	return nil
}

// GenerateFile writes one test case to path. A failed generation leaves
// whatever was written so far in place; callers retrying the same slot
// should remove or overwrite the file.
func (g *Generator) GenerateFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := g.Generate(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
