// Package gen implements the stochastic construction engine: it builds a
// chain of folded sheet geometries, samples query points against them, and
// emits both in the judge's text format. Every accepted point and fold
// line has passed the safety checker against the geometry it was validated
// on, so generated inputs are never numerically ambiguous.
package gen

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/wojtekmal/foldgen/internal/geom"
	"github.com/wojtekmal/foldgen/internal/logging"
	"github.com/wojtekmal/foldgen/internal/safety"
)

// ErrRetriesExhausted is returned when a sheet or query could not be
// produced within the retry budget. The whole test case is invalid at
// that point; the caller must discard any partial output.
var ErrRetriesExhausted = errors.New("retry budget exhausted")

// Builder accumulates the ordered sheet history and produces one accepted
// sheet-defining operation per Next call. Sheet geometries are immutable
// once appended: folding sheet k derives a new sheet from a copy of k's
// features, it never touches k itself.
type Builder struct {
	// Trace, when non-nil, receives one record per rejected candidate.
	Trace *logging.TraceLogger

	rng     *rand.Rand
	params  Params
	checker safety.Checker
	sheets  []geom.Geometry // sheet k at index k; index 0 unused
}

// NewBuilder creates a Builder drawing from rng.
func NewBuilder(rng *rand.Rand, params Params) *Builder {
	return &Builder{
		rng:     rng,
		params:  params,
		checker: safety.NewChecker(),
		sheets:  make([]geom.Geometry, 1, params.Sheets+1),
	}
}

// Sheets returns how many sheets have been built so far.
func (b *Builder) Sheets() int {
	return len(b.sheets) - 1
}

// Geometry returns the feature set of sheet k (1-based).
func (b *Builder) Geometry(k int) geom.Geometry {
	return b.sheets[k]
}

// History exposes the underlying sheet slice (index 0 unused) for query
// sampling. Callers must treat it as read-only.
func (b *Builder) History() []geom.Geometry {
	return b.sheets
}

func (b *Builder) coord() float64 {
	return b.params.CoordMin + b.rng.Float64()*(b.params.CoordMax-b.params.CoordMin)
}

func (b *Builder) size() float64 {
	return b.params.SizeMin + b.rng.Float64()*(b.params.SizeMax-b.params.SizeMin)
}

func (b *Builder) randomPoint() geom.Point {
	return geom.Point{X: b.coord(), Y: b.coord()}
}

// Next builds the next sheet and returns its operation. Sheet 1 is
// restricted to rectangle or circle; later sheets choose uniformly among
// rectangle, circle, and fold. Degenerate or unsafe fold candidates are
// silently retried up to the budget.
func (b *Builder) Next() (Op, error) {
	i := len(b.sheets) // index of the sheet being built

	for try := 0; try < b.params.MaxTries; try++ {
		var kind int
		if i == 1 {
			kind = b.rng.IntN(2)
		} else {
			kind = b.rng.IntN(3)
		}

		switch kind {
		case 0: // rectangle, independent of all prior sheets
			x1, y1 := b.coord(), b.coord()
			x2 := x1 + b.size()
			y2 := y1 + b.size()
			b.sheets = append(b.sheets, geom.Rect(x1, y1, x2, y2))
			return Op{Kind: OpRect, Args: []float64{x1, y1, x2, y2}}, nil

		case 1: // circle, also independent
			x, y := b.coord(), b.coord()
			r := b.size()
			b.sheets = append(b.sheets, geom.Disc(x, y, r))
			return Op{Kind: OpCircle, Args: []float64{x, y, r}}, nil

		default: // fold a prior sheet
			k := 1 + b.rng.IntN(i-1)
			base := b.sheets[k]
			l := b.foldCandidate(base)

			if l.Degenerate() {
				b.Trace.Log(map[string]any{
					"kind": "fold", "reason": "degenerate", "sheet": k, "try": try,
				})
				continue
			}
			if !b.checker.SafeFold(l, base) {
				b.Trace.Log(map[string]any{
					"kind": "fold", "reason": "unsafe", "sheet": k, "try": try,
				})
				continue
			}

			b.sheets = append(b.sheets, base.Fold(l))
			return Op{
				Kind:  OpFold,
				Sheet: k,
				Args:  []float64{l.P1.X, l.P1.Y, l.P2.X, l.P2.Y},
			}, nil
		}
	}

	return Op{}, fmt.Errorf("sheet %d: %w", i, ErrRetriesExhausted)
}

// foldCandidate draws one candidate fold line for base using one of three
// strategies chosen uniformly: a fully random line, a line through a
// random existing point at a random angle, or a tangent to a random
// existing circle. The anchored strategies fall back to a fully random
// line when base has no points (or no circles).
func (b *Builder) foldCandidate(base geom.Geometry) geom.Line {
	strategy := b.rng.IntN(3)

	switch {
	case strategy == 0 || len(base.Points) == 0:
		return geom.Line{P1: b.randomPoint(), P2: b.randomPoint()}

	case strategy == 1:
		anchor := base.Points[b.rng.IntN(len(base.Points))]
		angle := b.rng.Float64() * 2 * math.Pi
		return geom.Line{
			P1: anchor,
			P2: geom.Point{X: anchor.X + math.Cos(angle), Y: anchor.Y + math.Sin(angle)},
		}

	default:
		if len(base.Circles) == 0 {
			return geom.Line{P1: b.randomPoint(), P2: b.randomPoint()}
		}
		c := base.Circles[b.rng.IntN(len(base.Circles))]
		angle := b.rng.Float64() * 2 * math.Pi
		sin, cos := math.Sincos(angle)
		touch := geom.Point{X: c.Center.X + c.R*cos, Y: c.Center.Y + c.R*sin}
		// Tangent direction: the radius direction rotated by 90 degrees.
		return geom.Line{
			P1: touch,
			P2: geom.Point{X: touch.X - sin, Y: touch.Y + cos},
		}
	}
}
