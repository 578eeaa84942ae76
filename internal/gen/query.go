package gen

import (
	"fmt"
	"math/rand/v2"

	"github.com/wojtekmal/foldgen/internal/geom"
	"github.com/wojtekmal/foldgen/internal/logging"
	"github.com/wojtekmal/foldgen/internal/safety"
)

// QuerySampler draws well-posed query points against a finished sheet
// history. The sheets slice is the builder's history (index 0 unused)
// and is never modified.
type QuerySampler struct {
	// Trace, when non-nil, receives one record per rejected candidate.
	Trace *logging.TraceLogger

	rng     *rand.Rand
	params  Params
	checker safety.Checker
	sheets  []geom.Geometry
}

// NewQuerySampler creates a sampler over the given sheet history.
func NewQuerySampler(rng *rand.Rand, params Params, sheets []geom.Geometry) *QuerySampler {
	return &QuerySampler{
		rng:     rng,
		params:  params,
		checker: safety.NewChecker(),
		sheets:  sheets,
	}
}

func (s *QuerySampler) coord() float64 {
	return s.params.CoordMin + s.rng.Float64()*(s.params.CoordMax-s.params.CoordMin)
}

// Next draws one accepted query: a uniformly random sheet, then a point
// that is either fully random or a reused point of that sheet, chosen
// uniformly (random when the sheet has no points). Candidates failing the
// safety check are retried up to the budget.
func (s *QuerySampler) Next() (Query, error) {
	n := len(s.sheets) - 1

	for try := 0; try < s.params.MaxTries; try++ {
		k := 1 + s.rng.IntN(n)
		g := s.sheets[k]

		var p geom.Point
		if s.rng.IntN(2) == 0 || len(g.Points) == 0 {
			p = geom.Point{X: s.coord(), Y: s.coord()}
		} else {
			p = g.Points[s.rng.IntN(len(g.Points))]
		}

		if s.checker.SafePoint(p, g) {
			return Query{Sheet: k, P: p}, nil
		}
		s.Trace.Log(map[string]any{
			"kind": "query", "reason": "unsafe", "sheet": k, "try": try,
		})
	}

	return Query{}, fmt.Errorf("query: %w", ErrRetriesExhausted)
}
