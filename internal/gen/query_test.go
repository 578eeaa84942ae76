package gen

import (
	"errors"
	"math"
	"testing"

	"github.com/wojtekmal/foldgen/internal/constants"
	"github.com/wojtekmal/foldgen/internal/geom"
)

func buildHistory(t *testing.T, seed uint64, sheets int) *Builder {
	t.Helper()
	b := NewBuilder(newTestRNG(seed), testParams(sheets, 0))
	for i := 1; i <= sheets; i++ {
		if _, err := b.Next(); err != nil {
			t.Fatalf("sheet %d: %v", i, err)
		}
	}
	return b
}

func TestQuerySamplerTargetsValidSheets(t *testing.T) {
	b := buildHistory(t, 3, 8)
	qs := NewQuerySampler(newTestRNG(4), testParams(8, 0), b.History())

	for j := 0; j < 50; j++ {
		q, err := qs.Next()
		if err != nil {
			t.Fatalf("query %d: %v", j, err)
		}
		if q.Sheet < 1 || q.Sheet > 8 {
			t.Fatalf("query %d targets sheet %d, out of range [1,8]", j, q.Sheet)
		}
	}
}

func TestQuerySamplerRetryExhaustion(t *testing.T) {
	// A single sheet whose only feature cluster saturates the plane with
	// ambiguity is impossible to build, so instead starve the budget:
	// with MaxTries=1 and a geometry where most random points are unsafe,
	// exhaustion must eventually surface across seeds.
	g := geom.Geometry{}
	// A dense grid of points spaced 0.09 apart leaves only thin safe
	// bands; a single random draw usually lands in an ambiguous ring.
	for x := -10.0; x <= 10; x += 0.09 {
		for y := -10.0; y <= 10; y += 0.09 {
			g.Points = append(g.Points, geom.Point{X: x, Y: y})
		}
	}
	sheets := []geom.Geometry{{}, g}

	p := testParams(1, 1)
	p.MaxTries = 1
	sawExhaustion := false
	for seed := uint64(0); seed < 50 && !sawExhaustion; seed++ {
		qs := NewQuerySampler(newTestRNG(seed), p, sheets)
		if _, err := qs.Next(); err != nil {
			if !errors.Is(err, ErrRetriesExhausted) {
				t.Fatalf("unexpected error type: %v", err)
			}
			sawExhaustion = true
		}
	}
	if !sawExhaustion {
		t.Error("no retry exhaustion across 50 seeds with MaxTries=1")
	}
}

// Every accepted query point is either exactly on or clearly away from
// every feature of the geometry it was validated against, never strictly
// between the zero tolerance and the safety margin. Checked with raw
// distances, independent of the safety package.
func TestQueryDistanceZones(t *testing.T) {
	for seed := uint64(0); seed < 10; seed++ {
		b := buildHistory(t, seed, 10)
		qs := NewQuerySampler(newTestRNG(seed+1000), testParams(10, 0), b.History())

		for j := 0; j < 100; j++ {
			q, err := qs.Next()
			if err != nil {
				t.Fatalf("seed %d query %d: %v", seed, j, err)
			}
			g := b.Geometry(q.Sheet)

			check := func(d float64, what string) {
				if d > constants.ZeroTolerance && d < constants.DangerEps {
					t.Fatalf("seed %d: query %v has ambiguous distance %v to a %s of sheet %d",
						seed, q.P, d, what, q.Sheet)
				}
			}
			for _, pt := range g.Points {
				check(geom.Dist(q.P, pt), "point")
			}
			for _, l := range g.Lines {
				check(geom.PointLineDist(q.P, l), "line")
			}
			for _, circ := range g.Circles {
				check(math.Abs(geom.Dist(q.P, circ.Center)-circ.R), "circle boundary")
			}
		}
	}
}

// Same zone property for accepted fold lines against their parent sheet.
func TestFoldDistanceZones(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		b := NewBuilder(newTestRNG(seed), testParams(12, 0))
		for i := 1; i <= 12; i++ {
			op, err := b.Next()
			if err != nil {
				t.Fatalf("seed %d sheet %d: %v", seed, i, err)
			}
			if op.Kind != OpFold {
				continue
			}
			l := geom.Line{
				P1: geom.Point{X: op.Args[0], Y: op.Args[1]},
				P2: geom.Point{X: op.Args[2], Y: op.Args[3]},
			}
			parent := b.Geometry(op.Sheet)

			check := func(d float64, what string) {
				if d > constants.ZeroTolerance && d < constants.DangerEps {
					t.Fatalf("seed %d sheet %d: fold has ambiguous distance %v to a %s of sheet %d",
						seed, i, d, what, op.Sheet)
				}
			}
			for _, pt := range parent.Points {
				check(geom.PointLineDist(pt, l), "point")
			}
			for _, circ := range parent.Circles {
				d := geom.PointLineDist(circ.Center, l)
				check(d, "circle center")
				check(math.Abs(d-circ.R), "circle tangency")
			}
		}
	}
}

func TestQuerySamplerNoPointsFallsBackToRandom(t *testing.T) {
	// A sheet with only a circle and no points forces the fully random
	// strategy on every draw.
	sheets := []geom.Geometry{{}, {Circles: []geom.Circle{{Center: geom.Point{X: 0, Y: 0}, R: 2}}}}
	qs := NewQuerySampler(newTestRNG(9), testParams(1, 0), sheets)
	for j := 0; j < 20; j++ {
		if _, err := qs.Next(); err != nil {
			t.Fatalf("query %d: %v", j, err)
		}
	}
}
