package gen

import (
	"fmt"

	"github.com/wojtekmal/foldgen/internal/constants"
)

// Params controls one test-case generation run.
type Params struct {
	// Sheets is the number of sheet-defining operations to emit (N).
	Sheets int

	// Queries is the number of query lines to emit (Q).
	Queries int

	// MaxTries is the retry budget per sheet and per query. Exhausting
	// it fails the whole test case.
	MaxTries int

	// CoordMin and CoordMax bound every sampled coordinate.
	CoordMin float64
	CoordMax float64

	// SizeMin and SizeMax bound rectangle side lengths and circle radii.
	SizeMin float64
	SizeMax float64
}

// DefaultParams returns the standard sampling parameters.
func DefaultParams() Params {
	return Params{
		MaxTries: constants.DefaultMaxTries,
		CoordMin: constants.DefaultCoordMin,
		CoordMax: constants.DefaultCoordMax,
		SizeMin:  constants.DefaultSizeMin,
		SizeMax:  constants.DefaultSizeMax,
	}
}

// Validate reports the first structural problem with p, if any.
func (p Params) Validate() error {
	if p.Sheets < 1 {
		return fmt.Errorf("sheets must be >= 1, got %d", p.Sheets)
	}
	if p.Queries < 0 {
		return fmt.Errorf("queries must be >= 0, got %d", p.Queries)
	}
	if p.MaxTries < 1 {
		return fmt.Errorf("max tries must be >= 1, got %d", p.MaxTries)
	}
	if p.CoordMax <= p.CoordMin {
		return fmt.Errorf("coordinate range [%v, %v] is empty", p.CoordMin, p.CoordMax)
	}
	if p.SizeMin <= 0 {
		return fmt.Errorf("size min must be positive, got %v", p.SizeMin)
	}
	if p.SizeMax < p.SizeMin {
		return fmt.Errorf("size range [%v, %v] is empty", p.SizeMin, p.SizeMax)
	}
	return nil
}
