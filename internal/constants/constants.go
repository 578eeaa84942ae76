// Package constants provides named constants used throughout the foldgen codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Safety thresholds for generated geometry.
const (
	// ZeroTolerance is the numeric threshold below which a distance is
	// treated as exactly zero. Distances at or under it mean a candidate
	// lies exactly on a feature (or a line is degenerate).
	ZeroTolerance = 1e-9

	// DangerEps is the minimum safe distance between a candidate and any
	// feature it does not lie exactly on. Distances strictly between
	// ZeroTolerance and DangerEps are ambiguous and must be rejected.
	// Must exceed ZeroTolerance by several orders of magnitude.
	DangerEps = 0.05
)

// Generation limits.
const (
	// DefaultMaxTries is the per-sheet and per-query retry budget before
	// the whole test case is abandoned.
	DefaultMaxTries = 100

	// DefaultMaxFileRetries is how many times the generate command will
	// re-attempt a single output file after retry exhaustion before
	// giving up on the run.
	DefaultMaxFileRetries = 1000
)

// Sampling ranges for coordinates and shape sizes.
const (
	// DefaultCoordMin and DefaultCoordMax bound sampled x/y coordinates.
	DefaultCoordMin = -10.0
	DefaultCoordMax = 10.0

	// DefaultSizeMin and DefaultSizeMax bound rectangle side lengths and
	// circle radii.
	DefaultSizeMin = 1.0
	DefaultSizeMax = 5.0
)

// CoordPrecision is the number of decimal places used when emitting
// coordinates to test files.
const CoordPrecision = 6
