// Package safety classifies candidate points and fold lines as safe or
// unsafe relative to an accumulated sheet geometry.
//
// For every relevant distance d between a candidate and an existing
// feature there are three zones: d <= ZeroTol means the candidate lies
// exactly on the feature (safe, an intentional relationship); d >=
// DangerEps means it is clearly separated (safe); anything in between is
// ambiguous and the candidate must be rejected, because the intended
// answer for such an input would be numerically fragile.
package safety

import (
	"math"

	"github.com/wojtekmal/foldgen/internal/constants"
	"github.com/wojtekmal/foldgen/internal/geom"
)

// Checker holds the two thresholds that define the ambiguous zone.
// The zero value is unusable; construct with NewChecker.
type Checker struct {
	ZeroTol   float64
	DangerEps float64
}

// NewChecker returns a Checker with the standard thresholds.
func NewChecker() Checker {
	return Checker{
		ZeroTol:   constants.ZeroTolerance,
		DangerEps: constants.DangerEps,
	}
}

// ambiguous reports whether d falls strictly between the coincidence
// threshold and the safety margin.
func (c Checker) ambiguous(d float64) bool {
	return d > c.ZeroTol && d < c.DangerEps
}

// SafePoint reports whether p is safe relative to every feature of g:
// its distance to each point, each line, and each circle boundary
// (|dist-to-center - r|) must avoid the ambiguous zone. Circle interiors
// are deliberately not considered; only boundary proximity matters.
func (c Checker) SafePoint(p geom.Point, g geom.Geometry) bool {
	for _, pt := range g.Points {
		if c.ambiguous(geom.Dist(p, pt)) {
			return false
		}
	}
	for _, l := range g.Lines {
		if c.ambiguous(geom.PointLineDist(p, l)) {
			return false
		}
	}
	for _, circ := range g.Circles {
		boundary := math.Abs(geom.Dist(p, circ.Center) - circ.R)
		if c.ambiguous(boundary) {
			return false
		}
	}
	return true
}

// SafeFold reports whether l is a safe fold line for g: every existing
// point must avoid the ambiguous zone around l, and for every circle both
// the center-to-line distance and its difference from the radius (near
// tangency) must avoid it. Existing lines are not checked against the
// candidate; line/line proximity is not part of the safety model.
func (c Checker) SafeFold(l geom.Line, g geom.Geometry) bool {
	for _, pt := range g.Points {
		if c.ambiguous(geom.PointLineDist(pt, l)) {
			return false
		}
	}
	for _, circ := range g.Circles {
		d := geom.PointLineDist(circ.Center, l)
		if c.ambiguous(d) {
			return false
		}
		if c.ambiguous(math.Abs(d - circ.R)) {
			return false
		}
	}
	return true
}
