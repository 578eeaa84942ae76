// Package geom provides the 2D primitives used to model folded sheets:
// points, infinite lines, circles, and the feature sets accumulated on a
// sheet through its fold history. All operations are value-semantic; a
// Geometry is never mutated after it has been published to a sheet history.
package geom

import (
	"math"

	"github.com/wojtekmal/foldgen/internal/constants"
)

// Point is a 2D point in Cartesian coordinates.
type Point struct {
	X float64
	Y float64
}

// Line is the infinite line through two points. It is degenerate when the
// two points (nearly) coincide; degenerate lines are never accepted as
// fold lines but the kernel functions still handle them.
type Line struct {
	P1 Point
	P2 Point
}

// Circle is a circle with a non-negative radius.
type Circle struct {
	Center Point
	R      float64
}

// DistSq returns the squared Euclidean distance between p and q.
func DistSq(p, q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Dist returns the Euclidean distance between p and q.
func Dist(p, q Point) float64 {
	return math.Sqrt(DistSq(p, q))
}

// LengthSq returns the squared distance between the line's defining points.
func (l Line) LengthSq() float64 {
	return DistSq(l.P1, l.P2)
}

// Degenerate reports whether the line's defining points coincide within
// the zero tolerance.
func (l Line) Degenerate() bool {
	return l.LengthSq() < constants.ZeroTolerance
}

// foot returns the foot of the perpendicular from p onto l, and whether
// l is non-degenerate. The projection parameter is unclamped: l is an
// infinite line, not a segment.
func foot(p Point, l Line) (Point, bool) {
	cx := l.P2.X - l.P1.X
	cy := l.P2.Y - l.P1.Y
	lenSq := cx*cx + cy*cy
	if lenSq < constants.ZeroTolerance {
		return Point{}, false
	}
	t := ((p.X-l.P1.X)*cx + (p.Y-l.P1.Y)*cy) / lenSq
	return Point{X: l.P1.X + t*cx, Y: l.P1.Y + t*cy}, true
}

// PointLineDist returns the perpendicular distance from p to the infinite
// line l. For a degenerate line it falls back to the distance to l.P1.
func PointLineDist(p Point, l Line) float64 {
	f, ok := foot(p, l)
	if !ok {
		return Dist(p, l.P1)
	}
	return Dist(p, f)
}

// Reflect mirrors p across the infinite line l. Reflecting across a
// degenerate line returns p unchanged.
func Reflect(p Point, l Line) Point {
	f, ok := foot(p, l)
	if !ok {
		return p
	}
	return Point{X: 2*f.X - p.X, Y: 2*f.Y - p.Y}
}

// Geometry is the full feature set of one sheet: every point, edge, and
// circle accumulated through its fold history. Feature order is append
// order and is preserved by Clone and Fold.
type Geometry struct {
	Points  []Point
	Lines   []Line
	Circles []Circle
}

// Clone returns an independent deep copy of g.
func (g Geometry) Clone() Geometry {
	out := Geometry{
		Points:  make([]Point, len(g.Points)),
		Lines:   make([]Line, len(g.Lines)),
		Circles: make([]Circle, len(g.Circles)),
	}
	copy(out.Points, g.Points)
	copy(out.Lines, g.Lines)
	copy(out.Circles, g.Circles)
	return out
}

// Fold returns the geometry of the sheet produced by folding g along l:
// a copy of g, with every feature additionally reflected across l and
// appended, and l itself recorded as a new edge. g is not modified.
func (g Geometry) Fold(l Line) Geometry {
	out := Geometry{
		Points:  make([]Point, 0, 2*len(g.Points)),
		Lines:   make([]Line, 0, 2*len(g.Lines)+1),
		Circles: make([]Circle, 0, 2*len(g.Circles)),
	}
	out.Points = append(out.Points, g.Points...)
	out.Lines = append(out.Lines, g.Lines...)
	out.Circles = append(out.Circles, g.Circles...)

	for _, p := range g.Points {
		out.Points = append(out.Points, Reflect(p, l))
	}
	for _, e := range g.Lines {
		out.Lines = append(out.Lines, Line{P1: Reflect(e.P1, l), P2: Reflect(e.P2, l)})
	}
	for _, c := range g.Circles {
		out.Circles = append(out.Circles, Circle{Center: Reflect(c.Center, l), R: c.R})
	}

	out.Lines = append(out.Lines, l)
	return out
}

// Rect returns the geometry of an axis-aligned rectangle with opposite
// corners (x1,y1) and (x2,y2): four corner points and four edges.
func Rect(x1, y1, x2, y2 float64) Geometry {
	a := Point{X: x1, Y: y1}
	b := Point{X: x2, Y: y1}
	c := Point{X: x2, Y: y2}
	d := Point{X: x1, Y: y2}
	return Geometry{
		Points: []Point{a, b, c, d},
		Lines: []Line{
			{P1: a, P2: b},
			{P1: b, P2: c},
			{P1: c, P2: d},
			{P1: d, P2: a},
		},
	}
}

// Disc returns the geometry of a circular sheet: its center point plus
// the circle itself.
func Disc(x, y, r float64) Geometry {
	center := Point{X: x, Y: y}
	return Geometry{
		Points:  []Point{center},
		Circles: []Circle{{Center: center, R: r}},
	}
}
