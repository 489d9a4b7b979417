package geom

import (
	"fmt"
	"math"
)

// Resolution is the database grid. Coordinates are snapped to multiples of it.
const Resolution = 1.0 / gridSteps

// gridSteps is the number of grid steps per lambda.
const gridSteps = 1000

// Round snaps v to the database grid.
func Round(v float64) float64 {
	r := math.Round(v*gridSteps) / gridSteps
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// Point is a location in the plane.
type Point struct {
	X, Y float64
}

// Pt returns the grid-rounded point (x, y).
func Pt(x, y float64) Point { return Point{X: Round(x), Y: Round(y)} }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Pt(p.X+q.X, p.Y+q.Y) }

// Eq reports whether p and q are the same grid point.
func (p Point) Eq(q Point) bool { return Round(p.X) == Round(q.X) && Round(p.Y) == Round(q.Y) }

func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// Rect is an axis-aligned rectangle. A zero-area rectangle is valid.
type Rect struct {
	Left, Right float64
	Bottom, Top float64
}

// RectAround returns the rectangle of size w×h centered on c.
func RectAround(c Point, w, h float64) Rect {
	w, h = math.Abs(w), math.Abs(h)
	return Rect{
		Left:   Round(c.X - w/2),
		Right:  Round(c.X + w/2),
		Bottom: Round(c.Y - h/2),
		Top:    Round(c.Y + h/2),
	}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.Top - r.Bottom }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point { return Pt((r.Left+r.Right)/2, (r.Bottom+r.Top)/2) }

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Left:   math.Min(r.Left, o.Left),
		Right:  math.Max(r.Right, o.Right),
		Bottom: math.Min(r.Bottom, o.Bottom),
		Top:    math.Max(r.Top, o.Top),
	}
}

// Contains reports whether p lies inside r or on its boundary.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Bottom && p.Y <= r.Top
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g]x[%g,%g]", r.Left, r.Right, r.Bottom, r.Top)
}
