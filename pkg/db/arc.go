package db

import (
	"math"

	"github.com/matzehuels/cellgen/pkg/geom"
	"github.com/matzehuels/cellgen/pkg/tech"
)

// Arc is a straight wire between two port centers.
type Arc struct {
	ID    int
	Layer *tech.Layer
	Width float64
	Head  *Port
	Tail  *Port
	// HeadPt and TailPt are the end points at creation time.
	HeadPt geom.Point
	TailPt geom.Point
}

// Length returns the Euclidean length of the arc.
func (a *Arc) Length() float64 {
	return math.Hypot(a.TailPt.X-a.HeadPt.X, a.TailPt.Y-a.HeadPt.Y)
}

// Horizontal reports whether both ends share a y coordinate.
func (a *Arc) Horizontal() bool { return a.HeadPt.Y == a.TailPt.Y }

// Vertical reports whether both ends share an x coordinate.
func (a *Arc) Vertical() bool { return a.HeadPt.X == a.TailPt.X }

// Manhattan reports whether the arc is axis-aligned.
func (a *Arc) Manhattan() bool { return a.Horizontal() || a.Vertical() }

// Bounds returns the area covered by the wire, extended by half its width
// past both ends.
func (a *Arc) Bounds() geom.Rect {
	hw := a.Width / 2
	return geom.Rect{
		Left:   geom.Round(math.Min(a.HeadPt.X, a.TailPt.X) - hw),
		Right:  geom.Round(math.Max(a.HeadPt.X, a.TailPt.X) + hw),
		Bottom: geom.Round(math.Min(a.HeadPt.Y, a.TailPt.Y) - hw),
		Top:    geom.Round(math.Max(a.HeadPt.Y, a.TailPt.Y) + hw),
	}
}

// Other returns the end opposite p, or nil if p is not an end.
func (a *Arc) Other(p *Port) *Port {
	switch p {
	case a.Head:
		return a.Tail
	case a.Tail:
		return a.Head
	}
	return nil
}
