package geom

import (
	"fmt"
	"strconv"
	"strings"
)

// Orientation is a rotation by a multiple of 90 degrees counter-clockwise,
// optionally preceded by a mirror about the y-axis.
type Orientation struct {
	Angle   int  // degrees: 0, 90, 180 or 270
	MirrorX bool // mirror x before rotating
}

// R0 is the identity orientation.
var R0 = Orientation{}

// Valid reports whether the angle is one of the four Manhattan rotations.
func (o Orientation) Valid() bool {
	switch o.Angle {
	case 0, 90, 180, 270:
		return true
	}
	return false
}

// Apply transforms an offset relative to an instance origin.
func (o Orientation) Apply(p Point) Point {
	x, y := p.X, p.Y
	if o.MirrorX {
		x = -x
	}
	switch o.Angle {
	case 90:
		x, y = -y, x
	case 180:
		x, y = -x, -y
	case 270:
		x, y = y, -x
	}
	return Pt(x, y)
}

// Swaps reports whether the orientation exchanges width and height.
func (o Orientation) Swaps() bool { return o.Angle == 90 || o.Angle == 270 }

func (o Orientation) String() string {
	if o.MirrorX {
		return fmt.Sprintf("MX R%d", o.Angle)
	}
	return fmt.Sprintf("R%d", o.Angle)
}

// ParseOrientation parses the String form: "R0", "R90", "MX R180", and so
// on. The empty string is R0.
func ParseOrientation(s string) (Orientation, error) {
	var o Orientation
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return o, nil
	}
	if rest, ok := strings.CutPrefix(s, "MX"); ok {
		o.MirrorX = true
		s = strings.TrimSpace(rest)
		if s == "" {
			return o, nil
		}
	}
	deg, ok := strings.CutPrefix(s, "R")
	if !ok {
		return Orientation{}, fmt.Errorf("invalid orientation %q", s)
	}
	n, err := strconv.Atoi(deg)
	if err != nil {
		return Orientation{}, fmt.Errorf("invalid orientation %q: %w", s, err)
	}
	o.Angle = n
	if !o.Valid() {
		return Orientation{}, fmt.Errorf("invalid orientation angle %d", n)
	}
	return o, nil
}
