package tech

import "fmt"

// Layer is a routable conductor layer. Layers are created by [New] and are
// immutable; compare them by pointer.
type Layer struct {
	Name         string
	Height       int
	DefaultWidth float64 // default wire width
	Spacing      float64 // minimum same-layer spacing
	RailSpacing  float64 // spacing required next to wide power rails
}

func (l *Layer) String() string {
	if l == nil {
		return "<nil layer>"
	}
	return fmt.Sprintf("%s(h%d)", l.Name, l.Height)
}

// IsPoly reports whether the layer is the gate layer.
func (l *Layer) IsPoly() bool { return l.Height == 0 }

// Via is a contact prototype connecting two layers at adjacent heights.
type Via struct {
	Name      string
	Lower     *Layer
	Upper     *Layer
	MinWidth  float64 // minimum legal width of the via node
	MinHeight float64 // minimum legal height of the via node
	Spacing   float64 // minimum via-to-via edge spacing
}

func (v *Via) String() string {
	if v == nil {
		return "<nil via>"
	}
	return fmt.Sprintf("%s(%s/%s)", v.Name, v.Lower.Name, v.Upper.Name)
}

// Connects reports whether the via touches l.
func (v *Via) Connects(l *Layer) bool { return v.Lower == l || v.Upper == l }

// Pitch returns the minimum center-to-center distance between two vias of
// this type along the given dimension.
func (v *Via) Pitch(horizontal bool) float64 {
	if horizontal {
		return v.MinWidth + v.Spacing
	}
	return v.MinHeight + v.Spacing
}
