package db

import (
	"github.com/matzehuels/cellgen/pkg/geom"
	"github.com/matzehuels/cellgen/pkg/tech"
)

// ProtoKind distinguishes the kinds of prototype a library holds.
type ProtoKind int

const (
	// KindPin is a single-layer connection point.
	KindPin ProtoKind = iota
	// KindVia is a contact between two adjacent-height layers.
	KindVia
	// KindDevice is a caller-defined primitive such as a transistor.
	KindDevice
)

func (k ProtoKind) String() string {
	switch k {
	case KindPin:
		return "pin"
	case KindVia:
		return "via"
	case KindDevice:
		return "device"
	}
	return "unknown"
}

// PortSpec declares a port of a device prototype. Offset is measured from
// the instance center before orientation is applied. Width and Height of 0
// size the port to the widest default wire of its layers.
type PortSpec struct {
	Name   string
	Layers []*tech.Layer
	Offset geom.Point
	Width  float64
	Height float64
}

// Proto is a prototype that cells instantiate.
type Proto struct {
	Name   string
	Kind   ProtoKind
	Width  float64 // default width
	Height float64 // default height
	Layer  *tech.Layer
	Via    *tech.Via
	ports  []PortSpec
	lib    *Library
}

// Ports returns the prototype's port declarations.
func (p *Proto) Ports() []PortSpec {
	out := make([]PortSpec, len(p.ports))
	copy(out, p.ports)
	return out
}

func (p *Proto) String() string { return p.Kind.String() + ":" + p.Name }
