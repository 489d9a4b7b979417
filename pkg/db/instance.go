package db

import (
	"slices"

	"github.com/matzehuels/cellgen/pkg/geom"
	"github.com/matzehuels/cellgen/pkg/tech"
)

// Instance is a placed prototype.
type Instance struct {
	ID     int
	Name   string
	Proto  *Proto
	Center geom.Point
	Width  float64 // unrotated width
	Height float64 // unrotated height
	Orient geom.Orientation

	cell  *Cell
	ports []*Port
}

// Cell returns the cell the instance is placed in.
func (i *Instance) Cell() *Cell { return i.cell }

// Ports returns the instance's ports in prototype order.
func (i *Instance) Ports() []*Port { return slices.Clone(i.ports) }

// Port returns the named port, or nil.
func (i *Instance) Port(name string) *Port {
	for _, p := range i.ports {
		if p.name == name {
			return p
		}
	}
	return nil
}

// OnlyPort returns the single port of a pin or via instance.
func (i *Instance) OnlyPort() *Port {
	if len(i.ports) == 0 {
		return nil
	}
	return i.ports[0]
}

// Bounds returns the instance's footprint after orientation.
func (i *Instance) Bounds() geom.Rect {
	w, h := i.Width, i.Height
	if i.Orient.Swaps() {
		w, h = h, w
	}
	return geom.RectAround(i.Center, w, h)
}

func (i *Instance) String() string { return i.Name }

// Port is a connection point on an instance.
type Port struct {
	name   string
	inst   *Instance
	layers []*tech.Layer
	offset geom.Point
	width  float64
	height float64
	arcs   []*Arc
}

func newPort(inst *Instance, spec PortSpec) *Port {
	return &Port{
		name:   spec.Name,
		inst:   inst,
		layers: spec.Layers,
		offset: spec.Offset,
		width:  spec.Width,
		height: spec.Height,
	}
}

// Name returns the prototype port name.
func (p *Port) Name() string { return p.name }

// Instance returns the owning instance.
func (p *Port) Instance() *Instance { return p.inst }

// Center returns the port position in cell coordinates.
func (p *Port) Center() geom.Point {
	o := p.inst.Orient.Apply(p.offset)
	return geom.Pt(p.inst.Center.X+o.X, p.inst.Center.Y+o.Y)
}

// Bounds returns the port's rectangle. Pin and via ports span the whole
// instance; device ports use their declared size, or a square of the widest
// default wire width of their layers.
func (p *Port) Bounds() geom.Rect {
	if p.inst.Proto.Kind != KindDevice {
		return p.inst.Bounds()
	}
	w, h := p.width, p.height
	if w == 0 || h == 0 {
		d := 0.0
		for _, l := range p.layers {
			d = max(d, l.DefaultWidth)
		}
		if w == 0 {
			w = d
		}
		if h == 0 {
			h = d
		}
	}
	if p.inst.Orient.Swaps() {
		w, h = h, w
	}
	return geom.RectAround(p.Center(), w, h)
}

// Layers returns the layers the port connects to.
func (p *Port) Layers() []*tech.Layer { return slices.Clone(p.layers) }

// ConnectsTo reports whether the port accepts wires on layer.
func (p *Port) ConnectsTo(layer *tech.Layer) bool { return slices.Contains(p.layers, layer) }

// Arcs returns the arcs attached to the port.
func (p *Port) Arcs() []*Arc { return slices.Clone(p.arcs) }

// WidestWire returns the width of the widest arc attached to the port, or 0
// when nothing is attached.
func (p *Port) WidestWire() float64 {
	w := 0.0
	for _, a := range p.arcs {
		w = max(w, a.Width)
	}
	return w
}

func (p *Port) String() string { return p.inst.Name + "." + p.name }
