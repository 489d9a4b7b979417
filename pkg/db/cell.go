package db

import (
	"fmt"
	"slices"

	"github.com/matzehuels/cellgen/pkg/errors"
	"github.com/matzehuels/cellgen/pkg/geom"
	"github.com/matzehuels/cellgen/pkg/tech"
)

// Cell is a layout cell: placed instances, wires and exports.
type Cell struct {
	name      string
	lib       *Library
	instances []*Instance
	arcs      []*Arc
	exports   []*Export
	byName    map[string]*Instance
	exportsBy map[string]*Export
	seq       map[*Proto]int
}

func newCell(lib *Library, name string) *Cell {
	return &Cell{
		name:      name,
		lib:       lib,
		byName:    make(map[string]*Instance),
		exportsBy: make(map[string]*Export),
		seq:       make(map[*Proto]int),
	}
}

// Name returns the cell name.
func (c *Cell) Name() string { return c.name }

// Library returns the owning library.
func (c *Cell) Library() *Library { return c.lib }

// Technology is shorthand for c.Library().Technology().
func (c *Cell) Technology() *tech.Technology { return c.lib.tech }

// NewInstance places proto centered at (x, y). A width or height of 0 selects
// the prototype default. Instances are named after their prototype with a
// per-cell sequence number.
func (c *Cell) NewInstance(proto *Proto, x, y, w, h float64, orient geom.Orientation) (*Instance, error) {
	return c.NewNamedInstance("", proto, x, y, w, h, orient)
}

// NewNamedInstance is like NewInstance but uses name when it is not empty.
func (c *Cell) NewNamedInstance(name string, proto *Proto, x, y, w, h float64, orient geom.Orientation) (*Instance, error) {
	if proto == nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrNilProto, "cell %s", c.name)
	}
	if proto.lib != c.lib {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrForeignProto, "cell %s: %v", c.name, proto)
	}
	if w < 0 || h < 0 {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrNegativeSize, "instance of %v: %gx%g", proto, w, h)
	}
	if !orient.Valid() {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrInvalidOrientation, "instance of %v: %v", proto, orient)
	}
	if name == "" {
		name = c.nextName(proto)
	} else {
		if err := errors.ValidateName("instance", name); err != nil {
			return nil, err
		}
		if _, dup := c.byName[name]; dup {
			return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrDuplicateName, "instance %q", name)
		}
	}
	if w == 0 {
		w = proto.Width
	}
	if h == 0 {
		h = proto.Height
	}

	inst := &Instance{
		ID:     len(c.instances),
		Name:   name,
		Proto:  proto,
		Center: geom.Pt(x, y),
		Width:  geom.Round(w),
		Height: geom.Round(h),
		Orient: orient,
		cell:   c,
	}
	for _, spec := range proto.ports {
		inst.ports = append(inst.ports, newPort(inst, spec))
	}
	c.instances = append(c.instances, inst)
	c.byName[name] = inst
	return inst, nil
}

func (c *Cell) nextName(proto *Proto) string {
	for {
		n := c.seq[proto]
		c.seq[proto] = n + 1
		name := fmt.Sprintf("%s@%d", proto.Name, n)
		if _, taken := c.byName[name]; !taken {
			return name
		}
	}
}

// NewPin places a pin of layer at (x, y) with the default pin size.
func (c *Cell) NewPin(layer *tech.Layer, x, y float64) (*Instance, error) {
	proto, err := c.lib.PinProto(layer)
	if err != nil {
		return nil, err
	}
	return c.NewInstance(proto, x, y, 0, 0, geom.R0)
}

// NewArc connects head and tail with a straight wire on layer. A width of 0
// selects the layer's default width.
func (c *Cell) NewArc(layer *tech.Layer, width float64, head, tail *Port) (*Arc, error) {
	if head == nil || tail == nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrNilPort, "arc in %s", c.name)
	}
	if head.inst.cell != c || tail.inst.cell != c {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrForeignPort, "arc %v-%v in %s", head, tail, c.name)
	}
	if !c.lib.tech.Contains(layer) {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrUnknownLayer, "arc %v-%v", head, tail)
	}
	if !head.ConnectsTo(layer) {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrLayerMismatch, "%v on %s", head, layer.Name)
	}
	if !tail.ConnectsTo(layer) {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrLayerMismatch, "%v on %s", tail, layer.Name)
	}
	if width < 0 {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrNegativeSize, "arc width %g", width)
	}
	if width == 0 {
		width = layer.DefaultWidth
	}
	a := &Arc{
		ID:     len(c.arcs),
		Layer:  layer,
		Width:  geom.Round(width),
		Head:   head,
		Tail:   tail,
		HeadPt: head.Center(),
		TailPt: tail.Center(),
	}
	c.arcs = append(c.arcs, a)
	head.arcs = append(head.arcs, a)
	if tail != head {
		tail.arcs = append(tail.arcs, a)
	}
	return a, nil
}

// NewManhattanArc connects head and tail with axis-aligned wire. When the
// centers share neither coordinate, a pin is placed at (tail.x, head.y) and
// two arcs are created; the arc ending at tail is returned.
func (c *Cell) NewManhattanArc(layer *tech.Layer, width float64, head, tail *Port) (*Arc, error) {
	if head == nil || tail == nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrNilPort, "arc in %s", c.name)
	}
	hp, tp := head.Center(), tail.Center()
	if hp.X == tp.X || hp.Y == tp.Y {
		return c.NewArc(layer, width, head, tail)
	}
	corner, err := c.NewPin(layer, tp.X, hp.Y)
	if err != nil {
		return nil, err
	}
	if _, err := c.NewArc(layer, width, head, corner.OnlyPort()); err != nil {
		return nil, err
	}
	return c.NewArc(layer, width, corner.OnlyPort(), tail)
}

// NewExport places a pin on layer at (x, y) and exports its port as name.
// When hintWidth is positive a zero-length arc of that width is attached so
// that routers connecting to the export pick up the width.
func (c *Cell) NewExport(name string, role Role, layer *tech.Layer, hintWidth, x, y float64) (*Export, error) {
	if err := errors.ValidateName("export", name); err != nil {
		return nil, err
	}
	if _, dup := c.exportsBy[name]; dup {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrDuplicateName, "export %q", name)
	}
	if hintWidth < 0 {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrNegativeSize, "export %q width %g", name, hintWidth)
	}
	pin, err := c.NewPin(layer, x, y)
	if err != nil {
		return nil, err
	}
	port := pin.OnlyPort()
	if hintWidth > 0 {
		if _, err := c.NewArc(layer, hintWidth, port, port); err != nil {
			return nil, err
		}
	}
	e := &Export{Name: name, Role: role, Port: port}
	c.exports = append(c.exports, e)
	c.exportsBy[name] = e
	return e, nil
}

// Instances returns the instances in placement order.
func (c *Cell) Instances() []*Instance { return slices.Clone(c.instances) }

// Instance returns the named instance.
func (c *Cell) Instance(name string) (*Instance, bool) {
	i, ok := c.byName[name]
	return i, ok
}

// Arcs returns the arcs in creation order.
func (c *Cell) Arcs() []*Arc { return slices.Clone(c.arcs) }

// Exports returns the exports in creation order.
func (c *Cell) Exports() []*Export { return slices.Clone(c.exports) }

// FindExport returns the named export.
func (c *Cell) FindExport(name string) (*Export, bool) {
	e, ok := c.exportsBy[name]
	return e, ok
}

// Count returns the number of instances of the given kind.
func (c *Cell) Count(kind ProtoKind) int {
	n := 0
	for _, i := range c.instances {
		if i.Proto.Kind == kind {
			n++
		}
	}
	return n
}

// Bounds returns the bounding box of all instances and arcs. An empty cell
// has a zero rectangle.
func (c *Cell) Bounds() geom.Rect {
	var r geom.Rect
	first := true
	add := func(b geom.Rect) {
		if first {
			r, first = b, false
			return
		}
		r = r.Union(b)
	}
	for _, i := range c.instances {
		add(i.Bounds())
	}
	for _, a := range c.arcs {
		add(a.Bounds())
	}
	return r
}

func (c *Cell) String() string { return c.name }
