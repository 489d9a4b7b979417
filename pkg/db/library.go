package db

import (
	"fmt"
	"slices"

	"github.com/matzehuels/cellgen/pkg/errors"
	"github.com/matzehuels/cellgen/pkg/tech"
)

// Library owns the prototypes and cells built for one technology.
type Library struct {
	tech    *tech.Technology
	pins    map[*tech.Layer]*Proto
	vias    map[*tech.Via]*Proto
	devices map[string]*Proto
	cells   map[string]*Cell
	order   []string
}

// NewLibrary creates an empty library for t.
func NewLibrary(t *tech.Technology) *Library {
	return &Library{
		tech:    t,
		pins:    make(map[*tech.Layer]*Proto),
		vias:    make(map[*tech.Via]*Proto),
		devices: make(map[string]*Proto),
		cells:   make(map[string]*Cell),
	}
}

// Technology returns the technology the library was built for.
func (l *Library) Technology() *tech.Technology { return l.tech }

// PinProto returns the pin prototype for layer, creating it on first use.
// Pins default to a square of the layer's default wire width.
func (l *Library) PinProto(layer *tech.Layer) (*Proto, error) {
	if p, ok := l.pins[layer]; ok {
		return p, nil
	}
	if !l.tech.Contains(layer) {
		return nil, errors.Wrap(errors.ErrCodeInvalidTechnology, ErrUnknownLayer, "pin for %v", layer)
	}
	p := &Proto{
		Name:   layer.Name + "-pin",
		Kind:   KindPin,
		Width:  layer.DefaultWidth,
		Height: layer.DefaultWidth,
		Layer:  layer,
		ports:  []PortSpec{{Name: layer.Name, Layers: []*tech.Layer{layer}}},
		lib:    l,
	}
	l.pins[layer] = p
	return p, nil
}

// ViaProto returns the prototype for via, creating it on first use. Vias
// default to their minimum legal size.
func (l *Library) ViaProto(via *tech.Via) (*Proto, error) {
	if p, ok := l.vias[via]; ok {
		return p, nil
	}
	if via == nil || !l.tech.Contains(via.Lower) || !l.tech.Contains(via.Upper) {
		return nil, errors.Wrap(errors.ErrCodeInvalidTechnology, ErrUnknownLayer, "via %v", via)
	}
	p := &Proto{
		Name:   via.Name,
		Kind:   KindVia,
		Width:  via.MinWidth,
		Height: via.MinHeight,
		Via:    via,
		ports:  []PortSpec{{Name: via.Name, Layers: []*tech.Layer{via.Lower, via.Upper}}},
		lib:    l,
	}
	l.vias[via] = p
	return p, nil
}

// NewDeviceProto declares a device prototype with the given default size and
// ports. Port layers must belong to the technology.
func (l *Library) NewDeviceProto(name string, width, height float64, ports []PortSpec) (*Proto, error) {
	if err := errors.ValidateName("device", name); err != nil {
		return nil, err
	}
	if _, dup := l.devices[name]; dup {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrDuplicateName, "device %q", name)
	}
	if width < 0 || height < 0 {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrNegativeSize, "device %q", name)
	}
	seen := make(map[string]bool, len(ports))
	specs := make([]PortSpec, 0, len(ports))
	for _, ps := range ports {
		if err := errors.ValidateName("port", ps.Name); err != nil {
			return nil, err
		}
		if seen[ps.Name] {
			return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrDuplicateName, "device %q port %q", name, ps.Name)
		}
		seen[ps.Name] = true
		if len(ps.Layers) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "device %q port %q has no layers", name, ps.Name)
		}
		for _, layer := range ps.Layers {
			if !l.tech.Contains(layer) {
				return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrUnknownLayer, "device %q port %q", name, ps.Name)
			}
		}
		if ps.Width < 0 || ps.Height < 0 {
			return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrNegativeSize, "device %q port %q", name, ps.Name)
		}
		ps.Layers = slices.Clone(ps.Layers)
		specs = append(specs, ps)
	}
	p := &Proto{Name: name, Kind: KindDevice, Width: width, Height: height, ports: specs, lib: l}
	l.devices[name] = p
	return p, nil
}

// Device returns the device prototype registered under name.
func (l *Library) Device(name string) (*Proto, bool) {
	p, ok := l.devices[name]
	return p, ok
}

// NewCell creates an empty cell.
func (l *Library) NewCell(name string) (*Cell, error) {
	if err := errors.ValidateName("cell", name); err != nil {
		return nil, err
	}
	if _, dup := l.cells[name]; dup {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrDuplicateName, "cell %q", name)
	}
	c := newCell(l, name)
	l.cells[name] = c
	l.order = append(l.order, name)
	return c, nil
}

// Cell returns the cell registered under name.
func (l *Library) Cell(name string) (*Cell, bool) {
	c, ok := l.cells[name]
	return c, ok
}

// Cells returns all cells in creation order.
func (l *Library) Cells() []*Cell {
	out := make([]*Cell, len(l.order))
	for i, n := range l.order {
		out[i] = l.cells[n]
	}
	return out
}

func (l *Library) String() string {
	return fmt.Sprintf("library(%s, %d cells)", l.tech.Name(), len(l.cells))
}
