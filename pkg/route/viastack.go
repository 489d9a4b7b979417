package route

import (
	"slices"

	"github.com/matzehuels/cellgen/pkg/db"
	"github.com/matzehuels/cellgen/pkg/errors"
	"github.com/matzehuels/cellgen/pkg/geom"
	"github.com/matzehuels/cellgen/pkg/tech"
)

// ViaStack is a chain of vias, or a single pin, at one point.
type ViaStack struct {
	layer1 *tech.Layer
	layer2 *tech.Layer
	at     geom.Point
	insts  []*db.Instance // low to high
	links  []*db.Arc
	port1  *db.Port
	port2  *db.Port
}

// Port1 returns the port on the first layer passed to BuildStack.
func (s *ViaStack) Port1() *db.Port { return s.port1 }

// Port2 returns the port on the second layer passed to BuildStack.
func (s *ViaStack) Port2() *db.Port { return s.port2 }

// Layer1 returns the first layer passed to BuildStack.
func (s *ViaStack) Layer1() *tech.Layer { return s.layer1 }

// Layer2 returns the second layer passed to BuildStack.
func (s *ViaStack) Layer2() *tech.Layer { return s.layer2 }

// At returns the placement point.
func (s *ViaStack) At() geom.Point { return s.at }

// Degenerate reports whether the stack is a single pin.
func (s *ViaStack) Degenerate() bool { return s.layer1 == s.layer2 }

// Vias returns the via instances from the lowest layer up. It is empty for a
// degenerate stack.
func (s *ViaStack) Vias() []*db.Instance {
	if s.Degenerate() {
		return nil
	}
	return slices.Clone(s.insts)
}

// Instances returns every instance of the stack, pins included.
func (s *ViaStack) Instances() []*db.Instance { return slices.Clone(s.insts) }

// Links returns the zero-length arcs joining successive vias.
func (s *ViaStack) Links() []*db.Arc { return slices.Clone(s.links) }

// Builder places via stacks into a cell.
type Builder struct {
	cell   *db.Cell
	layers LayerModel
}

// NewBuilder returns a builder writing into cell. A nil layer model selects
// the cell's technology.
func NewBuilder(cell *db.Cell, layers LayerModel) *Builder {
	if layers == nil {
		layers = cell.Technology()
	}
	return &Builder{cell: cell, layers: layers}
}

// BuildStack connects layerA to layerB at (x, y). Every via is sized to at
// least width×height and at least its minimum size; a width or height of 0
// requests the minimum. A degenerate stack is a pin of width×height, with 0
// selecting the pin default.
//
// Unknown layers and missing vias fail with errors.ErrCodeInvalidTechnology.
// Instances placed before the failure stay in the cell.
func (b *Builder) BuildStack(layerA, layerB *tech.Layer, x, y, width, height float64) (*ViaStack, error) {
	if width < 0 || height < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "via stack size %gx%g", width, height)
	}
	hA, err := b.height(layerA)
	if err != nil {
		return nil, err
	}
	hB, err := b.height(layerB)
	if err != nil {
		return nil, err
	}
	lib := b.cell.Library()
	s := &ViaStack{layer1: layerA, layer2: layerB, at: geom.Pt(x, y)}

	if hA == hB {
		proto, err := lib.PinProto(layerA)
		if err != nil {
			return nil, err
		}
		pin, err := b.cell.NewInstance(proto, x, y, width, height, geom.R0)
		if err != nil {
			return nil, err
		}
		s.insts = []*db.Instance{pin}
		s.port1, s.port2 = pin.OnlyPort(), pin.OnlyPort()
		return s, nil
	}

	lo, hi := min(hA, hB), max(hA, hB)
	for h := lo; h < hi; h++ {
		via, err := b.layers.ViaAbove(h)
		if err != nil {
			return nil, configError(err, "no via above height %d", h)
		}
		proto, err := lib.ViaProto(via)
		if err != nil {
			return nil, err
		}
		inst, err := b.cell.NewInstance(proto, x, y, max(width, via.MinWidth), max(height, via.MinHeight), geom.R0)
		if err != nil {
			return nil, err
		}
		if n := len(s.insts); n > 0 {
			mid, err := b.layers.LayerAt(h)
			if err != nil {
				return nil, configError(err, "no layer at height %d", h)
			}
			link, err := b.cell.NewArc(mid, 0, s.insts[n-1].OnlyPort(), inst.OnlyPort())
			if err != nil {
				return nil, err
			}
			s.links = append(s.links, link)
		}
		s.insts = append(s.insts, inst)
	}

	low, high := s.insts[0].OnlyPort(), s.insts[len(s.insts)-1].OnlyPort()
	if hA < hB {
		s.port1, s.port2 = low, high
	} else {
		s.port1, s.port2 = high, low
	}
	return s, nil
}

func (b *Builder) height(l *tech.Layer) (int, error) {
	if l == nil {
		return 0, errors.New(errors.ErrCodeInvalidTechnology, "nil layer")
	}
	h, err := b.layers.HeightOf(l)
	if err != nil {
		return 0, configError(err, "layer %s", l.Name)
	}
	return h, nil
}

// configError makes sure a layer-model failure carries the configuration
// code even when the model is not a *tech.Technology.
func configError(err error, format string, args ...any) error {
	if errors.IsConfiguration(err) {
		return err
	}
	return errors.Wrap(errors.ErrCodeInvalidTechnology, err, format, args...)
}
