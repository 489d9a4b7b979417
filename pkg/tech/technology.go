package tech

import (
	"slices"
	"sort"

	"github.com/matzehuels/cellgen/pkg/errors"
)

// Technology is a validated, immutable layer-height model.
type Technology struct {
	name        string
	description string
	layers      []*Layer // indexed by height
	byName      map[string]*Layer
	vias        []*Via // vias[h] connects heights h and h+1
	viaByName   map[string]*Via
	reserved    ReservedFunc
	process     Process
}

// New validates p and builds a Technology from it.
//
// Validation fails with errors.ErrCodeInvalidTechnology when layer or via
// names are invalid or duplicated, heights are not exactly 0..n-1, a via does
// not join adjacent heights, two vias join the same pair, or some adjacent
// pair has no via.
func New(p Process) (*Technology, error) {
	if err := errors.ValidateTechnologyName(p.Name); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTechnology, err, "technology")
	}
	if len(p.Layers) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTechnology, "%s: no layers", p.Name)
	}

	t := &Technology{
		name:        p.Name,
		description: p.Description,
		byName:      make(map[string]*Layer, len(p.Layers)),
		viaByName:   make(map[string]*Via, len(p.Vias)),
	}

	specs := slices.Clone(p.Layers)
	sort.SliceStable(specs, func(i, j int) bool { return specs[i].Height < specs[j].Height })
	for i, s := range specs {
		if err := errors.ValidateLayerName(s.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTechnology, err, "%s", p.Name)
		}
		if _, dup := t.byName[s.Name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidTechnology, "%s: duplicate layer %q", p.Name, s.Name)
		}
		if s.Height != i {
			return nil, errors.New(errors.ErrCodeInvalidTechnology,
				"%s: layer heights not contiguous: %q has height %d, want %d", p.Name, s.Name, s.Height, i)
		}
		if s.Width <= 0 || s.Spacing < 0 {
			return nil, errors.New(errors.ErrCodeInvalidTechnology, "%s: layer %q has invalid width/spacing", p.Name, s.Name)
		}
		rail := s.RailSpacing
		if rail == 0 {
			rail = s.Spacing
		}
		l := &Layer{Name: s.Name, Height: s.Height, DefaultWidth: s.Width, Spacing: s.Spacing, RailSpacing: rail}
		t.layers = append(t.layers, l)
		t.byName[l.Name] = l
	}

	t.vias = make([]*Via, len(t.layers)-1)
	for _, s := range p.Vias {
		if s.Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidTechnology, "%s: via with empty name", p.Name)
		}
		if _, dup := t.viaByName[s.Name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidTechnology, "%s: duplicate via %q", p.Name, s.Name)
		}
		lo, ok1 := t.byName[s.Lower]
		hi, ok2 := t.byName[s.Upper]
		if !ok1 || !ok2 {
			return nil, errors.New(errors.ErrCodeInvalidTechnology, "%s: via %q references unknown layer", p.Name, s.Name)
		}
		if lo.Height > hi.Height {
			lo, hi = hi, lo
		}
		if hi.Height != lo.Height+1 {
			return nil, errors.New(errors.ErrCodeInvalidTechnology,
				"%s: via %q joins non-adjacent layers %s and %s", p.Name, s.Name, lo, hi)
		}
		if t.vias[lo.Height] != nil {
			return nil, errors.New(errors.ErrCodeInvalidTechnology,
				"%s: vias %q and %q both join %s and %s", p.Name, t.vias[lo.Height].Name, s.Name, lo.Name, hi.Name)
		}
		if s.Width <= 0 || s.Height <= 0 || s.Spacing < 0 {
			return nil, errors.New(errors.ErrCodeInvalidTechnology, "%s: via %q has invalid size", p.Name, s.Name)
		}
		v := &Via{Name: s.Name, Lower: lo, Upper: hi, MinWidth: s.Width, MinHeight: s.Height, Spacing: s.Spacing}
		t.vias[lo.Height] = v
		t.viaByName[v.Name] = v
	}
	for h, v := range t.vias {
		if v == nil {
			return nil, errors.New(errors.ErrCodeInvalidTechnology,
				"%s: no via between %s and %s", p.Name, t.layers[h].Name, t.layers[h+1].Name)
		}
	}

	fn, err := LookupReserved(p.Reserved)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTechnology, err, "%s", p.Name)
	}
	t.reserved = fn
	t.process = p
	return t, nil
}

// MustNew is like New but panics on error. Intended for tests and built-in
// tables.
func MustNew(p Process) *Technology {
	t, err := New(p)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the registry name, e.g. "mocmos".
func (t *Technology) Name() string { return t.name }

// Description returns the one-line summary shown by tech list.
func (t *Technology) Description() string { return t.description }

// Process returns the record the technology was built from.
func (t *Technology) Process() Process { return t.process }

// NumMetals returns the number of metal layers (every layer above poly).
func (t *Technology) NumMetals() int { return len(t.layers) - 1 }

// Layers returns the routing layers ordered by height.
func (t *Technology) Layers() []*Layer { return slices.Clone(t.layers) }

// Vias returns the via types ordered by lower height.
func (t *Technology) Vias() []*Via { return slices.Clone(t.vias) }

// Layer looks up a layer by name.
func (t *Technology) Layer(name string) (*Layer, error) {
	l, ok := t.byName[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidTechnology, "%s: unknown layer %q", t.name, name)
	}
	return l, nil
}

// Via looks up a via type by name.
func (t *Technology) Via(name string) (*Via, error) {
	v, ok := t.viaByName[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidTechnology, "%s: unknown via %q", t.name, name)
	}
	return v, nil
}

// Contains reports whether l belongs to this technology.
func (t *Technology) Contains(l *Layer) bool {
	return l != nil && l.Height >= 0 && l.Height < len(t.layers) && t.layers[l.Height] == l
}

// HeightOf returns the height index of l. Layers from another technology are
// rejected.
func (t *Technology) HeightOf(l *Layer) (int, error) {
	if !t.Contains(l) {
		return 0, errors.New(errors.ErrCodeInvalidTechnology, "%s: layer %v has no height", t.name, l)
	}
	return l.Height, nil
}

// LayerAt returns the layer at height h.
func (t *Technology) LayerAt(h int) (*Layer, error) {
	if h < 0 || h >= len(t.layers) {
		return nil, errors.New(errors.ErrCodeInvalidTechnology, "%s: no layer at height %d", t.name, h)
	}
	return t.layers[h], nil
}

// ViaAbove returns the via joining height h to h+1.
func (t *Technology) ViaAbove(h int) (*Via, error) {
	if h < 0 || h >= len(t.vias) {
		return nil, errors.New(errors.ErrCodeInvalidTechnology, "%s: no via above height %d", t.name, h)
	}
	return t.vias[h], nil
}

// ViaBelow returns the via joining height h-1 to h.
func (t *Technology) ViaBelow(h int) (*Via, error) {
	if h <= 0 || h > len(t.vias) {
		return nil, errors.New(errors.ErrCodeInvalidTechnology, "%s: no via below height %d", t.name, h)
	}
	return t.vias[h-1], nil
}

// ViaFor returns the via joining a and b in either order. It reports false
// when the layers are not adjacent.
func (t *Technology) ViaFor(a, b *Layer) (*Via, bool) {
	if !t.Contains(a) || !t.Contains(b) {
		return nil, false
	}
	lo, hi := min(a.Height, b.Height), max(a.Height, b.Height)
	if hi != lo+1 {
		return nil, false
	}
	return t.vias[lo], true
}

// ClosestLayer picks the candidate nearest in height to target. At each
// distance the layer above target is preferred over the one below. An exact
// match wins outright.
func (t *Technology) ClosestLayer(candidates []*Layer, target *Layer) (*Layer, error) {
	h, err := t.HeightOf(target)
	if err != nil {
		return nil, err
	}
	present := make([]bool, len(t.layers))
	found := false
	for _, c := range candidates {
		if t.Contains(c) {
			present[c.Height] = true
			found = true
		}
	}
	if !found {
		return nil, errors.New(errors.ErrCodeInvalidTechnology, "%s: no routing layer among candidates for %s", t.name, target.Name)
	}
	for d := 0; d < len(t.layers); d++ {
		if up := h + d; up < len(t.layers) && present[up] {
			return t.layers[up], nil
		}
		if down := h - d; down >= 0 && present[down] {
			return t.layers[down], nil
		}
	}
	return nil, errors.New(errors.ErrCodeInternal, "closest layer search exhausted")
}

// HighestLayer returns the highest candidate that belongs to the technology.
func (t *Technology) HighestLayer(candidates []*Layer) (*Layer, error) {
	var best *Layer
	for _, c := range candidates {
		if t.Contains(c) && (best == nil || c.Height > best.Height) {
			best = c
		}
	}
	if best == nil {
		return nil, errors.New(errors.ErrCodeInvalidTechnology, "%s: no routing layer among candidates", t.name)
	}
	return best, nil
}

// ReservedToLambda returns the width reserved for nbTracks routing tracks on
// the layer at height h, using the process's reserved-space strategy.
func (t *Technology) ReservedToLambda(h int, nbTracks float64) (float64, error) {
	l, err := t.LayerAt(h)
	if err != nil {
		return 0, err
	}
	return t.reserved(t, l, nbTracks), nil
}
