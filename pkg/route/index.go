package route

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/cellgen/pkg/tech"
)

// entry is a stack registered on a track.
type entry struct {
	along float64     // position along the track axis
	seq   int         // insertion order
	layer *tech.Layer // port-side layer
	tol   float64     // reuse distance, exclusive
	stack *ViaStack
}

// stackIndex keeps entries sorted by (along, seq).
type stackIndex struct {
	entries []*entry
	maxTol  float64
	next    int
}

func compareEntry(e *entry, along float64, seq int) int {
	if c := cmp.Compare(e.along, along); c != 0 {
		return c
	}
	return cmp.Compare(e.seq, seq)
}

func (x *stackIndex) len() int { return len(x.entries) }

// insert registers s and returns its entry.
func (x *stackIndex) insert(along float64, layer *tech.Layer, tol float64, s *ViaStack) *entry {
	e := &entry{along: along, seq: x.next, layer: layer, tol: tol, stack: s}
	x.next++
	i, _ := slices.BinarySearchFunc(x.entries, e, func(a, b *entry) int {
		return compareEntry(a, b.along, b.seq)
	})
	x.entries = slices.Insert(x.entries, i, e)
	x.maxTol = max(x.maxTol, tol)
	return e
}

// lowerBound returns the index of the first entry at or after along.
func (x *stackIndex) lowerBound(along float64) int {
	i, _ := slices.BinarySearchFunc(x.entries, along, func(e *entry, v float64) int {
		return cmp.Compare(e.along, v)
	})
	return i
}

// reusable returns the entry on layer nearest to along whose tolerance covers
// the distance. Ties go to the earliest inserted entry.
func (x *stackIndex) reusable(along float64, layer *tech.Layer) (*entry, float64) {
	var best *entry
	bestDist := math.Inf(1)
	for i := x.lowerBound(along - x.maxTol); i < len(x.entries); i++ {
		e := x.entries[i]
		if e.along-along >= x.maxTol {
			break
		}
		if e.layer != layer {
			continue
		}
		d := math.Abs(e.along - along)
		if d >= e.tol {
			continue
		}
		if d < bestDist || (d == bestDist && e.seq < best.seq) {
			best, bestDist = e, d
		}
	}
	return best, bestDist
}

// nearest returns the entry closest to along regardless of layer. Ties go
// to the earliest inserted entry. It returns nil on an empty index.
func (x *stackIndex) nearest(along float64) *entry {
	if len(x.entries) == 0 {
		return nil
	}
	i := x.lowerBound(along)
	var best *entry
	bestDist := math.Inf(1)
	consider := func(e *entry) {
		d := math.Abs(e.along - along)
		if d < bestDist || (d == bestDist && e.seq < best.seq) {
			best, bestDist = e, d
		}
	}
	// Entries sharing a position sit next to each other; scan each side
	// until the distance grows.
	for j := i; j < len(x.entries); j++ {
		if math.Abs(x.entries[j].along-along) > bestDist {
			break
		}
		consider(x.entries[j])
	}
	for j := i - 1; j >= 0; j-- {
		if math.Abs(x.entries[j].along-along) > bestDist {
			break
		}
		consider(x.entries[j])
	}
	return best
}

// stacks returns the registered stacks ordered by position.
func (x *stackIndex) stacks() []*ViaStack {
	out := make([]*ViaStack, len(x.entries))
	for i, e := range x.entries {
		out[i] = e.stack
	}
	return out
}
