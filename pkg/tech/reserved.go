package tech

import (
	"slices"

	"github.com/matzehuels/cellgen/pkg/errors"
)

// ReservedFunc computes the width (in lambda) reserved on layer l for
// nbTracks routing tracks between two power rails.
type ReservedFunc func(t *Technology, l *Layer, nbTracks float64) float64

// Built-in reserved-space strategies.
const (
	// ReservedTracks reserves rail clearance on both sides plus one via
	// pitch per track: 2*railSpace - space + n*(via + space).
	ReservedTracks = "tracks"
	// ReservedDense packs tracks at wire pitch with rail clearance on both
	// sides: 2*railSpace - space + n*(width + space).
	ReservedDense = "dense"
)

var reservedFuncs = map[string]ReservedFunc{
	ReservedTracks: reserveTracks,
	ReservedDense:  reserveDense,
}

// LookupReserved returns the strategy registered under name. The empty name
// selects ReservedTracks.
func LookupReserved(name string) (ReservedFunc, error) {
	if name == "" {
		name = ReservedTracks
	}
	fn, ok := reservedFuncs[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidTechnology, "unknown reserved strategy %q", name)
	}
	return fn, nil
}

// ReservedStrategies returns the registered strategy names, sorted.
func ReservedStrategies() []string {
	names := make([]string, 0, len(reservedFuncs))
	for n := range reservedFuncs {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func reserveTracks(t *Technology, l *Layer, n float64) float64 {
	if n <= 0 {
		return 0
	}
	return 2*l.RailSpacing - l.Spacing + n*(viaSizeOn(t, l)+l.Spacing)
}

func reserveDense(t *Technology, l *Layer, n float64) float64 {
	if n <= 0 {
		return 0
	}
	return 2*l.RailSpacing - l.Spacing + n*(l.DefaultWidth+l.Spacing)
}

// viaSizeOn returns the larger via footprint landing on l, or the layer width
// for a single-layer technology.
func viaSizeOn(t *Technology, l *Layer) float64 {
	size := l.DefaultWidth
	if v, err := t.ViaBelow(l.Height); err == nil {
		size = max(size, v.MinWidth, v.MinHeight)
	}
	if v, err := t.ViaAbove(l.Height); err == nil {
		size = max(size, v.MinWidth, v.MinHeight)
	}
	return size
}
