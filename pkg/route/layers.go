package route

import "github.com/matzehuels/cellgen/pkg/tech"

// LayerModel is the view of a technology that the router needs.
type LayerModel interface {
	HeightOf(layer *tech.Layer) (int, error)
	ViaAbove(h int) (*tech.Via, error)
	LayerAt(h int) (*tech.Layer, error)
	ClosestLayer(candidates []*tech.Layer, target *tech.Layer) (*tech.Layer, error)
}

var _ LayerModel = (*tech.Technology)(nil)
