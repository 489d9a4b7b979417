package route

import (
	"slices"
	"testing"

	"github.com/matzehuels/cellgen/pkg/tech"
)

func TestStackIndex(t *testing.T) {
	a := &tech.Layer{Name: "a"}
	b := &tech.Layer{Name: "b"}
	var x stackIndex
	if x.nearest(0) != nil {
		t.Fatal("nearest on empty index")
	}
	if e, _ := x.reusable(0, a); e != nil {
		t.Fatal("reusable on empty index")
	}

	// seq: 0 1 2 3
	for _, v := range []struct {
		at    float64
		layer *tech.Layer
		tol   float64
	}{{10, a, 2}, {0, a, 2}, {10, b, 5}, {4, a, 2}} {
		x.insert(v.at, v.layer, v.tol, &ViaStack{})
	}

	var order []int
	for _, e := range x.entries {
		order = append(order, e.seq)
	}
	if want := []int{1, 3, 0, 2}; !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}

	tests := []struct {
		name  string
		at    float64
		layer *tech.Layer
		seq   int // -1 for no match
	}{
		{"exact", 4, a, 3},
		{"within", 11.5, a, 0},
		{"tolerance is per entry", 13, a, -1},
		{"wide tolerance", 14, b, 2},
		{"layer filter", 1, b, -1},
		{"boundary exclusive", 2, a, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := x.reusable(tt.at, tt.layer)
			got := -1
			if e != nil {
				got = e.seq
			}
			if got != tt.seq {
				t.Errorf("reusable(%g, %s) = %d, want %d", tt.at, tt.layer.Name, got, tt.seq)
			}
		})
	}

	if e := x.nearest(10); e.seq != 0 {
		t.Errorf("nearest(10) = seq %d, want 0 (first of two at 10)", e.seq)
	}
	if e := x.nearest(2); e.seq != 1 {
		t.Errorf("nearest(2) = seq %d, want 1", e.seq)
	}
	if e := x.nearest(-100); e.seq != 1 {
		t.Errorf("nearest(-100) = seq %d", e.seq)
	}
	if e := x.nearest(100); e.seq != 0 {
		t.Errorf("nearest(100) = seq %d", e.seq)
	}
}
