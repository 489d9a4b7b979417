package route

import (
	"testing"

	"github.com/matzehuels/cellgen/pkg/db"
	"github.com/matzehuels/cellgen/pkg/geom"
	"github.com/matzehuels/cellgen/pkg/tech"
)

// threeHigh has routing layers at heights 0, 1 and 2.
//
//	pm1  poly-1/metal-1   5x5, spacing 3: pitch 8 both ways
//	m1m2 metal-1/metal-2  4x6, spacing 2: pitch 6 along x, 8 along y
func threeHigh() tech.Process {
	return tech.Process{
		Name: "three",
		Layers: []tech.LayerSpec{
			{Name: "poly-1", Height: 0, Width: 2, Spacing: 3},
			{Name: "metal-1", Height: 1, Width: 3, Spacing: 3},
			{Name: "metal-2", Height: 2, Width: 4, Spacing: 4},
		},
		Vias: []tech.ViaSpec{
			{Name: "pm1", Lower: "poly-1", Upper: "metal-1", Width: 5, Height: 5, Spacing: 3},
			{Name: "m1m2", Lower: "metal-1", Upper: "metal-2", Width: 4, Height: 6, Spacing: 2},
		},
	}
}

type fixture struct {
	t            *testing.T
	tech         *tech.Technology
	cell         *db.Cell
	poly, m1, m2 *tech.Layer
	dev          *db.Proto
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tc := tech.MustNew(threeHigh())
	lib := db.NewLibrary(tc)
	cell, err := lib.NewCell("test")
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{t: t, tech: tc, cell: cell}
	f.poly, _ = tc.Layer("poly-1")
	f.m1, _ = tc.Layer("metal-1")
	f.m2, _ = tc.Layer("metal-2")
	f.dev, err = lib.NewDeviceProto("dev", 1, 1, []db.PortSpec{
		{Name: "g", Layers: []*tech.Layer{f.poly}},
		{Name: "d", Layers: []*tech.Layer{f.m1}},
		{Name: "gd", Layers: []*tech.Layer{f.poly, f.m1}},
		{Name: "o", Layers: []*tech.Layer{f.m2}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// port places a device at (x, y) and returns its named port.
func (f *fixture) port(name string, x, y float64) *db.Port {
	f.t.Helper()
	inst, err := f.cell.NewInstance(f.dev, x, y, 0, 0, geom.R0)
	if err != nil {
		f.t.Fatal(err)
	}
	p := inst.Port(name)
	if p == nil {
		f.t.Fatalf("device has no port %q", name)
	}
	return p
}

func (f *fixture) horizontal(width float64, opts ...Option) *Track {
	f.t.Helper()
	tr, err := NewHorizontal(f.cell, f.tech, f.m2, width, opts...)
	if err != nil {
		f.t.Fatal(err)
	}
	return tr
}

func (f *fixture) count(kind db.ProtoKind) int { return f.cell.Count(kind) }

func (f *fixture) vertical(width float64, opts ...Option) *Track {
	f.t.Helper()
	tr, err := NewVertical(f.cell, f.tech, f.m2, width, opts...)
	if err != nil {
		f.t.Fatal(err)
	}
	return tr
}
