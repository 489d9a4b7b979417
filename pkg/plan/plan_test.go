package plan

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/cellgen/pkg/db"
	"github.com/matzehuels/cellgen/pkg/errors"
	"github.com/matzehuels/cellgen/pkg/tech"
)

func mocmosLib(t *testing.T) *db.Library {
	t.Helper()
	tc, err := tech.Builtin().Lookup("mocmos")
	if err != nil {
		t.Fatal(err)
	}
	return db.NewLibrary(tc)
}

func loadInverter(t *testing.T) *Plan {
	t.Helper()
	p, err := Load("testdata/inv.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return p
}

func TestExecute_Inverter(t *testing.T) {
	p := loadInverter(t)
	res, err := Execute(context.Background(), mocmosLib(t), p, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []TrackResult{
		{Name: "gate", Axis: "vertical", Layer: "poly-1", Center: 0, Connections: 3, Stacks: 3, Vias: 1, Wires: 3, Spines: 2},
		{Name: "out", Axis: "horizontal", Layer: "metal-2", Center: 15, Connections: 3, Stacks: 2, Vias: 1, Reused: 1, Wires: 3, Spines: 1},
		{Name: "vdd", Axis: "horizontal", Layer: "metal-2", Center: 45, Connections: 2, Stacks: 2, Vias: 1, Wires: 2, Spines: 1},
		{Name: "gnd", Axis: "horizontal", Layer: "metal-2", Center: -15, Connections: 2, Stacks: 2, Vias: 1, Jogs: 1, Wires: 3, Spines: 1},
	}
	if diff := cmp.Diff(want, res.Tracks); diff != "" {
		t.Errorf("track results (-want +got):\n%s", diff)
	}
	cell := res.Cell
	if got := cell.Count(db.KindVia); got != 4 {
		t.Errorf("vias = %d, want 4", got)
	}
	if got := cell.Count(db.KindDevice); got != 2 {
		t.Errorf("devices = %d, want 2", got)
	}
	if e, ok := cell.FindExport("vdd"); !ok || e.Role != db.RolePower {
		t.Error("vdd export missing")
	}
	// the vdd wire picks up the export's width hint
	vdd, _ := cell.FindExport("vdd")
	for _, a := range vdd.Port.Arcs() {
		if a.Width != 10 {
			t.Errorf("vdd arc width %g", a.Width)
		}
	}
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Plan)
		code   errors.Code
	}{
		{"technology mismatch", func(p *Plan) { p.Technology = "cmos90" }, errors.ErrCodeInvalidPlan},
		{"unknown port layer", func(p *Plan) { p.Devices[0].Ports[0].Layers = []string{"metal-9"} }, errors.ErrCodeInvalidPlan},
		{"unknown track layer", func(p *Plan) { p.Tracks[0].Layer = "diff" }, errors.ErrCodeInvalidPlan},
		{"bad axis", func(p *Plan) { p.Tracks[0].Axis = "diagonal" }, errors.ErrCodeInvalidPlan},
		{"bad role", func(p *Plan) { p.Exports[0].Role = "clock" }, errors.ErrCodeInvalidPlan},
		{"bad orientation", func(p *Plan) { p.Devices[0].Orientation = "R45" }, errors.ErrCodeInvalidPlan},
		{"negative track width", func(p *Plan) { p.Tracks[1].Width = -1 }, errors.ErrCodeInvalidPlan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := loadInverter(t)
			tt.mutate(p)
			_, err := Execute(context.Background(), mocmosLib(t), p, Options{})
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecute_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Execute(ctx, mocmosLib(t), loadInverter(t), Options{}); err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestExecute_DuplicateCell(t *testing.T) {
	lib := mocmosLib(t)
	p := loadInverter(t)
	if _, err := Execute(context.Background(), lib, p, Options{}); err != nil {
		t.Fatal(err)
	}
	if _, err := Execute(context.Background(), lib, p, Options{}); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("second run error = %v", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errors.Code
	}{
		{"syntax", `technology = `, errors.ErrCodeInvalidFormat},
		{"unknown key", "technology = \"mocmos\"\ncell = \"x\"\nscale = 2\n", errors.ErrCodeInvalidPlan},
		{"no technology", `cell = "x"`, errors.ErrCodeInvalidPlan},
		{"bad cell", "technology = \"mocmos\"\ncell = \"a b\"\n", errors.ErrCodeInvalidPlan},
		{"duplicate device", `
technology = "mocmos"
cell = "x"
[[device]]
name = "a"
[[device]]
name = "a"
`, errors.ErrCodeInvalidPlan},
		{"port without layers", `
technology = "mocmos"
cell = "x"
[[device]]
name = "a"
  [[device.port]]
  name = "p"
`, errors.ErrCodeInvalidPlan},
		{"unknown device", `
technology = "mocmos"
cell = "x"
[[track]]
layer = "metal-1"
  [[track.connect]]
  instance = "nope"
  port = "p"
`, errors.ErrCodeInvalidPlan},
		{"unknown export", `
technology = "mocmos"
cell = "x"
[[track]]
layer = "metal-1"
  [[track.connect]]
  export = "nope"
`, errors.ErrCodeInvalidPlan},
		{"export and port", `
technology = "mocmos"
cell = "x"
[[export]]
name = "e"
layer = "metal-1"
[[track]]
layer = "metal-1"
  [[track.connect]]
  export = "e"
  instance = "a"
`, errors.ErrCodeInvalidPlan},
		{"duplicate track", `
technology = "mocmos"
cell = "x"
[[track]]
name = "t"
layer = "metal-1"
[[track]]
name = "t"
layer = "metal-1"
`, errors.ErrCodeInvalidPlan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), FormatTOML)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := Parse([]byte(`{"technology":"mocmos","cell":"x","zoom":1}`), FormatJSON); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown JSON field error = %v", err)
	}
	if _, err := Parse(nil, "yaml"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("yaml error = %v", err)
	}
	if _, err := Load("testdata/missing.toml"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	p := loadInverter(t)
	for _, f := range []Format{FormatJSON, FormatTOML} {
		t.Run(string(f), func(t *testing.T) {
			data, err := p.Encode(f)
			if err != nil {
				t.Fatal(err)
			}
			got, err := Parse(data, f)
			if err != nil {
				t.Fatalf("Parse: %v\n%s", err, data)
			}
			if diff := cmp.Diff(p, got); diff != "" {
				t.Errorf("round trip (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	for path, want := range map[string]Format{
		"a.json":  FormatJSON,
		"a.JSON":  FormatJSON,
		"a.toml":  FormatTOML,
		"plan":    FormatTOML,
		"x/y.yml": FormatTOML,
	} {
		if got := DetectFormat(path); got != want {
			t.Errorf("DetectFormat(%q) = %s, want %s", path, got, want)
		}
	}
}
