package pipeline

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/cellgen/pkg/cache"
	"github.com/matzehuels/cellgen/pkg/errors"
	"github.com/matzehuels/cellgen/pkg/observability"
	"github.com/matzehuels/cellgen/pkg/plan"
	"github.com/matzehuels/cellgen/pkg/render"
	"github.com/matzehuels/cellgen/pkg/storage"
)

func inverterPlan(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../plan/testdata/inv.toml")
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"dot", false},
		{"graph", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidateForPlan(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing plan", Options{}},
		{"bad plan format", Options{Plan: "x", PlanFormat: "yaml"}},
		{"bad technology name", Options{Plan: "x", Technology: "Bad Name"}},
		{"oversized plan", Options{Plan: strings.Repeat("#", MaxPlanSize+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForPlan()
			if !errors.Is(err, errors.ErrCodeInvalidInput) && !errors.Is(err, errors.ErrCodeInvalidName) {
				t.Errorf("err = %v", err)
			}
		})
	}

	opts := Options{Plan: "x"}
	if err := opts.ValidateForPlan(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}
	if opts.PlanFormat != "toml" {
		t.Errorf("PlanFormat should default to toml, got %q", opts.PlanFormat)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != render.FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale should be %g, got %g", DefaultScale, opts.Scale)
	}

	// defaults are copies
	opts.Formats[0] = "json"
	if DefaultFormats[0] != render.FormatSVG {
		t.Error("SetRenderDefaults aliased DefaultFormats")
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	for _, scale := range []float64{-1, MaxScale + 1} {
		opts := Options{Scale: scale}
		if err := opts.ValidateForRender(); err == nil {
			t.Errorf("scale %g should fail", scale)
		}
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Plan: "x"}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	formats := opts.Formats

	// Second call should be idempotent
	opts.Formats = []string{"bogus"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation should be skipped: %v", err)
	}
	if len(formats) != 1 {
		t.Errorf("formats = %v", formats)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Scale: 4, Labels: true}
	if k := opts.ArtifactKeyOpts(render.FormatSVG); k.Scale != 4 || !k.Labels {
		t.Errorf("svg key = %+v", k)
	}
	if k := opts.ArtifactKeyOpts(render.FormatDOT); k.Scale != 0 || k.Labels {
		t.Errorf("dot key should ignore svg options: %+v", k)
	}
}

func TestPlanHashNormalizesEncoding(t *testing.T) {
	tomlPlan, err := ParsePlan(Options{Plan: inverterPlan(t), PlanFormat: "toml"})
	if err != nil {
		t.Fatal(err)
	}
	data, err := tomlPlan.Encode(plan.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	jsonPlan, err := ParsePlan(Options{Plan: string(data), PlanFormat: "json"})
	if err != nil {
		t.Fatal(err)
	}
	h1, _ := PlanHash(tomlPlan)
	h2, _ := PlanHash(jsonPlan)
	if h1 != h2 {
		t.Error("equivalent TOML and JSON plans should hash the same")
	}
}

func TestParsePlanTechnologyOverride(t *testing.T) {
	p, err := ParsePlan(Options{Plan: inverterPlan(t), PlanFormat: "toml", Technology: "cmos90"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Technology != "cmos90" {
		t.Errorf("Technology = %q", p.Technology)
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()
	r := NewRunner(c, nil, nil)

	opts := Options{Plan: inverterPlan(t), Formats: []string{"svg", "json", "dot"}}
	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Plan.Cell != "inv" || res.Layout.Cell != "inv" {
		t.Errorf("cell = %q / %q", res.Plan.Cell, res.Layout.Cell)
	}
	if res.Stats.Vias != 4 {
		t.Errorf("vias = %d, want 4", res.Stats.Vias)
	}
	if len(res.Layout.Tracks) != 4 {
		t.Errorf("tracks = %d, want 4", len(res.Layout.Tracks))
	}
	for _, f := range opts.Formats {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("artifact %s missing", f)
		}
	}
	if res.CacheInfo.RouteHit || res.CacheInfo.RenderHit {
		t.Errorf("first run hit cache: %+v", res.CacheInfo)
	}
	if res.LayoutID != "" {
		t.Error("layout archived without Archive")
	}
	// one layout and three artifacts
	if c.Len() != 4 {
		t.Errorf("cache entries = %d, want 4", c.Len())
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.RouteHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run should hit cache: %+v", again.CacheInfo)
	}
	if string(again.Artifacts["svg"]) != string(res.Artifacts["svg"]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	fresh, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheInfo.RouteHit {
		t.Error("refresh should bypass the layout cache")
	}

	// a new render option misses only the artifact cache
	opts.Refresh = false
	opts.Labels = true
	labelled, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !labelled.CacheInfo.RouteHit || labelled.CacheInfo.RenderHit {
		t.Errorf("labels: %+v", labelled.CacheInfo)
	}
}

func TestRunnerExecuteArchive(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	store := storage.NewMemoryStore()
	r.Store = store

	res, err := r.Execute(ctx, Options{Plan: inverterPlan(t), Formats: []string{"json"}, Archive: true})
	if err != nil {
		t.Fatal(err)
	}
	if !storage.ValidID(res.LayoutID) {
		t.Fatalf("LayoutID = %q", res.LayoutID)
	}
	rec, err := store.Get(ctx, res.LayoutID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.PlanHash != res.PlanHash {
		t.Error("plan hash not archived")
	}
	l, err := render.UnmarshalLayout(res.Artifacts["json"])
	if err != nil {
		t.Fatal(err)
	}
	if l.ID != res.LayoutID {
		t.Errorf("json artifact id = %q, want %q", l.ID, res.LayoutID)
	}
}

func TestRunnerExecuteErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"empty", Options{}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Plan: inverterPlan(t), Formats: []string{"gds"}}, errors.ErrCodeInvalidInput},
		{"syntax", Options{Plan: "technology = "}, errors.ErrCodeInvalidFormat},
		{"invalid plan", Options{Plan: `technology = "mocmos"`}, errors.ErrCodeInvalidPlan},
		{"unknown technology", Options{Plan: inverterPlan(t), Technology: "nope"}, errors.ErrCodeTechnologyNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(ctx, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := r.Execute(cancelled, Options{Plan: inverterPlan(t)}); err == nil {
		t.Error("expected cancellation error")
	}
}

type recorder struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) OnPlanStart(_ context.Context, tech, cell string) { r.add("plan:" + tech + "/" + cell) }
func (r *recorder) OnRouteComplete(_ context.Context, cell string, _ time.Duration, err error) {
	if err == nil {
		r.add("routed:" + cell)
	}
}
func (r *recorder) OnRenderStart(_ context.Context, formats []string) {
	r.add("render:" + strings.Join(formats, ","))
}
func (r *recorder) OnCacheHit(_ context.Context, keyType string)  { r.add("hit:" + keyType) }
func (r *recorder) OnCacheMiss(_ context.Context, keyType string) { r.add("miss:" + keyType) }

func TestRunnerHooks(t *testing.T) {
	rec := &recorder{}
	observability.SetPipelineHooks(rec)
	observability.SetCacheHooks(rec)
	defer observability.Reset()

	r := NewRunner(cache.NewMemoryCache(), nil, nil)
	opts := Options{Plan: inverterPlan(t)}
	for range 2 {
		if _, err := r.Execute(context.Background(), opts); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{
		"plan:mocmos/inv", "miss:layout", "routed:inv", "render:svg", "miss:artifact",
		"plan:mocmos/inv", "hit:layout", "routed:inv", "render:svg", "hit:artifact",
	}
	if strings.Join(rec.events, " ") != strings.Join(want, " ") {
		t.Errorf("events:\n got %v\nwant %v", rec.events, want)
	}
}
