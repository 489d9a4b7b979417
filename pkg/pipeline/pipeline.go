// Package pipeline provides the cell generation pipeline.
//
// This package implements the complete plan → route → render pipeline that
// is used by the CLI and the HTTP API, so both entry points cache and report
// the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Plan: Parse and validate a routing plan, resolve its technology
//  2. Route: Place devices and exports, run every track router
//  3. Render: Generate outputs (JSON, SVG, DOT, Graphviz SVG)
//
// Route results are cached by the hash of the normalized plan and the
// technology tables; artifacts by the hash of the layout and render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Plan:    string(data),
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellgen/pkg/cache"
	"github.com/matzehuels/cellgen/pkg/errors"
	"github.com/matzehuels/cellgen/pkg/plan"
	"github.com/matzehuels/cellgen/pkg/render"
)

// Defaults and limits shared by the CLI and the API.
const (
	DefaultScale = 10.0    // SVG pixels per lambda
	MaxScale     = 100.0   // largest scale accepted from API clients
	MaxPlanSize  = 1 << 20 // bytes
)

// DefaultFormats is rendered when a request names no format.
var DefaultFormats = []string{render.FormatSVG}

var discard = log.NewWithOptions(io.Discard, log.Options{})

// Options configures one pipeline run. It doubles as the JSON body of the
// API's route request.
type Options struct {
	Plan       string `json:"plan"`
	PlanFormat string `json:"plan_format,omitempty"` // toml (default) or json
	Technology string `json:"technology,omitempty"`  // overrides the plan's technology
	Refresh    bool   `json:"refresh,omitempty"`     // reroute even on a cache hit

	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	Labels  bool     `json:"labels,omitempty"`

	// Archive stores the layout in the runner's store.
	Archive bool `json:"archive,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is the output of [Runner.Execute].
type Result struct {
	Plan      *plan.Plan
	PlanHash  string // hash of the normalized plan
	Layout    render.Layout
	LayoutID  string // set when the layout was archived
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds counts and per-stage timings.
type Stats struct {
	Instances  int
	Wires      int
	Vias       int
	PlanTime   time.Duration
	RouteTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo reports which stages were served from the cache.
type CacheInfo struct {
	RouteHit  bool
	RenderHit bool // every requested artifact was cached
}

// ValidateFormat rejects output formats render does not know.
func ValidateFormat(format string) error {
	if render.ValidFormat(format) {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %v)", format, render.Formats)
}

func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePlanFormat rejects plan encodings other than toml and json.
func ValidatePlanFormat(format string) error {
	if f := plan.Format(format); f == plan.FormatTOML || f == plan.FormatJSON {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid plan_format: %q (must be one of: toml, json)", format)
}

// ValidateAndSetDefaults runs [Options.ValidateForPlan] and
// [Options.ValidateForRender] once; later calls are no-ops.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForPlan(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForPlan checks the plan input and fills PlanFormat and Logger.
func (o *Options) ValidateForPlan() error {
	switch {
	case o.Plan == "":
		return errors.New(errors.ErrCodeInvalidInput, "plan is required")
	case len(o.Plan) > MaxPlanSize:
		return errors.New(errors.ErrCodeInvalidInput, "plan exceeds %d bytes", MaxPlanSize)
	}
	if o.PlanFormat == "" {
		o.PlanFormat = string(plan.FormatTOML)
	}
	if err := ValidatePlanFormat(o.PlanFormat); err != nil {
		return err
	}
	if o.Technology != "" {
		if err := errors.ValidateTechnologyName(o.Technology); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = discard
	}
	return nil
}

// SetRenderDefaults fills Formats, Scale and Logger. Formats never aliases
// DefaultFormats.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = discard
	}
}

// ValidateForRender applies render defaults and checks scale and formats.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 || o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, %g], got %g", MaxScale, o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// ArtifactKeyOpts keys an artifact by format. Scale and labels only change
// SVG output, so other formats share one entry across them.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if format == render.FormatSVG {
		k.Scale, k.Labels = o.Scale, o.Labels
	}
	return k
}

func (o *Options) svgOptions() []render.SVGOption {
	opts := []render.SVGOption{render.WithScale(o.Scale)}
	if o.Labels {
		opts = append(opts, render.WithLabels())
	}
	return opts
}
