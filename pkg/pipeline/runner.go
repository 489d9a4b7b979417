package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellgen/pkg/cache"
	"github.com/matzehuels/cellgen/pkg/observability"
	"github.com/matzehuels/cellgen/pkg/plan"
	"github.com/matzehuels/cellgen/pkg/render"
	"github.com/matzehuels/cellgen/pkg/storage"
	"github.com/matzehuels/cellgen/pkg/tech"
)

// Cache key types reported to cache hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its backends - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Registry *tech.Registry

	// Store archives layouts when Options.Archive is set. May be nil.
	Store storage.Store
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The registry defaults to the built-in technologies.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Registry: tech.Builtin(),
	}
}

// Execute runs the complete plan → route → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	hooks := observability.Pipeline()

	result := &Result{}

	// Stage 1: Plan
	planStart := time.Now()
	p, t, err := r.Plan(ctx, opts)
	result.Stats.PlanTime = time.Since(planStart)
	var techName, cellName string
	var devices int
	if p != nil {
		techName, cellName, devices = p.Technology, p.Cell, len(p.Devices)
	}
	hooks.OnPlanComplete(ctx, techName, cellName, devices, result.Stats.PlanTime, err)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	result.Plan = p
	if result.PlanHash, err = PlanHash(p); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	r.Logger.Info("parsed plan",
		"cell", p.Cell,
		"technology", t.Name(),
		"devices", len(p.Devices),
		"tracks", len(p.Tracks),
		"duration", result.Stats.PlanTime)

	// Stage 2: Route
	routeStart := time.Now()
	hooks.OnRouteStart(ctx, p.Cell, len(p.Tracks))
	layout, routeHit, err := r.RouteWithCacheInfo(ctx, t, p, result.PlanHash, opts)
	result.Stats.RouteTime = time.Since(routeStart)
	hooks.OnRouteComplete(ctx, p.Cell, result.Stats.RouteTime, err)
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	result.Layout = layout
	result.CacheInfo.RouteHit = routeHit
	result.Stats.Instances = len(layout.Instances)
	result.Stats.Wires = layout.Stats.Wires
	result.Stats.Vias = layout.Stats.Vias

	r.Logger.Info("routed cell",
		"instances", len(layout.Instances),
		"vias", layout.Stats.Vias,
		"wires", layout.Stats.Wires,
		"cached", routeHit,
		"duration", result.Stats.RouteTime)

	// Archive before rendering so the JSON artifact carries the ID.
	if opts.Archive && r.Store != nil {
		rec, err := r.Store.Save(ctx, layout, result.PlanHash)
		if err != nil {
			return nil, fmt.Errorf("archive: %w", err)
		}
		result.LayoutID = rec.ID
		result.Layout = rec.Layout
		r.Logger.Debug("archived layout", "id", rec.ID)
	}

	// Stage 3: Render
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Layout, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Plan parses the plan in opts and resolves its technology.
func (r *Runner) Plan(ctx context.Context, opts Options) (*plan.Plan, *tech.Technology, error) {
	if err := opts.ValidateForPlan(); err != nil {
		return nil, nil, err
	}
	p, err := ParsePlan(opts)
	if err != nil {
		return nil, nil, err
	}
	observability.Pipeline().OnPlanStart(ctx, p.Technology, p.Cell)
	t, err := r.Registry.Lookup(p.Technology)
	if err != nil {
		return p, nil, err
	}
	return p, t, nil
}

// RouteWithCacheInfo routes p with caching and returns cache hit info.
func (r *Runner) RouteWithCacheInfo(ctx context.Context, t *tech.Technology, p *plan.Plan, planHash string, opts Options) (render.Layout, bool, error) {
	r.applyLogger(&opts)
	cacheHooks := observability.Cache()

	techHash, err := TechnologyHash(t)
	if err != nil {
		return render.Layout{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(planHash, cache.LayoutKeyOpts{Technology: t.Name(), TechHash: techHash})

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := render.UnmarshalLayout(data)
			if err == nil {
				cacheHooks.OnCacheHit(ctx, keyTypeLayout)
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		cacheHooks.OnCacheMiss(ctx, keyTypeLayout)
	}

	layout, err := GenerateLayout(ctx, t, p, opts)
	if err != nil {
		return render.Layout{}, false, err
	}

	// Cache the result
	if data, err := render.MarshalLayout(layout); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.LayoutTTL); err == nil {
			cacheHooks.OnCacheSet(ctx, keyTypeLayout, len(data))
		}
	}

	return layout, false, nil // Cache miss
}

// Route is a convenience wrapper that calls RouteWithCacheInfo and discards the cache hit info.
func (r *Runner) Route(ctx context.Context, t *tech.Technology, p *plan.Plan, opts Options) (render.Layout, error) {
	hash, err := PlanHash(p)
	if err != nil {
		return render.Layout{}, err
	}
	layout, _, err := r.RouteWithCacheInfo(ctx, t, p, hash, opts)
	return layout, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout render.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	cacheHooks := observability.Cache()

	// Compute cache key from layout data
	layoutData, err := render.MarshalLayout(layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			cacheHooks.OnCacheMiss(ctx, keyTypeArtifact)
			break
		}
		cacheHooks.OnCacheHit(ctx, keyTypeArtifact)
		artifacts[format] = data
	}

	if len(artifacts) == countDistinct(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	// Render all formats
	rendered, err := Render(ctx, layout, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.ArtifactTTL); err == nil {
			cacheHooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// RenderLayout is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) RenderLayout(ctx context.Context, layout render.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, opts)
	return artifacts, err
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Store != nil {
		if serr := r.Store.Close(ctx); err == nil {
			err = serr
		}
	}
	return err
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func countDistinct(s []string) int {
	seen := make(map[string]struct{}, len(s))
	for _, v := range s {
		seen[v] = struct{}{}
	}
	return len(seen)
}
