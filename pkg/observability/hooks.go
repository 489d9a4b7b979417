// Package observability lets a binary observe routing, pipeline, cache and
// HTTP events without the libraries depending on a metrics backend.
//
// Each event category has a hook interface and a no-op implementation. The
// registry starts with the no-ops; binaries install their own at startup:
//
//	observability.NewLogHooks(logger).Install()
//
// and libraries emit through the registry:
//
//	observability.Pipeline().OnRouteStart(ctx, cell, tracks)
package observability

import (
	"context"
	"sync"
	"time"
)

// RouteHooks receives track router events. Routing is synchronous and
// carries no context.
type RouteHooks interface {
	OnStackBuilt(track, from, to string, vias int)
	// OnStackReused fires when a port lands on an existing stack within
	// reuse distance.
	OnStackReused(track, layer string, distance float64)
	OnJog(track string, offset float64)
}

// PipelineHooks receives a start and a completion event per stage.
type PipelineHooks interface {
	OnPlanStart(ctx context.Context, technology, cell string)
	OnPlanComplete(ctx context.Context, technology, cell string, instances int, duration time.Duration, err error)
	OnRouteStart(ctx context.Context, cell string, tracks int)
	OnRouteComplete(ctx context.Context, cell string, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives lookups and writes; keyType is "layout" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives API requests and their responses.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

type NoopRouteHooks struct{}

func (NoopRouteHooks) OnStackBuilt(string, string, string, int) {}
func (NoopRouteHooks) OnStackReused(string, string, float64)    {}
func (NoopRouteHooks) OnJog(string, float64)                    {}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnPlanStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnPlanComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnRouteStart(context.Context, string, int)                        {}
func (NoopPipelineHooks) OnRouteComplete(context.Context, string, time.Duration, error)    {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

type registry struct {
	route    RouteHooks
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

func noops() registry {
	return registry{NoopRouteHooks{}, NoopPipelineHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}}
}

var (
	mu    sync.RWMutex
	hooks = noops()
)

// update applies f under the write lock unless the hook being set is nil.
func update(isNil bool, f func(*registry)) {
	if isNil {
		return
	}
	mu.Lock()
	f(&hooks)
	mu.Unlock()
}

func current() registry {
	mu.RLock()
	defer mu.RUnlock()
	return hooks
}

// Setters ignore nil. Call them at startup, before routing begins.

func SetRouteHooks(h RouteHooks)       { update(h == nil, func(r *registry) { r.route = h }) }
func SetPipelineHooks(h PipelineHooks) { update(h == nil, func(r *registry) { r.pipeline = h }) }
func SetCacheHooks(h CacheHooks)       { update(h == nil, func(r *registry) { r.cache = h }) }
func SetHTTPHooks(h HTTPHooks)         { update(h == nil, func(r *registry) { r.http = h }) }

func Route() RouteHooks       { return current().route }
func Pipeline() PipelineHooks { return current().pipeline }
func Cache() CacheHooks       { return current().cache }
func HTTP() HTTPHooks         { return current().http }

// Reset restores the no-op hooks.
func Reset() {
	mu.Lock()
	hooks = noops()
	mu.Unlock()
}
