package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records to a
// logger. The CLI installs it under --verbose.
type LogHooks struct {
	logger *log.Logger
}

func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("hook")}
}

// Install registers h for all four event categories.
func (h *LogHooks) Install() {
	SetRouteHooks(h)
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnStackBuilt(track, from, to string, vias int) {
	h.logger.Debug("stack built", "track", track, "from", from, "to", to, "vias", vias)
}

func (h *LogHooks) OnStackReused(track, layer string, distance float64) {
	h.logger.Debug("stack reused", "track", track, "layer", layer, "distance", distance)
}

func (h *LogHooks) OnJog(track string, offset float64) {
	h.logger.Debug("jog", "track", track, "offset", offset)
}

func (h *LogHooks) OnPlanStart(_ context.Context, technology, cell string) {
	h.logger.Debug("plan start", "technology", technology, "cell", cell)
}

func (h *LogHooks) OnPlanComplete(_ context.Context, technology, cell string, instances int, d time.Duration, err error) {
	h.done("plan", d, err, "technology", technology, "cell", cell, "instances", instances)
}

func (h *LogHooks) OnRouteStart(_ context.Context, cell string, tracks int) {
	h.logger.Debug("route start", "cell", cell, "tracks", tracks)
}

func (h *LogHooks) OnRouteComplete(_ context.Context, cell string, d time.Duration, err error) {
	h.done("route", d, err, "cell", cell)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("render", d, err, "formats", formats)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) done(stage string, d time.Duration, err error, keyvals ...any) {
	keyvals = append(keyvals, "duration", d)
	if err != nil {
		h.logger.Debug(stage+" failed", append(keyvals, "err", err)...)
		return
	}
	h.logger.Debug(stage+" done", keyvals...)
}

var (
	_ RouteHooks    = (*LogHooks)(nil)
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
