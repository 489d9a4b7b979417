package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestDefaultsAreNoops(t *testing.T) {
	Reset()
	ctx := context.Background()

	Route().OnStackBuilt("out", "metal-1", "metal-2", 1)
	Pipeline().OnPlanComplete(ctx, "mocmos", "inv", 2, time.Second, nil)
	Cache().OnCacheSet(ctx, "artifact", 1024)
	HTTP().OnResponse(ctx, "POST", "/v1/route", 200, time.Second)

	if _, ok := Route().(NoopRouteHooks); !ok {
		t.Errorf("Route() = %T", Route())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T", HTTP())
	}
}

func TestSetAndReset(t *testing.T) {
	t.Cleanup(Reset)

	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	h.Install()

	if Route() != RouteHooks(h) || Pipeline() != PipelineHooks(h) || Cache() != CacheHooks(h) || HTTP() != HTTPHooks(h) {
		t.Fatal("Install did not register every category")
	}

	SetPipelineHooks(nil)
	if Pipeline() != PipelineHooks(h) {
		t.Error("SetPipelineHooks(nil) replaced the registered hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("after Reset Pipeline() = %T", Pipeline())
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	ctx := context.Background()

	h.OnStackBuilt("out", "poly-1", "metal-2", 2)
	h.OnRouteComplete(ctx, "inv", time.Millisecond, errors.New("no layer"))
	h.OnCacheHit(ctx, "layout")

	out := buf.String()
	for _, want := range []string{"stack built", "vias=2", "route failed", "no layer", "cache hit", "key=layout"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output lacks %q:\n%s", want, out)
		}
	}
}

func TestLogHooksQuietAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	h.OnJog("out", 1.5)
	if buf.Len() != 0 {
		t.Errorf("info-level logger printed %q", buf.String())
	}
}
