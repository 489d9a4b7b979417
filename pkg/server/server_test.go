package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/cellgen/pkg/cache"
	"github.com/matzehuels/cellgen/pkg/errors"
	"github.com/matzehuels/cellgen/pkg/observability"
	"github.com/matzehuels/cellgen/pkg/pipeline"
	"github.com/matzehuels/cellgen/pkg/storage"
)

func newTestServer(t *testing.T, store storage.Store) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, nil)
	srv := httptest.NewServer(New(Config{Runner: runner, Store: store}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func inverterPlan(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../plan/testdata/inv.toml")
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := do(t, http.MethodGet, srv.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	h := decode[healthResponse](t, resp)
	if h.Status != "ok" || h.Version == "" {
		t.Errorf("health = %+v", h)
	}
}

func TestTechnologies(t *testing.T) {
	srv := newTestServer(t, nil)

	list := decode[[]techSummary](t, do(t, http.MethodGet, srv.URL+"/v1/technologies", nil))
	names := make([]string, len(list))
	for i, s := range list {
		names[i] = s.Name
	}
	if got := strings.Join(names, ","); got != "cmos90,mocmos,tsmc180" {
		t.Errorf("technologies = %s", got)
	}

	resp := do(t, http.MethodGet, srv.URL+"/v1/technologies/mocmos", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	d := decode[techDetail](t, resp)
	if d.Metals != 6 || len(d.Layers) != 7 || len(d.Vias) != 6 {
		t.Errorf("mocmos = %d metals, %d layers, %d vias", d.Metals, len(d.Layers), len(d.Vias))
	}
	if d.Layers[0].Name != "poly-1" || d.Vias[0].Lower != "poly-1" || d.Vias[0].Upper != "metal-1" {
		t.Errorf("first layer/via = %+v / %+v", d.Layers[0], d.Vias[0])
	}

	resp = do(t, http.MethodGet, srv.URL+"/v1/technologies/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown technology status = %d", resp.StatusCode)
	}
	if e := decode[errorResponse](t, resp); e.Error.Code != string(errors.ErrCodeTechnologyNotFound) {
		t.Errorf("error = %+v", e)
	}
}

func TestRoute(t *testing.T) {
	srv := newTestServer(t, nil)
	body := map[string]any{"plan": inverterPlan(t), "formats": []string{"svg", "dot"}}

	resp := do(t, http.MethodPost, srv.URL+"/v1/route", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decode[routeResponse](t, resp)
	if got.Layout.Cell != "inv" || got.Layout.Stats.Vias != 4 {
		t.Errorf("layout = %s with %d vias", got.Layout.Cell, got.Layout.Stats.Vias)
	}
	if !strings.HasPrefix(got.Artifacts["svg"], "<svg") || !strings.HasPrefix(got.Artifacts["dot"], "graph") {
		t.Error("artifacts missing")
	}
	if got.Cache.Route || got.LayoutID != "" {
		t.Errorf("first request: cache %+v, id %q", got.Cache, got.LayoutID)
	}

	again := decode[routeResponse](t, do(t, http.MethodPost, srv.URL+"/v1/route", body))
	if !again.Cache.Route || !again.Cache.Render {
		t.Errorf("second request should be cached: %+v", again.Cache)
	}
	if again.PlanHash != got.PlanHash {
		t.Error("plan hash changed")
	}
}

func TestRouteErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	tests := []struct {
		name   string
		body   any
		status int
		code   errors.Code
	}{
		{"malformed", "{", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", map[string]any{"plan": "x", "bogus": 1}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"empty plan", map[string]any{}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad format", map[string]any{"plan": inverterPlan(t), "formats": []string{"gds"}}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"invalid plan", map[string]any{"plan": `technology = "mocmos"`}, http.StatusUnprocessableEntity, errors.ErrCodeInvalidPlan},
		{"unknown technology", map[string]any{"plan": inverterPlan(t), "technology": "nope"}, http.StatusNotFound, errors.ErrCodeTechnologyNotFound},
		{"archive without store", map[string]any{"plan": inverterPlan(t), "archive": true}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+"/v1/route", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if e := decode[errorResponse](t, resp); e.Error.Code != string(tt.code) {
				t.Errorf("code = %s, want %s (%s)", e.Error.Code, tt.code, e.Error.Message)
			}
		})
	}
}

func TestLayouts(t *testing.T) {
	store := storage.NewMemoryStore()
	srv := newTestServer(t, store)

	resp := do(t, http.MethodPost, srv.URL+"/v1/route", map[string]any{
		"plan": inverterPlan(t), "formats": []string{"json"}, "archive": true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	created := decode[routeResponse](t, resp)
	if !storage.ValidID(created.LayoutID) {
		t.Fatalf("layout id = %q", created.LayoutID)
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/layouts/"+created.LayoutID {
		t.Errorf("Location = %q", loc)
	}

	list := decode[[]storage.Summary](t, do(t, http.MethodGet, srv.URL+"/v1/layouts", nil))
	if len(list) != 1 || list[0].ID != created.LayoutID || list[0].Cell != "inv" {
		t.Errorf("list = %+v", list)
	}

	rec := decode[storage.Record](t, do(t, http.MethodGet, srv.URL+"/v1/layouts/"+created.LayoutID, nil))
	if rec.Layout.ID != created.LayoutID || rec.Layout.Stats.Vias != 4 {
		t.Errorf("record = %s, %+v", rec.ID, rec.Layout.Stats)
	}

	resp = do(t, http.MethodGet, srv.URL+"/v1/layouts/"+created.LayoutID+"?format=svg&scale=2&labels=true", nil)
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	var svg bytes.Buffer
	_, _ = svg.ReadFrom(resp.Body)
	if !strings.Contains(svg.String(), ">vdd<") {
		t.Error("labelled svg missing export label")
	}

	for _, q := range []string{"?format=gds", "?format=svg&scale=x"} {
		if resp := do(t, http.MethodGet, srv.URL+"/v1/layouts/"+created.LayoutID+q, nil); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d", q, resp.StatusCode)
		}
	}
	if resp := do(t, http.MethodGet, srv.URL+"/v1/layouts?limit=-1", nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", resp.StatusCode)
	}

	if resp := do(t, http.MethodDelete, srv.URL+"/v1/layouts/"+created.LayoutID, nil); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, srv.URL+"/v1/layouts/"+created.LayoutID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleted layout status = %d", resp.StatusCode)
	}
	if e := decode[errorResponse](t, resp); e.Error.Code != string(errors.ErrCodeLayoutNotFound) {
		t.Errorf("code = %s", e.Error.Code)
	}
}

func TestLayoutsWithoutStore(t *testing.T) {
	srv := newTestServer(t, nil)
	if resp := do(t, http.MethodGet, srv.URL+"/v1/layouts", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestNotFoundAndMethod(t *testing.T) {
	srv := newTestServer(t, nil)
	if resp := do(t, http.MethodGet, srv.URL+"/v2/nothing", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
	resp := do(t, http.MethodPut, srv.URL+"/v1/route", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeInvalidPlan, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeLayoutNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeUnsupported, "x"), http.StatusUnsupportedMediaType},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusCode(tt.err); got != tt.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

type httpRecorder struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *httpRecorder) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	h.statuses = append(h.statuses, status)
	h.mu.Unlock()
}

func TestHTTPHooks(t *testing.T) {
	rec := &httpRecorder{}
	observability.SetHTTPHooks(rec)
	defer observability.Reset()

	srv := newTestServer(t, nil)
	do(t, http.MethodGet, srv.URL+"/healthz", nil)
	do(t, http.MethodGet, srv.URL+"/v1/technologies/nope", nil)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.statuses) != 2 || rec.statuses[0] != 200 || rec.statuses[1] != 404 {
		t.Errorf("statuses = %v", rec.statuses)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(Config{})
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
