package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cellgen/pkg/buildinfo"
	"github.com/matzehuels/cellgen/pkg/pipeline"
	"github.com/matzehuels/cellgen/pkg/render"
	"github.com/matzehuels/cellgen/pkg/storage"
	"github.com/matzehuels/cellgen/pkg/tech"
)

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Current()})
}

// =============================================================================
// Technologies
// =============================================================================

type techSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Metals      int      `json:"metals"`
	Layers      []string `json:"layers"`
}

type layerView struct {
	Name        string  `json:"name"`
	Height      int     `json:"height"`
	Width       float64 `json:"width"`
	Spacing     float64 `json:"spacing"`
	RailSpacing float64 `json:"rail_spacing"`
}

type viaView struct {
	Name    string  `json:"name"`
	Lower   string  `json:"lower"`
	Upper   string  `json:"upper"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Spacing float64 `json:"spacing"`
}

type techDetail struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Metals      int         `json:"metals"`
	Reserved    string      `json:"reserved,omitempty"`
	Layers      []layerView `json:"layers"`
	Vias        []viaView   `json:"vias"`
}

func summarize(t *tech.Technology) techSummary {
	s := techSummary{Name: t.Name(), Description: t.Description(), Metals: t.NumMetals()}
	for _, l := range t.Layers() {
		s.Layers = append(s.Layers, l.Name)
	}
	return s
}

func (s *Server) handleListTechnologies(w http.ResponseWriter, r *http.Request) {
	reg := s.runner.Registry
	out := make([]techSummary, 0)
	for _, name := range reg.Names() {
		t, err := reg.Lookup(name)
		if err != nil {
			writeError(w, err)
			return
		}
		out = append(out, summarize(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTechnology(w http.ResponseWriter, r *http.Request) {
	t, err := s.runner.Registry.Lookup(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	d := techDetail{
		Name:        t.Name(),
		Description: t.Description(),
		Metals:      t.NumMetals(),
		Reserved:    t.Process().Reserved,
	}
	for _, l := range t.Layers() {
		d.Layers = append(d.Layers, layerView{
			Name: l.Name, Height: l.Height, Width: l.DefaultWidth,
			Spacing: l.Spacing, RailSpacing: l.RailSpacing,
		})
	}
	for _, v := range t.Vias() {
		d.Vias = append(d.Vias, viaView{
			Name: v.Name, Lower: v.Lower.Name, Upper: v.Upper.Name,
			Width: v.MinWidth, Height: v.MinHeight, Spacing: v.Spacing,
		})
	}
	writeJSON(w, http.StatusOK, d)
}

// =============================================================================
// Route
// =============================================================================

type routeResponse struct {
	LayoutID  string            `json:"layout_id,omitempty"`
	PlanHash  string            `json:"plan_hash"`
	Layout    render.Layout     `json:"layout"`
	Artifacts map[string]string `json:"artifacts"`
	Cache     cacheView         `json:"cache"`
	Timing    timingView        `json:"timing_ms"`
}

type cacheView struct {
	Route  bool `json:"route"`
	Render bool `json:"render"`
}

type timingView struct {
	Plan   float64 `json:"plan"`
	Route  float64 `json:"route"`
	Render float64 `json:"render"`
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		writeError(w, errBadRequest(err, "decode request"))
		return
	}
	if opts.Archive && s.store == nil {
		writeError(w, errBadRequest(nil, "layout archive is not configured"))
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := routeResponse{
		LayoutID:  res.LayoutID,
		PlanHash:  res.PlanHash,
		Layout:    res.Layout,
		Artifacts: make(map[string]string, len(res.Artifacts)),
		Cache:     cacheView{Route: res.CacheInfo.RouteHit, Render: res.CacheInfo.RenderHit},
		Timing: timingView{
			Plan:   ms(res.Stats.PlanTime.Seconds()),
			Route:  ms(res.Stats.RouteTime.Seconds()),
			Render: ms(res.Stats.RenderTime.Seconds()),
		},
	}
	for f, data := range res.Artifacts {
		resp.Artifacts[f] = string(data)
	}
	status := http.StatusOK
	if res.LayoutID != "" {
		status = http.StatusCreated
		w.Header().Set("Location", "/v1/layouts/"+res.LayoutID)
	}
	writeJSON(w, status, resp)
}

func ms(seconds float64) float64 { return float64(int64(seconds*1e6)) / 1e3 }

// =============================================================================
// Layouts
// =============================================================================

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeError(w, errNotFound("layout archive is not configured"))
		return false
	}
	return true
}

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errBadRequest(nil, "invalid limit %q", v))
			return
		}
		limit = n
	}
	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []storage.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

var contentTypes = map[string]string{
	render.FormatJSON:  "application/json",
	render.FormatSVG:   "image/svg+xml",
	render.FormatDOT:   "text/vnd.graphviz; charset=utf-8",
	render.FormatGraph: "image/svg+xml",
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		writeJSON(w, http.StatusOK, rec)
		return
	}
	opts := pipeline.Options{Formats: []string{format}, Labels: q.Get("labels") == "true"}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, errBadRequest(err, "invalid scale"))
			return
		}
		opts.Scale = scale
	}
	artifacts, err := s.runner.RenderLayout(r.Context(), rec.Layout, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
