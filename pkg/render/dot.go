package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// Fill colors for graph nodes without a layer.
const (
	exportFill = "#ffffcc"
	viaFill    = "#555555"
	pinFill    = "#999999"
)

// ToDOT writes a layout's connectivity as an undirected Graphviz graph.
// Instances are nodes pinned at their layout position (neato's "x,y!"
// form), wires are edges colored by layer, and each export is a separate
// node tied to its pin.
// Wires whose ends sit on one instance are dropped.
func ToDOT(l Layout) string {
	d := dotWriter{}
	d.line("graph %q {", l.Cell)
	d.line(`  layout=neato; overlap=false; bgcolor="transparent";`)
	d.line("  node [fontsize=10, style=filled, fillcolor=white];")

	for _, inst := range l.Instances {
		d.line("  %q [%s, pos=\"%g,%g!\"];", inst.Name, nodeAttrs(inst), inst.X, inst.Y)
	}
	for _, e := range l.Exports {
		id := "export:" + e.Name
		d.line("  %q [label=%q, shape=cds, fillcolor=%q];", id, e.Name+" ("+e.Role+")", exportFill)
		d.line("  %q -- %q [style=dotted];", id, e.Instance)
	}
	for _, w := range l.Wires {
		if w.HeadInst != w.TailInst {
			d.line("  %q -- %q [label=%q, color=%q, penwidth=2];", w.HeadInst, w.TailInst, w.Layer, LayerColor(w.Layer))
		}
	}
	d.line("}")
	return d.String()
}

type dotWriter struct{ bytes.Buffer }

func (d *dotWriter) line(format string, args ...any) {
	fmt.Fprintf(d, format, args...)
	d.WriteByte('\n')
}

// nodeAttrs styles devices as labelled boxes, vias as squares in their top
// layer's color and pins as dots in their layer's color.
func nodeAttrs(inst Instance) string {
	switch inst.Kind {
	case "device":
		return fmt.Sprintf("label=%q, shape=box", inst.Name)
	case "via":
		fill := viaFill
		if n := len(inst.Layers); n > 0 {
			fill = LayerColor(inst.Layers[n-1])
		}
		return fmt.Sprintf(`label="", shape=square, width=0.15, fillcolor=%q`, fill)
	}
	fill := pinFill
	if len(inst.Layers) > 0 {
		fill = LayerColor(inst.Layers[0])
	}
	return fmt.Sprintf(`label="", shape=circle, width=0.1, fillcolor=%q`, fill)
}

// RenderGraphSVG lays out dot with the embedded Graphviz and returns SVG
// sized in pixels instead of points.
func RenderGraphSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var out bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &out); err != nil {
		return nil, fmt.Errorf("render graph: %w", err)
	}
	return normalizeViewBox(out.Bytes()), nil
}

var (
	svgOpenRe = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's opening svg tag, which carries point
// units and a translated origin, with one whose viewBox starts at 0,0 and
// whose size matches it. Input without a usable viewBox is returned as is.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, errW := strconv.ParseFloat(string(m[3]), 64)
	h, errH := strconv.ParseFloat(string(m[4]), 64)
	if errW != nil || errH != nil || w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgOpenRe.ReplaceAll(svg, []byte(tag))
}
