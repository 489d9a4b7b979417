package render

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"
)

var metalColors = []string{
	"#4a7bd0", // metal-1
	"#b04ad0",
	"#d0a04a",
	"#4ab07a",
	"#d04a8c",
	"#6a6a6a",
	"#2aa0b0",
	"#a0b02a",
	"#8c5a3c",
}

const polyColor = "#d04040"

// LayerColor returns the fill color used for a layer.
func LayerColor(layer string) string {
	if strings.HasPrefix(layer, "poly") {
		return polyColor
	}
	if n, ok := strings.CutPrefix(layer, "metal-"); ok {
		if i, err := strconv.Atoi(n); err == nil && i > 0 {
			return metalColors[(i-1)%len(metalColors)]
		}
	}
	return "#999999"
}

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	scale  float64
	margin float64
	labels bool
}

// WithScale sets pixels per lambda. The default is 10.
func WithScale(s float64) SVGOption {
	return func(r *svgRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithMargin sets the margin around the cell, in lambda.
func WithMargin(m float64) SVGOption {
	return func(r *svgRenderer) {
		if m >= 0 {
			r.margin = m
		}
	}
}

// WithLabels draws export names and device names.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// RenderSVG draws the geometry of l. Devices are outlined, vias drawn as
// crossed squares on their upper layer, wires as strokes of their width.
func RenderSVG(l Layout, opts ...SVGOption) []byte {
	r := svgRenderer{scale: 10, margin: 5}
	for _, opt := range opts {
		opt(&r)
	}

	left := l.Bounds.Left - r.margin
	top := l.Bounds.Top + r.margin
	w := l.Bounds.Width() + 2*r.margin
	h := l.Bounds.Height() + 2*r.margin

	// Cell coordinates have y up; SVG has y down.
	x := func(v float64) float64 { return v - left }
	y := func(v float64) float64 { return top - v }

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		w, h, w*r.scale, h*r.scale)
	fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(l.Cell))
	buf.WriteString(`  <rect width="100%" height="100%" fill="white"/>` + "\n")

	for _, inst := range l.Instances {
		if inst.Kind != "device" {
			continue
		}
		fmt.Fprintf(&buf, `  <rect class="device" id="%s" x="%.3f" y="%.3f" width="%.3f" height="%.3f" fill="#f2f2f2" stroke="#333" stroke-width="0.3"/>`+"\n",
			html.EscapeString(inst.Name), x(inst.X-inst.Width/2), y(inst.Y+inst.Height/2), inst.Width, inst.Height)
	}

	for _, wr := range l.Wires {
		if wr.X1 == wr.X2 && wr.Y1 == wr.Y2 {
			continue
		}
		fmt.Fprintf(&buf, `  <line class="wire" data-layer="%s" x1="%.3f" y1="%.3f" x2="%.3f" y2="%.3f" stroke="%s" stroke-width="%.3f" stroke-linecap="square" stroke-opacity="0.6"/>`+"\n",
			wr.Layer, x(wr.X1), y(wr.Y1), x(wr.X2), y(wr.Y2), LayerColor(wr.Layer), wr.Width)
	}

	for _, inst := range l.Instances {
		switch inst.Kind {
		case "via":
			renderVia(&buf, inst, x(inst.X), y(inst.Y))
		case "pin":
			if len(inst.Layers) == 0 {
				continue
			}
			fmt.Fprintf(&buf, `  <rect class="pin" x="%.3f" y="%.3f" width="%.3f" height="%.3f" fill="%s" fill-opacity="0.8"/>`+"\n",
				x(inst.X-inst.Width/2), y(inst.Y+inst.Height/2), inst.Width, inst.Height, LayerColor(inst.Layers[0]))
		}
	}

	if r.labels {
		for _, inst := range l.Instances {
			if inst.Kind == "device" {
				renderLabel(&buf, inst.Name, x(inst.X), y(inst.Y), "#333")
			}
		}
		for _, p := range l.Exports {
			renderLabel(&buf, p.Name, x(p.X), y(p.Y), "black")
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderVia(buf *bytes.Buffer, inst Instance, cx, cy float64) {
	color := "#555"
	if n := len(inst.Layers); n > 0 {
		color = LayerColor(inst.Layers[n-1])
	}
	x0, y0 := cx-inst.Width/2, cy-inst.Height/2
	x1, y1 := cx+inst.Width/2, cy+inst.Height/2
	fmt.Fprintf(buf, `  <g class="via" id="%s">`+"\n", html.EscapeString(inst.Name))
	fmt.Fprintf(buf, `    <rect x="%.3f" y="%.3f" width="%.3f" height="%.3f" fill="%s" fill-opacity="0.5" stroke="black" stroke-width="0.2"/>`+"\n",
		x0, y0, inst.Width, inst.Height, color)
	fmt.Fprintf(buf, `    <path d="M%.3f %.3fL%.3f %.3fM%.3f %.3fL%.3f %.3f" stroke="black" stroke-width="0.2"/>`+"\n",
		x0, y0, x1, y1, x0, y1, x1, y0)
	buf.WriteString("  </g>\n")
}

func renderLabel(buf *bytes.Buffer, text string, x, y float64, color string) {
	fmt.Fprintf(buf, `  <text x="%.3f" y="%.3f" font-family="monospace" font-size="2" text-anchor="middle" dominant-baseline="middle" fill="%s">%s</text>`+"\n",
		x, y, color, html.EscapeString(text))
}
