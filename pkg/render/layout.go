package render

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/matzehuels/cellgen/pkg/db"
	"github.com/matzehuels/cellgen/pkg/geom"
	"github.com/matzehuels/cellgen/pkg/plan"
	"github.com/matzehuels/cellgen/pkg/tech"
)

// Layout is the serialized form of a routed cell.
type Layout struct {
	ID         string     `json:"id,omitempty" bson:"_id,omitempty"`
	Technology string     `json:"technology" bson:"technology"`
	Cell       string     `json:"cell" bson:"cell"`
	Bounds     Rect       `json:"bounds" bson:"bounds"`
	Instances  []Instance `json:"instances" bson:"instances"`
	Wires      []Wire     `json:"wires,omitempty" bson:"wires,omitempty"`
	Exports    []Pin      `json:"exports,omitempty" bson:"exports,omitempty"`
	Tracks     []Track    `json:"tracks,omitempty" bson:"tracks,omitempty"`
	Stats      Stats      `json:"stats" bson:"stats"`
}

// Rect is a serialized rectangle.
type Rect struct {
	Left   float64 `json:"left" bson:"left"`
	Right  float64 `json:"right" bson:"right"`
	Bottom float64 `json:"bottom" bson:"bottom"`
	Top    float64 `json:"top" bson:"top"`
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Top - r.Bottom }

// Instance is a placed device, via or pin. Width and Height are the
// footprint after orientation.
type Instance struct {
	Name   string   `json:"name" bson:"name"`
	Proto  string   `json:"proto" bson:"proto"`
	Kind   string   `json:"kind" bson:"kind"`
	X      float64  `json:"x" bson:"x"`
	Y      float64  `json:"y" bson:"y"`
	Width  float64  `json:"width" bson:"width"`
	Height float64  `json:"height" bson:"height"`
	Orient string   `json:"orient,omitempty" bson:"orient,omitempty"`
	Layers []string `json:"layers" bson:"layers"`
}

// Wire is a serialized arc.
type Wire struct {
	ID       int     `json:"id" bson:"id"`
	Layer    string  `json:"layer" bson:"layer"`
	Width    float64 `json:"width" bson:"width"`
	X1       float64 `json:"x1" bson:"x1"`
	Y1       float64 `json:"y1" bson:"y1"`
	X2       float64 `json:"x2" bson:"x2"`
	Y2       float64 `json:"y2" bson:"y2"`
	HeadInst string  `json:"head_inst" bson:"head_inst"`
	HeadPort string  `json:"head_port" bson:"head_port"`
	TailInst string  `json:"tail_inst" bson:"tail_inst"`
	TailPort string  `json:"tail_port" bson:"tail_port"`
}

// Pin is a serialized export.
type Pin struct {
	Name     string  `json:"name" bson:"name"`
	Role     string  `json:"role" bson:"role"`
	Layer    string  `json:"layer" bson:"layer"`
	Instance string  `json:"instance" bson:"instance"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
}

// Track is the per-track routing summary.
type Track struct {
	Name        string  `json:"name" bson:"name"`
	Axis        string  `json:"axis" bson:"axis"`
	Layer       string  `json:"layer" bson:"layer"`
	Center      float64 `json:"center" bson:"center"`
	Connections int     `json:"connections" bson:"connections"`
	Stacks      int     `json:"stacks" bson:"stacks"`
	Vias        int     `json:"vias" bson:"vias"`
	Reused      int     `json:"reused" bson:"reused"`
	Jogs        int     `json:"jogs" bson:"jogs"`
	Wires       int     `json:"wires" bson:"wires"`
	Spines      int     `json:"spines" bson:"spines"`
}

// Stats counts the objects in a layout.
type Stats struct {
	Devices int `json:"devices" bson:"devices"`
	Vias    int `json:"vias" bson:"vias"`
	Pins    int `json:"pins" bson:"pins"`
	Wires   int `json:"wires" bson:"wires"`
	Exports int `json:"exports" bson:"exports"`
}

// FromCell flattens cell and the track summaries into a Layout.
func FromCell(cell *db.Cell, tracks []plan.TrackResult) Layout {
	l := Layout{
		Technology: cell.Technology().Name(),
		Cell:       cell.Name(),
		Bounds:     rect(cell.Bounds()),
	}
	for _, inst := range cell.Instances() {
		b := inst.Bounds()
		l.Instances = append(l.Instances, Instance{
			Name:   inst.Name,
			Proto:  inst.Proto.Name,
			Kind:   inst.Proto.Kind.String(),
			X:      inst.Center.X,
			Y:      inst.Center.Y,
			Width:  b.Width(),
			Height: b.Height(),
			Orient: orient(inst.Orient),
			Layers: layerNames(inst),
		})
		switch inst.Proto.Kind {
		case db.KindDevice:
			l.Stats.Devices++
		case db.KindVia:
			l.Stats.Vias++
		case db.KindPin:
			l.Stats.Pins++
		}
	}
	for _, a := range cell.Arcs() {
		l.Wires = append(l.Wires, Wire{
			ID:       a.ID,
			Layer:    a.Layer.Name,
			Width:    a.Width,
			X1:       a.HeadPt.X,
			Y1:       a.HeadPt.Y,
			X2:       a.TailPt.X,
			Y2:       a.TailPt.Y,
			HeadInst: a.Head.Instance().Name,
			HeadPort: a.Head.Name(),
			TailInst: a.Tail.Instance().Name,
			TailPort: a.Tail.Name(),
		})
	}
	l.Stats.Wires = len(l.Wires)
	for _, e := range cell.Exports() {
		c := e.Port.Center()
		l.Exports = append(l.Exports, Pin{
			Name:     e.Name,
			Role:     e.Role.String(),
			Layer:    e.Port.Layers()[0].Name,
			Instance: e.Port.Instance().Name,
			X:        c.X,
			Y:        c.Y,
		})
	}
	l.Stats.Exports = len(l.Exports)
	for _, t := range tracks {
		l.Tracks = append(l.Tracks, Track(t))
	}
	return l
}

func rect(r geom.Rect) Rect {
	return Rect{Left: r.Left, Right: r.Right, Bottom: r.Bottom, Top: r.Top}
}

func orient(o geom.Orientation) string {
	if o == geom.R0 {
		return ""
	}
	return o.String()
}

func layerNames(inst *db.Instance) []string {
	var layers []*tech.Layer
	for _, p := range inst.Ports() {
		for _, l := range p.Layers() {
			if !slices.Contains(layers, l) {
				layers = append(layers, l)
			}
		}
	}
	slices.SortFunc(layers, func(a, b *tech.Layer) int { return a.Height - b.Height })
	names := make([]string, len(layers))
	for i, l := range layers {
		names[i] = l.Name
	}
	return names
}

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Cell == "" {
		return Layout{}, fmt.Errorf("layout has no cell name")
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
