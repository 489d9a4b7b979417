package plan

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellgen/pkg/db"
	"github.com/matzehuels/cellgen/pkg/errors"
	"github.com/matzehuels/cellgen/pkg/geom"
	"github.com/matzehuels/cellgen/pkg/observability"
	"github.com/matzehuels/cellgen/pkg/route"
	"github.com/matzehuels/cellgen/pkg/tech"
)

// Options configures plan execution.
type Options struct {
	Logger *log.Logger
	Hooks  observability.RouteHooks
}

// Result is the outcome of executing a plan.
type Result struct {
	Cell   *db.Cell
	Tracks []TrackResult
}

// TrackResult summarizes the connections made on one track.
type TrackResult struct {
	Name        string  `json:"name"`
	Axis        string  `json:"axis"`
	Layer       string  `json:"layer"`
	Center      float64 `json:"center"`
	Connections int     `json:"connections"`
	Stacks      int     `json:"stacks"`
	Vias        int     `json:"vias"`
	Reused      int     `json:"reused"`
	Jogs        int     `json:"jogs"`
	Wires       int     `json:"wires"`
	Spines      int     `json:"spines"`
}

// Execute builds p's cell in lib and routes its tracks. The library's
// technology must be the one the plan names. On error the partially built
// cell stays in the library and should be discarded.
func Execute(ctx context.Context, lib *db.Library, p *Plan, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	t := lib.Technology()
	if t.Name() != p.Technology {
		return nil, errors.New(errors.ErrCodeInvalidPlan, "plan wants technology %q, library has %q", p.Technology, t.Name())
	}
	cell, err := lib.NewCell(p.Cell)
	if err != nil {
		return nil, err
	}

	for _, d := range p.Devices {
		if err := placeDevice(cell, t, d); err != nil {
			return nil, err
		}
	}
	for _, e := range p.Exports {
		if err := placeExport(cell, t, e); err != nil {
			return nil, err
		}
	}

	res := &Result{Cell: cell}
	for i, tp := range p.Tracks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tr, err := runTrack(cell, t, tp, i, opts)
		if err != nil {
			return nil, err
		}
		opts.Logger.Debug("routed track", "track", tr.Name, "stacks", tr.Stacks, "reused", tr.Reused, "jogs", tr.Jogs)
		res.Tracks = append(res.Tracks, tr)
	}
	return res, nil
}

func layers(t *tech.Technology, names []string) ([]*tech.Layer, error) {
	out := make([]*tech.Layer, 0, len(names))
	for _, n := range names {
		l, err := t.Layer(n)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPlan, err, "layer %q", n)
		}
		out = append(out, l)
	}
	return out, nil
}

func placeDevice(cell *db.Cell, t *tech.Technology, d Device) error {
	orient, err := geom.ParseOrientation(d.Orientation)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPlan, err, "device %q", d.Name)
	}
	specs := make([]db.PortSpec, 0, len(d.Ports))
	for _, p := range d.Ports {
		ls, err := layers(t, p.Layers)
		if err != nil {
			return fmt.Errorf("device %q port %q: %w", d.Name, p.Name, err)
		}
		specs = append(specs, db.PortSpec{
			Name:   p.Name,
			Layers: ls,
			Offset: geom.Pt(p.X, p.Y),
			Width:  p.Width,
			Height: p.Height,
		})
	}
	proto, err := cell.Library().NewDeviceProto(cell.Name()+"."+d.Name, d.Width, d.Height, specs)
	if err != nil {
		return fmt.Errorf("device %q: %w", d.Name, err)
	}
	if _, err := cell.NewNamedInstance(d.Name, proto, d.X, d.Y, 0, 0, orient); err != nil {
		return fmt.Errorf("device %q: %w", d.Name, err)
	}
	return nil
}

func placeExport(cell *db.Cell, t *tech.Technology, e Export) error {
	role, err := db.ParseRole(e.Role)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPlan, err, "export %q", e.Name)
	}
	ls, err := layers(t, []string{e.Layer})
	if err != nil {
		return fmt.Errorf("export %q: %w", e.Name, err)
	}
	if _, err := cell.NewExport(e.Name, role, ls[0], e.Width, e.X, e.Y); err != nil {
		return fmt.Errorf("export %q: %w", e.Name, err)
	}
	return nil
}

func runTrack(cell *db.Cell, t *tech.Technology, tp Track, i int, opts Options) (TrackResult, error) {
	name := tp.Name
	if name == "" {
		name = fmt.Sprintf("track%d", i)
	}
	axis, err := route.ParseAxis(tp.Axis)
	if err != nil {
		return TrackResult{}, errors.Wrap(errors.ErrCodeInvalidPlan, err, "track %s", name)
	}
	ls, err := layers(t, []string{tp.Layer})
	if err != nil {
		return TrackResult{}, fmt.Errorf("track %s: %w", name, err)
	}
	ropts := []route.Option{route.WithName(name), route.WithLogger(opts.Logger), route.WithHooks(opts.Hooks)}
	if tp.Center != nil {
		ropts = append(ropts, route.WithCenter(*tp.Center))
	}
	tr, err := route.New(axis, cell, t, ls[0], tp.Width, ropts...)
	if err != nil {
		return TrackResult{}, fmt.Errorf("track %s: %w", name, err)
	}

	res := TrackResult{Name: name, Axis: axis.String(), Layer: ls[0].Name}
	for j, c := range tp.Connects {
		port, err := resolve(cell, c)
		if err != nil {
			return TrackResult{}, fmt.Errorf("track %s connect %d: %w", name, j, err)
		}
		conn, err := tr.Connect(port, c.ViaOffset, c.WireOffset)
		if err != nil {
			return TrackResult{}, fmt.Errorf("track %s connect %d (%v): %w", name, j, port, err)
		}
		res.Connections++
		if conn.Reused {
			res.Reused++
		} else {
			res.Stacks++
			res.Vias += len(conn.Stack.Vias())
		}
		if conn.Jog != nil {
			res.Jogs++
		}
		if conn.Spine != nil {
			res.Spines++
		}
		res.Wires += len(conn.Wires)
	}
	res.Center, _ = tr.Center()
	return res, nil
}

func resolve(cell *db.Cell, c Connect) (*db.Port, error) {
	if c.Export != "" {
		e, ok := cell.FindExport(c.Export)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidPlan, "unknown export %q", c.Export)
		}
		return e.Port, nil
	}
	inst, ok := cell.Instance(c.Instance)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidPlan, "unknown device %q", c.Instance)
	}
	p := inst.Port(c.Port)
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidPlan, "device %q has no port %q", c.Instance, c.Port)
	}
	return p, nil
}
