package route

import (
	"cmp"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellgen/pkg/db"
	"github.com/matzehuels/cellgen/pkg/errors"
	"github.com/matzehuels/cellgen/pkg/geom"
	"github.com/matzehuels/cellgen/pkg/observability"
	"github.com/matzehuels/cellgen/pkg/tech"
)

// Axis is the direction a track runs in.
type Axis int

const (
	// Horizontal tracks run along x at a fixed y.
	Horizontal Axis = iota
	// Vertical tracks run along y at a fixed x.
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ParseAxis parses "horizontal"/"h" or "vertical"/"v".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "horizontal", "h", "":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidArgument, "invalid track axis %q", s)
}

// along returns the coordinate of p along the axis.
func (a Axis) along(p geom.Point) float64 {
	if a == Vertical {
		return p.Y
	}
	return p.X
}

// perp returns the coordinate of p across the axis.
func (a Axis) perp(p geom.Point) float64 {
	if a == Vertical {
		return p.X
	}
	return p.Y
}

// point builds the point with the given coordinates along and across a.
func (a Axis) point(along, perp float64) geom.Point {
	if a == Vertical {
		return geom.Pt(perp, along)
	}
	return geom.Pt(along, perp)
}

// Connection describes the result of one Connect call.
type Connection struct {
	Port   *db.Port
	Stack  *ViaStack
	Reused bool
	// Jog is the intermediate pin, nil without a wire offset.
	Jog *db.Instance
	// Wires run from the stack, through the jog if any, to the port.
	Wires []*db.Arc
	// Spine joins a newly built stack to its nearest neighbour.
	Spine *db.Arc
}

// Option configures a Track.
type Option func(*Track)

// WithCenter fixes the track's perpendicular coordinate up front instead of
// taking it from the first connected port.
func WithCenter(c float64) Option {
	return func(t *Track) {
		t.center = geom.Round(c)
		t.hasCenter = true
	}
}

// WithName names the track in logs and hook events.
func WithName(name string) Option {
	return func(t *Track) { t.name = name }
}

// WithLogger sets the logger. Stack creation and reuse are logged at debug
// level.
func WithLogger(l *log.Logger) Option {
	return func(t *Track) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithHooks sets the routing hooks. The default is observability.Route().
func WithHooks(h observability.RouteHooks) Option {
	return func(t *Track) {
		if h != nil {
			t.hooks = h
		}
	}
}

// Track is a routing line on one layer.
type Track struct {
	name      string
	axis      Axis
	cell      *db.Cell
	layers    LayerModel
	builder   *Builder
	layer     *tech.Layer
	width     float64
	center    float64
	hasCenter bool
	index     stackIndex
	logger    *log.Logger
	hooks     observability.RouteHooks
}

// NewHorizontal creates a track running along x on layer. A width of 0
// selects the layer's default width.
func NewHorizontal(cell *db.Cell, layers LayerModel, layer *tech.Layer, width float64, opts ...Option) (*Track, error) {
	return newTrack(Horizontal, cell, layers, layer, width, opts)
}

// NewVertical creates a track running along y on layer.
func NewVertical(cell *db.Cell, layers LayerModel, layer *tech.Layer, width float64, opts ...Option) (*Track, error) {
	return newTrack(Vertical, cell, layers, layer, width, opts)
}

// New creates a track along axis.
func New(axis Axis, cell *db.Cell, layers LayerModel, layer *tech.Layer, width float64, opts ...Option) (*Track, error) {
	return newTrack(axis, cell, layers, layer, width, opts)
}

func newTrack(axis Axis, cell *db.Cell, layers LayerModel, layer *tech.Layer, width float64, opts []Option) (*Track, error) {
	if cell == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "track needs a cell")
	}
	if layers == nil {
		layers = cell.Technology()
	}
	if layer == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "track needs a layer")
	}
	if _, err := layers.HeightOf(layer); err != nil {
		return nil, configError(err, "track layer %s", layer.Name)
	}
	if width < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "track width %g", width)
	}
	if width == 0 {
		width = layer.DefaultWidth
	}
	t := &Track{
		name:    layer.Name,
		axis:    axis,
		cell:    cell,
		layers:  layers,
		builder: NewBuilder(cell, layers),
		layer:   layer,
		width:   geom.Round(width),
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		hooks:   observability.Route(),
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Name returns the track name.
func (t *Track) Name() string { return t.name }

// Axis returns the direction of the track.
func (t *Track) Axis() Axis { return t.axis }

// Layer returns the track layer.
func (t *Track) Layer() *tech.Layer { return t.layer }

// Width returns the track wire width.
func (t *Track) Width() float64 { return t.width }

// Center returns the perpendicular coordinate and whether it has been set.
func (t *Track) Center() (float64, bool) { return t.center, t.hasCenter }

// Stacks returns the stacks on the track ordered by position.
func (t *Track) Stacks() []*ViaStack { return t.index.stacks() }

// ConnectPort connects port with no via or wire offset.
func (t *Track) ConnectPort(port *db.Port) (*Connection, error) {
	return t.Connect(port, 0, 0)
}

// Connect wires port onto the track.
//
// The target point lies on the track line, shifted by viaOffset along the
// track from the port's own position. A stack already registered on the
// port's layer within reuse distance of the target is reused; otherwise a
// new stack from the track layer to the port's layer is built there. A
// non-zero wireOffset inserts a jog pin on the port layer at the port's
// position along the track, wireOffset away from the line.
func (t *Track) Connect(port *db.Port, viaOffset, wireOffset float64) (*Connection, error) {
	if port == nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, db.ErrNilPort, "track %s", t.name)
	}
	if port.Instance().Cell() != t.cell {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, db.ErrForeignPort, "track %s: %v", t.name, port)
	}

	pc := port.Center()
	if !t.hasCenter {
		t.center, t.hasCenter = t.axis.perp(pc), true
		t.logger.Debug("track center set", "track", t.name, "center", t.center)
	}

	portLayer, err := t.layers.ClosestLayer(port.Layers(), t.layer)
	if err != nil {
		return nil, configError(err, "port %v", port)
	}

	along := geom.Round(t.axis.along(pc) + viaOffset)
	conn := &Connection{Port: port}

	if e, dist := t.index.reusable(along, portLayer); e != nil {
		conn.Stack, conn.Reused = e.stack, true
		t.logger.Debug("reused via stack", "track", t.name, "layer", portLayer.Name, "at", e.stack.At(), "distance", dist)
		t.hooks.OnStackReused(t.name, portLayer.Name, dist)
	} else {
		s, err := t.build(along, portLayer)
		if err != nil {
			return nil, err
		}
		conn.Stack = s
		neighbour := t.index.nearest(along)
		t.index.insert(along, portLayer, t.tolerance(s, portLayer), s)
		if neighbour != nil {
			spine, err := t.cell.NewArc(t.layer, t.width, neighbour.stack.Port1(), s.Port1())
			if err != nil {
				return nil, err
			}
			conn.Spine = spine
		}
	}

	width := port.WidestWire()
	from := conn.Stack.Port2()
	if wireOffset != 0 {
		jp := t.axis.point(t.axis.along(pc), t.center+wireOffset)
		jog, err := t.cell.NewPin(portLayer, jp.X, jp.Y)
		if err != nil {
			return nil, err
		}
		conn.Jog = jog
		w, err := t.cell.NewArc(portLayer, width, from, jog.OnlyPort())
		if err != nil {
			return nil, err
		}
		conn.Wires = append(conn.Wires, w)
		from = jog.OnlyPort()
		t.hooks.OnJog(t.name, wireOffset)
	}
	w, err := t.cell.NewArc(portLayer, width, from, port)
	if err != nil {
		return nil, err
	}
	conn.Wires = append(conn.Wires, w)
	return conn, nil
}

// build places a new stack from the track layer to layer at along.
func (t *Track) build(along float64, layer *tech.Layer) (*ViaStack, error) {
	p := t.axis.point(along, t.center)
	var w, h float64
	if t.axis == Horizontal {
		h = t.width
	} else {
		w = t.width
	}
	s, err := t.builder.BuildStack(t.layer, layer, p.X, p.Y, w, h)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("built via stack", "track", t.name, "from", t.layer.Name, "to", layer.Name, "vias", len(s.Vias()), "at", p)
	t.hooks.OnStackBuilt(t.name, t.layer.Name, layer.Name, len(s.Vias()))
	return s, nil
}

// tolerance is the largest via pitch along the track within the stack. A
// pin uses the layer's wire pitch.
func (t *Track) tolerance(s *ViaStack, layer *tech.Layer) float64 {
	vias := s.Vias()
	if len(vias) == 0 {
		return layer.DefaultWidth + layer.Spacing
	}
	tol := 0.0
	for _, inst := range vias {
		tol = max(tol, inst.Proto.Via.Pitch(t.axis == Horizontal))
	}
	return tol
}

// ConnectAll connects ports in order of their position along the track.
// It stops at the first error and returns the connections made so far.
func (t *Track) ConnectAll(ports []*db.Port) ([]*Connection, error) {
	for _, p := range ports {
		if p == nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidArgument, db.ErrNilPort, "track %s", t.name)
		}
	}
	sorted := slices.Clone(ports)
	slices.SortStableFunc(sorted, func(a, b *db.Port) int {
		return cmp.Compare(t.axis.along(a.Center()), t.axis.along(b.Center()))
	})
	conns := make([]*Connection, 0, len(sorted))
	for _, p := range sorted {
		c, err := t.ConnectPort(p)
		if err != nil {
			return conns, err
		}
		conns = append(conns, c)
	}
	return conns, nil
}

// ConnectNamed connects the port called name on every instance that has one.
func (t *Track) ConnectNamed(insts []*db.Instance, name string) ([]*Connection, error) {
	var ports []*db.Port
	for _, inst := range insts {
		if p := inst.Port(name); p != nil {
			ports = append(ports, p)
		}
	}
	return t.ConnectAll(ports)
}
