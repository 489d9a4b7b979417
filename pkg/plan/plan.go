package plan

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cellgen/pkg/errors"
)

// Plan is a declarative cell description.
type Plan struct {
	Technology string   `toml:"technology" json:"technology"`
	Cell       string   `toml:"cell" json:"cell"`
	Devices    []Device `toml:"device" json:"devices,omitempty"`
	Exports    []Export `toml:"export" json:"exports,omitempty"`
	Tracks     []Track  `toml:"track" json:"tracks,omitempty"`
}

// Device is a placed primitive with named ports.
type Device struct {
	Name        string  `toml:"name" json:"name"`
	Width       float64 `toml:"width" json:"width"`
	Height      float64 `toml:"height" json:"height"`
	X           float64 `toml:"x" json:"x"`
	Y           float64 `toml:"y" json:"y"`
	Orientation string  `toml:"orientation,omitempty" json:"orientation,omitempty"`
	Ports       []Port  `toml:"port" json:"ports,omitempty"`
}

// Port is a device port; X and Y are offsets from the device center.
type Port struct {
	Name   string   `toml:"name" json:"name"`
	Layers []string `toml:"layers" json:"layers"`
	X      float64  `toml:"x" json:"x"`
	Y      float64  `toml:"y" json:"y"`
	Width  float64  `toml:"width,omitempty" json:"width,omitempty"`
	Height float64  `toml:"height,omitempty" json:"height,omitempty"`
}

// Export is a named pin published by the cell.
type Export struct {
	Name  string  `toml:"name" json:"name"`
	Role  string  `toml:"role,omitempty" json:"role,omitempty"`
	Layer string  `toml:"layer" json:"layer"`
	Width float64 `toml:"width,omitempty" json:"width,omitempty"` // wire width hint
	X     float64 `toml:"x" json:"x"`
	Y     float64 `toml:"y" json:"y"`
}

// Track is a routing line and the ports connected onto it.
type Track struct {
	Name     string    `toml:"name" json:"name"`
	Axis     string    `toml:"axis" json:"axis"`
	Layer    string    `toml:"layer" json:"layer"`
	Width    float64   `toml:"width,omitempty" json:"width,omitempty"`
	Center   *float64  `toml:"center,omitempty" json:"center,omitempty"`
	Connects []Connect `toml:"connect" json:"connect,omitempty"`
}

// Connect names one port to connect: either Instance and Port, or Export.
type Connect struct {
	Instance   string  `toml:"instance,omitempty" json:"instance,omitempty"`
	Port       string  `toml:"port,omitempty" json:"port,omitempty"`
	Export     string  `toml:"export,omitempty" json:"export,omitempty"`
	ViaOffset  float64 `toml:"via_offset,omitempty" json:"via_offset,omitempty"`
	WireOffset float64 `toml:"wire_offset,omitempty" json:"wire_offset,omitempty"`
}

// Format is a plan encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// DetectFormat picks the format from a file extension, defaulting to TOML.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatTOML
}

// Parse decodes and validates a plan.
func Parse(data []byte, format Format) (*Plan, error) {
	var p Plan
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode plan JSON")
		}
	case FormatTOML, "":
		md, err := toml.Decode(string(data), &p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode plan TOML")
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidPlan, "unknown plan key %q", undec[0].String())
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "plan format %q", format)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads the plan at path, choosing the format by extension.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "plan %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read plan %s", path)
	}
	return Parse(data, DetectFormat(path))
}

// Encode writes p in the given format.
func (p *Plan) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(p, "", "  ")
	case FormatTOML, "":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(p); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "plan format %q", format)
}

// Validate checks names and cross references. Layer names are checked
// against the technology by Execute.
func (p *Plan) Validate() error {
	if p.Technology == "" {
		return errors.New(errors.ErrCodeInvalidPlan, "plan has no technology")
	}
	if err := errors.ValidateName("cell", p.Cell); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPlan, err, "cell")
	}

	devices := make(map[string]map[string]bool, len(p.Devices))
	for i, d := range p.Devices {
		if err := errors.ValidateName("device", d.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPlan, err, "device %d", i)
		}
		if _, dup := devices[d.Name]; dup {
			return errors.New(errors.ErrCodeInvalidPlan, "duplicate device %q", d.Name)
		}
		if d.Width < 0 || d.Height < 0 {
			return errors.New(errors.ErrCodeInvalidPlan, "device %q has negative size", d.Name)
		}
		ports := make(map[string]bool, len(d.Ports))
		for _, port := range d.Ports {
			if ports[port.Name] {
				return errors.New(errors.ErrCodeInvalidPlan, "device %q: duplicate port %q", d.Name, port.Name)
			}
			if len(port.Layers) == 0 {
				return errors.New(errors.ErrCodeInvalidPlan, "device %q port %q has no layers", d.Name, port.Name)
			}
			ports[port.Name] = true
		}
		devices[d.Name] = ports
	}

	exports := make(map[string]bool, len(p.Exports))
	for i, e := range p.Exports {
		if err := errors.ValidateName("export", e.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPlan, err, "export %d", i)
		}
		if exports[e.Name] {
			return errors.New(errors.ErrCodeInvalidPlan, "duplicate export %q", e.Name)
		}
		if e.Layer == "" {
			return errors.New(errors.ErrCodeInvalidPlan, "export %q has no layer", e.Name)
		}
		exports[e.Name] = true
	}

	tracks := make(map[string]bool, len(p.Tracks))
	for i, t := range p.Tracks {
		name := t.Name
		if name == "" {
			name = "#" + strconv.Itoa(i)
		}
		if t.Name != "" && tracks[t.Name] {
			return errors.New(errors.ErrCodeInvalidPlan, "duplicate track %q", t.Name)
		}
		tracks[t.Name] = true
		if t.Layer == "" {
			return errors.New(errors.ErrCodeInvalidPlan, "track %s has no layer", name)
		}
		if t.Width < 0 {
			return errors.New(errors.ErrCodeInvalidPlan, "track %s has negative width", name)
		}
		for j, c := range t.Connects {
			switch {
			case c.Export != "" && (c.Instance != "" || c.Port != ""):
				return errors.New(errors.ErrCodeInvalidPlan, "track %s connect %d names both an export and a port", name, j)
			case c.Export != "":
				if !exports[c.Export] {
					return errors.New(errors.ErrCodeInvalidPlan, "track %s connect %d: unknown export %q", name, j, c.Export)
				}
			default:
				ports, ok := devices[c.Instance]
				if !ok {
					return errors.New(errors.ErrCodeInvalidPlan, "track %s connect %d: unknown device %q", name, j, c.Instance)
				}
				if !ports[c.Port] {
					return errors.New(errors.ErrCodeInvalidPlan, "track %s connect %d: device %q has no port %q", name, j, c.Instance, c.Port)
				}
			}
		}
	}
	return nil
}
