package render

import (
	"context"
	"fmt"
	"slices"

	"github.com/matzehuels/cellgen/pkg/errors"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatSVG   = "svg"
	FormatDOT   = "dot"
	FormatGraph = "graph" // Graphviz-rendered connectivity, SVG
)

// Formats lists the supported output formats.
var Formats = []string{FormatJSON, FormatSVG, FormatDOT, FormatGraph}

// ValidFormat reports whether f is a supported output format.
func ValidFormat(f string) bool { return slices.Contains(Formats, f) }

// Ext returns the file extension for an output format.
func Ext(format string) string {
	switch format {
	case FormatGraph:
		return ".graph.svg"
	default:
		return "." + format
	}
}

// Render produces each requested format from l. Duplicate formats are
// rendered once.
func Render(ctx context.Context, l Layout, formats []string, opts ...SVGOption) (map[string][]byte, error) {
	out := make(map[string][]byte, len(formats))
	for _, f := range formats {
		if _, done := out[f]; done {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := renderOne(ctx, l, f, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", f, err)
		}
		out[f] = data
	}
	return out, nil
}

func renderOne(ctx context.Context, l Layout, format string, opts []SVGOption) ([]byte, error) {
	switch format {
	case FormatJSON:
		return MarshalLayout(l)
	case FormatSVG:
		return RenderSVG(l, opts...), nil
	case FormatDOT:
		return []byte(ToDOT(l)), nil
	case FormatGraph:
		return RenderGraphSVG(ctx, ToDOT(l))
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q (valid: %v)", format, Formats)
	}
}
