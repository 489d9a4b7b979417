package pipeline

import (
	"context"

	"github.com/matzehuels/cellgen/pkg/render"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, l render.Layout, opts Options) (map[string][]byte, error) {
	return render.Render(ctx, l, opts.Formats, opts.svgOptions()...)
}
