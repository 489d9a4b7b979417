package pipeline

import (
	"context"

	"github.com/matzehuels/cellgen/pkg/db"
	"github.com/matzehuels/cellgen/pkg/observability"
	"github.com/matzehuels/cellgen/pkg/plan"
	"github.com/matzehuels/cellgen/pkg/render"
	"github.com/matzehuels/cellgen/pkg/tech"
)

// GenerateLayout builds the plan's cell in a fresh library of t, routes
// every track and flattens the result.
func GenerateLayout(ctx context.Context, t *tech.Technology, p *plan.Plan, opts Options) (render.Layout, error) {
	res, err := plan.Execute(ctx, db.NewLibrary(t), p, plan.Options{
		Logger: opts.Logger,
		Hooks:  observability.Route(),
	})
	if err != nil {
		return render.Layout{}, err
	}
	for _, tr := range res.Tracks {
		opts.Logger.Debug("routed track",
			"track", tr.Name,
			"layer", tr.Layer,
			"connections", tr.Connections,
			"stacks", tr.Stacks,
			"reused", tr.Reused)
	}
	return render.FromCell(res.Cell, res.Tracks), nil
}
