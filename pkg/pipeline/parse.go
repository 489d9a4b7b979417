package pipeline

import (
	"bytes"

	"github.com/matzehuels/cellgen/pkg/cache"
	"github.com/matzehuels/cellgen/pkg/errors"
	"github.com/matzehuels/cellgen/pkg/plan"
	"github.com/matzehuels/cellgen/pkg/tech"
)

// ParsePlan parses and validates the plan in opts. A technology override
// replaces the plan's own technology before validation.
func ParsePlan(opts Options) (*plan.Plan, error) {
	p, err := plan.Parse([]byte(opts.Plan), plan.Format(opts.PlanFormat))
	if err != nil {
		return nil, err
	}
	if opts.Technology != "" {
		p.Technology = opts.Technology
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// PlanHash hashes the normalized JSON encoding of p, so formatting and
// encoding differences do not change the hash.
func PlanHash(p *plan.Plan) (string, error) {
	data, err := p.Encode(plan.FormatJSON)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode plan")
	}
	return cache.Hash(data), nil
}

// TechnologyHash hashes the tables of t.
func TechnologyHash(t *tech.Technology) (string, error) {
	var buf bytes.Buffer
	if err := tech.Encode(&buf, t.Process()); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode technology")
	}
	return cache.Hash(buf.Bytes()), nil
}
