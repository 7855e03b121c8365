package plan

import (
	"context"
	"maps"
)

// Source defines how plans are loaded into the catalog.
type Source interface {
	Load(ctx context.Context) (map[ID]Plan, error)
}

// inMemSource implements Source over a plain map.
type inMemSource struct {
	plans map[ID]Plan
}

// NewInMemSource returns a Source backed by a copy of the given plans.
func NewInMemSource(plans map[ID]Plan) Source {
	plansCopy := make(map[ID]Plan, len(plans))
	for id, p := range plans {
		p.Limits = maps.Clone(p.Limits)
		plansCopy[id] = p
	}
	return &inMemSource{plans: plansCopy}
}

func (s *inMemSource) Load(_ context.Context) (map[ID]Plan, error) {
	plansCopy := make(map[ID]Plan, len(s.plans))
	for id, p := range s.plans {
		p.Limits = maps.Clone(p.Limits)
		plansCopy[id] = p
	}
	return plansCopy, nil
}
