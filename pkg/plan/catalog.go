package plan

import (
	"context"
	"errors"
	"fmt"
	"maps"
)

// Catalog is the static table of plans. It is immutable after construction,
// so lookups are safe for concurrent use without locking.
type Catalog struct {
	plans map[ID]Plan
}

// NewCatalog loads plans from the source and validates them. The free plan
// must be present: it is the fallback for unknown plan IDs.
func NewCatalog(ctx context.Context, src Source) (*Catalog, error) {
	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	if _, ok := plans[IDFree]; !ok {
		return nil, errors.Join(ErrInvalidPlanConfiguration, errors.New("free plan is not defined"))
	}

	for id, p := range plans {
		if p.ID != id {
			return nil, errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %q declares mismatched id %q", id, p.ID))
		}
		for f, limit := range p.Limits {
			if !ValidFeature(f) {
				return nil, errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %q has unknown feature %q", id, f))
			}
			if limit < Unlimited {
				return nil, errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %q has negative limit %d for %q", id, limit, f))
			}
		}
	}

	return &Catalog{plans: plans}, nil
}

// Resolve returns the plan for the given ID. It is total: unknown or empty
// IDs resolve to the free plan, never to an error.
func (c *Catalog) Resolve(id ID) Plan {
	if p, ok := c.plans[id]; ok {
		return p
	}
	return c.plans[IDFree]
}

// Has reports whether the catalog defines the given plan ID.
func (c *Catalog) Has(id ID) bool {
	_, ok := c.plans[id]
	return ok
}

// All returns a copy of the catalog contents, for admin and pricing pages.
func (c *Catalog) All() map[ID]Plan {
	return maps.Clone(c.plans)
}

// DefaultPlans returns the built-in Buildix catalog. Deployments can replace
// it with a YAML source without a rebuild.
func DefaultPlans() map[ID]Plan {
	return map[ID]Plan{
		IDFree: {
			ID:   IDFree,
			Name: "Free",
			Limits: map[Feature]int64{
				FeaturePrompts:      10,
				FeatureImages:       20,
				FeatureFigmaExports: 5,
				FeatureHTMLExports:  10,
			},
			PagesPerProject: 3,
			CanAccessPro:    false,
			Public:          true,
		},
		IDPro: {
			ID:   IDPro,
			Name: "Pro",
			Limits: map[Feature]int64{
				FeaturePrompts:      Unlimited,
				FeatureImages:       Unlimited,
				FeatureFigmaExports: Unlimited,
				FeatureHTMLExports:  Unlimited,
			},
			PagesPerProject: Unlimited,
			CanAccessPro:    true,
			Public:          true,
		},
	}
}
