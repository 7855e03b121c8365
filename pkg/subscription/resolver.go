package subscription

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/cache"
	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
)

// PlanResolver returns a function resolving the effective plan ID for a
// user. Absence of a subscription record is not an error: it means the user
// is on the free plan. Storage failures propagate so that gating can fail
// closed.
func PlanResolver(store Store) func(ctx context.Context, userID uuid.UUID) (plan.ID, error) {
	return func(ctx context.Context, userID uuid.UUID) (plan.ID, error) {
		sub, err := store.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrSubscriptionNotFound) {
				return plan.IDFree, nil
			}
			return "", err
		}
		return sub.EffectivePlanID(), nil
	}
}

// CachedPlanResolver wraps PlanResolver with a TTL cache. Pair it with
// InvalidatingStore so subscription writes evict the stale plan immediately
// instead of waiting out the TTL.
func CachedPlanResolver(store Store, c *cache.Cache[uuid.UUID, plan.ID]) func(ctx context.Context, userID uuid.UUID) (plan.ID, error) {
	resolve := PlanResolver(store)
	return func(ctx context.Context, userID uuid.UUID) (plan.ID, error) {
		return c.GetOrRefresh(ctx, userID, func(ctx context.Context) (plan.ID, error) {
			return resolve(ctx, userID)
		})
	}
}

// invalidatingStore decorates a Store so that Save evicts the cached plan
// for the affected user.
type invalidatingStore struct {
	Store
	cache *cache.Cache[uuid.UUID, plan.ID]
}

// NewInvalidatingStore returns a Store whose write path invalidates the plan
// cache used by CachedPlanResolver.
func NewInvalidatingStore(store Store, c *cache.Cache[uuid.UUID, plan.ID]) Store {
	return &invalidatingStore{Store: store, cache: c}
}

func (s *invalidatingStore) Save(ctx context.Context, sub *Subscription) error {
	if err := s.Store.Save(ctx, sub); err != nil {
		return err
	}
	if sub != nil {
		s.cache.Invalidate(sub.UserID)
	}
	return nil
}
