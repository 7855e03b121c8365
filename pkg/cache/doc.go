// Package cache provides a small generic TTL cache with an explicit
// get-or-refresh read path and an explicit invalidation hook.
//
// It exists so process-wide caches of derived configuration are injected and
// mockable rather than hidden in module-level variables. Typical use is the
// per-user plan lookup:
//
//	planCache := cache.New[uuid.UUID, plan.ID](time.Minute)
//	id, err := planCache.GetOrRefresh(ctx, userID, func(ctx context.Context) (plan.ID, error) {
//	    return lookupPlan(ctx, userID)
//	})
//	...
//	planCache.Invalidate(userID) // on the subscription write path
package cache
