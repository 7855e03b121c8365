// Package usage meters consumption of quota-limited features and gates
// metered actions against the caller's plan.
//
// The flow for a metered endpoint is gate, act, record:
//
//	decision, err := svc.CanUseFeature(ctx, userID, plan.FeaturePrompts)
//	if err != nil { ... }            // fail closed
//	if !decision.Allowed { ... }     // 429 with decision.Usage
//	if err := callModel(ctx); err != nil { ... } // quota not consumed
//	_ = svc.IncrementUsage(ctx, userID, plan.FeaturePrompts)
//
// The gate and incrementer share one period-rollover implementation: the
// ledger row for the current billing window is created lazily on first
// metered call and reused until now passes its end. The increment is a
// single atomic add at the storage layer (SQL column add, redis HIncrBy), so
// concurrent requests never lose counts. The gate-then-increment pair is
// deliberately not transactional: parallel requests may briefly overshoot
// the limit by up to concurrency-1 units.
//
// Ledger backends: PostgreSQL (NewPostgresStore), redis (NewRedisStore) and
// in-memory (NewMemoryStore, for tests).
package usage
