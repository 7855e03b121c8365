// Package plan defines the static plan catalog: the table mapping a plan
// identifier to its monthly feature quotas and flags.
//
// The catalog is pure data. Resolution is total: an unknown or empty plan ID
// always resolves to the free plan so that gating code never has to handle a
// missing plan. The value -1 (Unlimited) in a limit field means "no cap".
//
// Plans can be supplied from the built-in defaults, a plain map, or a YAML
// file:
//
//	catalog, err := plan.NewCatalog(ctx, plan.NewInMemSource(plan.DefaultPlans()))
//	...
//	p := catalog.Resolve("pro")
//	if p.IsUnlimited(plan.FeaturePrompts) {
//	    // no quota applies
//	}
package plan
