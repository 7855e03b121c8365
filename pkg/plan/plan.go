package plan

// ID identifies a subscription plan.
type ID string

// Built-in plan identifiers. The catalog may define more (e.g. legacy or
// team plans), but the free plan must always exist: it is the fallback for
// users without a subscription.
const (
	IDFree ID = "free"
	IDPro  ID = "pro"
)

// Feature is a meterable capability subject to a monthly quota.
type Feature string

// The closed set of metered features. Each maps to exactly one usage counter
// and one plan limit.
const (
	FeaturePrompts      Feature = "prompts"
	FeatureImages       Feature = "images"
	FeatureFigmaExports Feature = "figmaExports"
	FeatureHTMLExports  Feature = "htmlExports"
)

// Unlimited indicates no cap for a limit (-1 chosen for SQL compatibility).
const Unlimited int64 = -1

// Features returns all metered features in a stable order.
func Features() []Feature {
	return []Feature{FeaturePrompts, FeatureImages, FeatureFigmaExports, FeatureHTMLExports}
}

// ValidFeature reports whether f is one of the known metered features.
func ValidFeature(f Feature) bool {
	switch f {
	case FeaturePrompts, FeatureImages, FeatureFigmaExports, FeatureHTMLExports:
		return true
	}
	return false
}

// Plan describes a subscription tier and its constraints.
type Plan struct {
	ID              ID               `yaml:"id"`
	Name            string           `yaml:"name"`
	Description     string           `yaml:"description"`
	Limits          map[Feature]int64 `yaml:"limits"`            // monthly quotas, -1 means unlimited
	PagesPerProject int64            `yaml:"pages_per_project"` // structural limit, not metered monthly
	CanAccessPro    bool             `yaml:"can_access_pro"`    // access to PRO-only community content
	Public          bool             `yaml:"public"`            // available for self-service signup
}

// Limit returns the monthly quota for a feature. Features the plan does not
// mention are treated as fully restricted (limit 0).
func (p Plan) Limit(f Feature) int64 {
	if limit, ok := p.Limits[f]; ok {
		return limit
	}
	return 0
}

// IsUnlimited reports whether the plan has no cap for the feature.
func (p Plan) IsUnlimited(f Feature) bool {
	return p.Limit(f) == Unlimited
}
