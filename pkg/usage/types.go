package usage

import (
	"time"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
)

// Status describes consumption of one feature against its plan limit. The
// same struct feeds both server-side gating and client dashboards, so the
// JSON field names are part of the API contract.
type Status struct {
	Used         int64 `json:"used"`
	Limit        int64 `json:"limit"`     // -1 means unlimited
	Remaining    int64 `json:"remaining"` // -1 means unlimited
	LimitReached bool  `json:"isLimitReached"`
	PercentUsed  int   `json:"percentUsed"`
}

// Decision is the result of a gate check.
type Decision struct {
	Allowed bool    `json:"allowed"`
	Usage   Status  `json:"usage"`
	PlanID  plan.ID `json:"plan"`
}

// Report aggregates usage of all metered features for a user, for the
// dashboard endpoint.
type Report struct {
	PlanID   plan.ID                 `json:"plan"`
	ResetsAt time.Time               `json:"resetsAt"`
	Features map[plan.Feature]Status `json:"features"`
}
