package usage

import (
	"math"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
)

// Evaluate computes the usage status for a counter value against a plan
// limit. It is pure and side-effect free; gate checks and dashboards must
// both go through it so the two surfaces never report diverging numbers.
//
// A limit of -1 means unlimited: never reached, remaining -1, 0 percent. A
// limit of 0 means the feature is fully restricted: always reached, 100
// percent, regardless of usage.
func Evaluate(used, limit int64) Status {
	if used < 0 {
		used = 0
	}

	if limit == plan.Unlimited {
		return Status{
			Used:      used,
			Limit:     plan.Unlimited,
			Remaining: plan.Unlimited,
		}
	}

	percent := 100
	if limit > 0 {
		percent = int(math.Round(float64(used) / float64(limit) * 100))
		percent = min(percent, 100)
	}

	return Status{
		Used:         used,
		Limit:        limit,
		Remaining:    max(0, limit-used),
		LimitReached: used >= limit,
		PercentUsed:  percent,
	}
}
