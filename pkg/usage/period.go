package usage

import (
	"time"

	"github.com/google/uuid"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
)

// Period is one ledger row: consumption of all metered features for one user
// during one billing cycle [PeriodStart, PeriodEnd). Counters only ever grow
// within a period; a rolled-over period starts a fresh zeroed row and the
// old row is retained for history.
type Period struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Prompts      int64
	Images       int64
	FigmaExports int64
	HTMLExports  int64
}

// Counter returns the consumption recorded for a feature.
func (p *Period) Counter(f plan.Feature) int64 {
	switch f {
	case plan.FeaturePrompts:
		return p.Prompts
	case plan.FeatureImages:
		return p.Images
	case plan.FeatureFigmaExports:
		return p.FigmaExports
	case plan.FeatureHTMLExports:
		return p.HTMLExports
	}
	return 0
}

// Contains reports whether t falls inside the period window.
func (p *Period) Contains(t time.Time) bool {
	return !t.Before(p.PeriodStart) && t.Before(p.PeriodEnd)
}

// NextWindow computes the billing window containing now. With no prior
// period the window is anchored at now. Otherwise the anchor day is kept by
// rolling the previous window forward one calendar month at a time until it
// contains now, so a user who goes quiet for three months gets a window
// aligned with their original anchor, not with their return date.
func NextWindow(prev *Period, now time.Time) (start, end time.Time) {
	now = now.UTC()
	if prev == nil {
		start = now
		return start, start.AddDate(0, 1, 0)
	}

	start = prev.PeriodEnd.UTC()
	end = start.AddDate(0, 1, 0)
	for !now.Before(end) {
		start = end
		end = start.AddDate(0, 1, 0)
	}
	return start, end
}
