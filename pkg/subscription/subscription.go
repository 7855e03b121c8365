package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
)

// Status represents the current state of a subscription.
type Status string

const (
	StatusActive    Status = "active"
	StatusTrialing  Status = "trialing"
	StatusPastDue   Status = "past_due"
	StatusCancelled Status = "cancelled"
)

// Subscription represents a user's subscription to a plan. Each user has at
// most one subscription row (UserID is the primary key). Rows are mutated by
// the billing webhook handlers, which live outside this service; from the
// metering side the store is read-only.
type Subscription struct {
	UserID             uuid.UUID
	PlanID             plan.ID
	Status             Status
	ProviderCustomerID string // billing provider's customer ID
	ProviderSubID      string // billing provider's subscription ID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsActive returns true if the subscription is in a paying state.
func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// IsTrialing returns true if the subscription is in trial status.
func (s *Subscription) IsTrialing() bool {
	return s.Status == StatusTrialing
}

// EffectivePlanID returns the plan that currently governs gating for the
// subscription. Past-due and cancelled subscriptions revert to the free
// plan; nil (no subscription record) means the user never subscribed and is
// also on the free plan.
func (s *Subscription) EffectivePlanID() plan.ID {
	if s == nil {
		return plan.IDFree
	}
	switch s.Status {
	case StatusActive, StatusTrialing:
		return s.PlanID
	}
	return plan.IDFree
}
