package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store defines subscription persistence. UserID is the primary key since
// each user has exactly one subscription.
type Store interface {
	// Get retrieves a subscription by user ID.
	// Returns ErrSubscriptionNotFound if no subscription exists.
	Get(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	// Save creates or updates a subscription, keyed by UserID.
	Save(ctx context.Context, sub *Subscription) error
}
