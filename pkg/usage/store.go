package usage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
)

// Store is the persistent usage ledger.
//
// Increment must be a single atomic add at the storage layer, never a
// read-modify-write in the application: two parallel requests incrementing
// the same counter must both land. CreatePeriod must tolerate concurrent
// creation of the same (userID, start) window and return the winning row.
type Store interface {
	// FindLatestPeriod returns the period with the latest PeriodEnd for the
	// user, or ErrPeriodNotFound if the user has no ledger rows yet.
	FindLatestPeriod(ctx context.Context, userID uuid.UUID) (*Period, error)

	// CreatePeriod inserts a zeroed period row for the window [start, end).
	// If a row for (userID, start) already exists it returns that row.
	CreatePeriod(ctx context.Context, userID uuid.UUID, start, end time.Time) (*Period, error)

	// Increment atomically adds delta to the counter for f on the given row.
	Increment(ctx context.Context, periodID uuid.UUID, f plan.Feature, delta int64) error
}
