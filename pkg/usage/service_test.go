package usage_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
	"github.com/NetoNetoArreche/buildix-sub004/pkg/usage"
)

// fixture wires a metering service over the in-memory ledger with a
// controllable clock and a map-backed plan resolver.
type fixture struct {
	svc   *usage.Service
	store usage.Store
	plans map[uuid.UUID]plan.ID
	mu    sync.Mutex
	now   time.Time
}

func newFixture(t *testing.T, opts ...usage.Option) *fixture {
	t.Helper()

	catalog, err := plan.NewCatalog(context.Background(), plan.NewInMemSource(plan.DefaultPlans()))
	require.NoError(t, err)

	f := &fixture{
		store: usage.NewMemoryStore(),
		plans: make(map[uuid.UUID]plan.ID),
		now:   time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	resolver := func(_ context.Context, userID uuid.UUID) (plan.ID, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if id, ok := f.plans[userID]; ok {
			return id, nil
		}
		return plan.IDFree, nil
	}

	clock := func() time.Time {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.now
	}

	f.svc, err = usage.NewService(catalog, f.store, resolver, append([]usage.Option{usage.WithClock(clock)}, opts...)...)
	require.NoError(t, err)
	return f
}

func (f *fixture) setPlan(userID uuid.UUID, id plan.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans[userID] = id
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func userCtx(userID uuid.UUID, email string) context.Context {
	return usage.SetIdentityToContext(context.Background(), usage.Identity{
		ID:    userID,
		Email: email,
		Role:  "user",
	})
}

func consume(t *testing.T, f *fixture, ctx context.Context, userID uuid.UUID, feature plan.Feature, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, f.svc.IncrementUsage(ctx, userID, feature))
	}
}

func TestCanUseFeature(t *testing.T) {
	t.Parallel()

	t.Run("free plan at limit is denied", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		userID := uuid.New()
		ctx := userCtx(userID, "user@example.com")
		consume(t, f, ctx, userID, plan.FeaturePrompts, 10)

		decision, err := f.svc.CanUseFeature(ctx, userID, plan.FeaturePrompts)

		require.NoError(t, err)
		assert.Equal(t, usage.Decision{
			Allowed: false,
			Usage: usage.Status{
				Used:         10,
				Limit:        10,
				Remaining:    0,
				LimitReached: true,
				PercentUsed:  100,
			},
			PlanID: plan.IDFree,
		}, decision)
	})

	t.Run("pro plan is unlimited", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		userID := uuid.New()
		f.setPlan(userID, plan.IDPro)
		ctx := userCtx(userID, "user@example.com")
		consume(t, f, ctx, userID, plan.FeaturePrompts, 250)

		decision, err := f.svc.CanUseFeature(ctx, userID, plan.FeaturePrompts)

		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, plan.IDPro, decision.PlanID)
		assert.False(t, decision.Usage.LimitReached)
		assert.Equal(t, plan.Unlimited, decision.Usage.Remaining)
	})

	t.Run("idempotent without intervening increment", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		userID := uuid.New()
		ctx := userCtx(userID, "user@example.com")
		consume(t, f, ctx, userID, plan.FeaturePrompts, 4)

		first, err := f.svc.CanUseFeature(ctx, userID, plan.FeaturePrompts)
		require.NoError(t, err)
		second, err := f.svc.CanUseFeature(ctx, userID, plan.FeaturePrompts)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("unknown feature fails fast", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		userID := uuid.New()

		_, err := f.svc.CanUseFeature(userCtx(userID, "user@example.com"), userID, "teleports")

		assert.ErrorIs(t, err, usage.ErrInvalidFeature)
	})

	t.Run("missing identity is user not found", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		_, err := f.svc.CanUseFeature(context.Background(), uuid.New(), plan.FeaturePrompts)

		assert.ErrorIs(t, err, usage.ErrUserNotFound)
	})

	t.Run("downgrade mid-period denies against current plan", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		userID := uuid.New()
		f.setPlan(userID, plan.IDPro)
		ctx := userCtx(userID, "user@example.com")
		consume(t, f, ctx, userID, plan.FeaturePrompts, 30)

		// Subscription lapses mid-period: usage already exceeds the free cap.
		f.setPlan(userID, plan.IDFree)

		decision, err := f.svc.CanUseFeature(ctx, userID, plan.FeaturePrompts)

		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, plan.IDFree, decision.PlanID)
		assert.Equal(t, int64(30), decision.Usage.Used)
		assert.Equal(t, int64(10), decision.Usage.Limit)
	})

	t.Run("gate fails closed on storage failure", func(t *testing.T) {
		t.Parallel()

		catalog, err := plan.NewCatalog(context.Background(), plan.NewInMemSource(plan.DefaultPlans()))
		require.NoError(t, err)
		resolver := func(context.Context, uuid.UUID) (plan.ID, error) { return plan.IDFree, nil }
		svc, err := usage.NewService(catalog, &failingLedger{}, resolver)
		require.NoError(t, err)
		userID := uuid.New()

		_, err = svc.CanUseFeature(userCtx(userID, "user@example.com"), userID, plan.FeaturePrompts)

		assert.ErrorIs(t, err, usage.ErrStorageUnavailable)
	})
}

func TestIncrementUsage(t *testing.T) {
	t.Parallel()

	t.Run("monotonic by exactly one", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		userID := uuid.New()
		ctx := userCtx(userID, "user@example.com")

		before, err := f.svc.CanUseFeature(ctx, userID, plan.FeaturePrompts)
		require.NoError(t, err)
		require.NoError(t, f.svc.IncrementUsage(ctx, userID, plan.FeaturePrompts))
		after, err := f.svc.CanUseFeature(ctx, userID, plan.FeaturePrompts)
		require.NoError(t, err)

		assert.Equal(t, before.Usage.Used+1, after.Usage.Used)
	})

	t.Run("only the named counter moves", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		userID := uuid.New()
		ctx := userCtx(userID, "user@example.com")

		require.NoError(t, f.svc.IncrementUsage(ctx, userID, plan.FeatureImages))

		report, err := f.svc.AllUsage(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), report.Features[plan.FeatureImages].Used)
		assert.Equal(t, int64(0), report.Features[plan.FeaturePrompts].Used)
		assert.Equal(t, int64(0), report.Features[plan.FeatureFigmaExports].Used)
		assert.Equal(t, int64(0), report.Features[plan.FeatureHTMLExports].Used)
	})

	t.Run("unknown feature fails fast", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		userID := uuid.New()

		err := f.svc.IncrementUsage(userCtx(userID, "user@example.com"), userID, "teleports")

		assert.ErrorIs(t, err, usage.ErrInvalidFeature)
	})

	t.Run("accepted race: parallel increments both land", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		userID := uuid.New()
		ctx := userCtx(userID, "user@example.com")
		consume(t, f, ctx, userID, plan.FeaturePrompts, 9)

		// Both requests pass the gate before either increment lands.
		for i := 0; i < 2; i++ {
			decision, err := f.svc.CanUseFeature(ctx, userID, plan.FeaturePrompts)
			require.NoError(t, err)
			assert.True(t, decision.Allowed)
		}

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, f.svc.IncrementUsage(ctx, userID, plan.FeaturePrompts))
			}()
		}
		wg.Wait()

		status, err := f.svc.FeatureUsage(ctx, userID, plan.FeaturePrompts)
		require.NoError(t, err)
		assert.Equal(t, int64(11), status.Used, "transient over-quota by concurrency-1 is accepted")
		assert.True(t, status.LimitReached)
	})
}

func TestPeriodRollover(t *testing.T) {
	t.Parallel()

	t.Run("expired period resets counters on next check", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		userID := uuid.New()
		ctx := userCtx(userID, "user@example.com")
		consume(t, f, ctx, userID, plan.FeaturePrompts, 10)

		decision, err := f.svc.CanUseFeature(ctx, userID, plan.FeaturePrompts)
		require.NoError(t, err)
		require.False(t, decision.Allowed)

		// Cross into the next billing cycle.
		f.advance(32 * 24 * time.Hour)

		decision, err = f.svc.CanUseFeature(ctx, userID, plan.FeaturePrompts)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, int64(0), decision.Usage.Used)
	})

	t.Run("increment after rollover writes to the fresh period", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		userID := uuid.New()
		ctx := userCtx(userID, "user@example.com")
		consume(t, f, ctx, userID, plan.FeaturePrompts, 7)

		f.advance(32 * 24 * time.Hour)
		require.NoError(t, f.svc.IncrementUsage(ctx, userID, plan.FeaturePrompts))

		status, err := f.svc.FeatureUsage(ctx, userID, plan.FeaturePrompts)
		require.NoError(t, err)
		assert.Equal(t, int64(1), status.Used)
	})
}

func TestAdminBypass(t *testing.T) {
	t.Parallel()

	t.Run("bypassed identity is always allowed and never metered", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, usage.WithBypassEmails("ops@buildix.studio"))
		userID := uuid.New()
		ctx := userCtx(userID, "Ops@Buildix.Studio") // match is case-insensitive

		decision, err := f.svc.CanUseFeature(ctx, userID, plan.FeaturePrompts)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)

		// Increments are a no-op for the bypass identity.
		for i := 0; i < 5; i++ {
			require.NoError(t, f.svc.IncrementUsage(ctx, userID, plan.FeaturePrompts))
		}

		_, err = f.store.FindLatestPeriod(context.Background(), userID)
		assert.ErrorIs(t, err, usage.ErrPeriodNotFound, "no ledger row should exist")
	})

	t.Run("non-listed identity is gated normally", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, usage.WithBypassEmails("ops@buildix.studio"))
		userID := uuid.New()
		ctx := userCtx(userID, "someone@example.com")
		consume(t, f, ctx, userID, plan.FeaturePrompts, 10)

		decision, err := f.svc.CanUseFeature(ctx, userID, plan.FeaturePrompts)

		require.NoError(t, err)
		assert.False(t, decision.Allowed)
	})
}

func TestAllUsage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	ctx := userCtx(userID, "user@example.com")
	consume(t, f, ctx, userID, plan.FeaturePrompts, 3)
	consume(t, f, ctx, userID, plan.FeatureHTMLExports, 10)

	report, err := f.svc.AllUsage(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, plan.IDFree, report.PlanID)
	assert.False(t, report.ResetsAt.IsZero())
	assert.Len(t, report.Features, 4)
	assert.Equal(t, int64(3), report.Features[plan.FeaturePrompts].Used)
	assert.True(t, report.Features[plan.FeatureHTMLExports].LimitReached)
	// Dashboard numbers must match the gate's numbers exactly.
	decision, err := f.svc.CanUseFeature(ctx, userID, plan.FeaturePrompts)
	require.NoError(t, err)
	assert.Equal(t, decision.Usage, report.Features[plan.FeaturePrompts])
}

// failingLedger simulates an unreachable datastore.
type failingLedger struct{}

var errLedgerDown = errors.New("connection refused")

func (failingLedger) FindLatestPeriod(context.Context, uuid.UUID) (*usage.Period, error) {
	return nil, errLedgerDown
}

func (failingLedger) CreatePeriod(context.Context, uuid.UUID, time.Time, time.Time) (*usage.Period, error) {
	return nil, errLedgerDown
}

func (failingLedger) Increment(context.Context, uuid.UUID, plan.Feature, int64) error {
	return errLedgerDown
}
