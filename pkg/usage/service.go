package usage

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
)

// PlanIDResolver resolves the effective plan for a user. Implementations
// must already apply the free-plan fallback for users without a
// subscription; any error returned here is treated as a storage failure.
type PlanIDResolver func(ctx context.Context, userID uuid.UUID) (plan.ID, error)

// IdentityResolver resolves the caller's identity for a request. The default
// reads it from the request context.
type IdentityResolver func(ctx context.Context, userID uuid.UUID) (Identity, error)

// Service is the usage-metering core: the gate (CanUseFeature) decides
// whether a metered action may proceed, the incrementer (IncrementUsage)
// records consumption after the action succeeds.
//
// The gate is read-only and the increment is a separate call, so two
// parallel requests can both pass the check before either increment lands.
// That transient over-quota of at most concurrency-1 units is an accepted
// tradeoff; do not wrap the pair in heavier locking.
type Service struct {
	catalog         plan.Catalog
	store           Store
	resolvePlanID   PlanIDResolver
	resolveIdentity IdentityResolver
	bypassEmails    map[string]struct{}
	now             func() time.Time
	log             *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithBypassEmails sets the operator allow-list: identities whose email is
// listed are never gated and never metered. This is a narrow operational
// escape hatch, not a permission tier.
func WithBypassEmails(emails ...string) Option {
	return func(s *Service) {
		for _, e := range emails {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" {
				s.bypassEmails[e] = struct{}{}
			}
		}
	}
}

// WithIdentityResolver replaces the default context-based identity resolver.
func WithIdentityResolver(r IdentityResolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolveIdentity = r
		}
	}
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger for non-fatal reporting (lost increments).
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the metering service.
func NewService(catalog *plan.Catalog, store Store, planResolver PlanIDResolver, opts ...Option) (*Service, error) {
	if catalog == nil {
		return nil, errors.New("usage: catalog is required")
	}
	if store == nil {
		return nil, errors.New("usage: store is required")
	}
	if planResolver == nil {
		return nil, errors.New("usage: plan resolver is required")
	}

	s := &Service{
		catalog:         *catalog,
		store:           store,
		resolvePlanID:   planResolver,
		resolveIdentity: IdentityContextResolver,
		bypassEmails:    make(map[string]struct{}),
		now:             time.Now,
		log:             slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CanUseFeature is the gate: it decides whether the metered action may
// proceed, against the user's *current* plan. It is read-only; callers must
// call IncrementUsage separately after the action succeeds. Storage failures
// propagate so callers fail closed.
func (s *Service) CanUseFeature(ctx context.Context, userID uuid.UUID, f plan.Feature) (Decision, error) {
	if !plan.ValidFeature(f) {
		return Decision{}, ErrInvalidFeature
	}

	identity, err := s.resolveIdentity(ctx, userID)
	if err != nil {
		return Decision{}, errors.Join(ErrUserNotFound, err)
	}

	planID, err := s.effectivePlanID(ctx, userID)
	if err != nil {
		return Decision{}, err
	}

	if s.isBypassed(identity) {
		return Decision{
			Allowed: true,
			Usage:   Evaluate(0, plan.Unlimited),
			PlanID:  planID,
		}, nil
	}

	period, err := s.resolvePeriod(ctx, userID)
	if err != nil {
		return Decision{}, err
	}

	status := Evaluate(period.Counter(f), s.catalog.Resolve(planID).Limit(f))
	return Decision{
		Allowed: !status.LimitReached,
		Usage:   status,
		PlanID:  planID,
	}, nil
}

// IncrementUsage records one successful metered action. Call it only after
// the gated action actually executed, so failed actions do not consume
// quota. The increment is a single atomic add at the storage layer.
func (s *Service) IncrementUsage(ctx context.Context, userID uuid.UUID, f plan.Feature) error {
	if !plan.ValidFeature(f) {
		return ErrInvalidFeature
	}

	identity, err := s.resolveIdentity(ctx, userID)
	if err != nil {
		return errors.Join(ErrUserNotFound, err)
	}

	if s.isBypassed(identity) {
		return nil
	}

	period, err := s.resolvePeriod(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.store.Increment(ctx, period.ID, f, 1); err != nil {
		// A lost increment is lower-risk than a wrongly denied request, but
		// it must not go unnoticed.
		s.log.ErrorContext(ctx, "usage increment failed",
			slog.String("user_id", userID.String()),
			slog.String("feature", string(f)),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// FeatureUsage returns the usage status for one feature, for dashboards. It
// shares Evaluate with the gate so the two surfaces report the same numbers.
func (s *Service) FeatureUsage(ctx context.Context, userID uuid.UUID, f plan.Feature) (Status, error) {
	if !plan.ValidFeature(f) {
		return Status{}, ErrInvalidFeature
	}

	planID, err := s.effectivePlanID(ctx, userID)
	if err != nil {
		return Status{}, err
	}

	period, err := s.resolvePeriod(ctx, userID)
	if err != nil {
		return Status{}, err
	}

	return Evaluate(period.Counter(f), s.catalog.Resolve(planID).Limit(f)), nil
}

// AllUsage returns consumption of every metered feature for the current
// period, for the usage dashboard.
func (s *Service) AllUsage(ctx context.Context, userID uuid.UUID) (Report, error) {
	planID, err := s.effectivePlanID(ctx, userID)
	if err != nil {
		return Report{}, err
	}

	period, err := s.resolvePeriod(ctx, userID)
	if err != nil {
		return Report{}, err
	}

	p := s.catalog.Resolve(planID)
	features := make(map[plan.Feature]Status, len(plan.Features()))
	for _, f := range plan.Features() {
		features[f] = Evaluate(period.Counter(f), p.Limit(f))
	}

	return Report{
		PlanID:   planID,
		ResetsAt: period.PeriodEnd,
		Features: features,
	}, nil
}

func (s *Service) effectivePlanID(ctx context.Context, userID uuid.UUID) (plan.ID, error) {
	planID, err := s.resolvePlanID(ctx, userID)
	if err != nil {
		return "", errors.Join(ErrStorageUnavailable, err)
	}
	return planID, nil
}

// resolvePeriod is the single period-rollover implementation shared by the
// gate and the incrementer, so the two can never disagree on window
// boundaries. The latest row is reused while now < PeriodEnd; otherwise a
// fresh zeroed window is created (lazily, on first metered call).
func (s *Service) resolvePeriod(ctx context.Context, userID uuid.UUID) (*Period, error) {
	now := s.now().UTC()

	latest, err := s.store.FindLatestPeriod(ctx, userID)
	if err != nil && !errors.Is(err, ErrPeriodNotFound) {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	if latest != nil && now.Before(latest.PeriodEnd) {
		return latest, nil
	}

	start, end := NextWindow(latest, now)
	period, err := s.store.CreatePeriod(ctx, userID, start, end)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return period, nil
}

func (s *Service) isBypassed(id Identity) bool {
	if len(s.bypassEmails) == 0 || id.Email == "" {
		return false
	}
	_, ok := s.bypassEmails[strings.ToLower(id.Email)]
	return ok
}
