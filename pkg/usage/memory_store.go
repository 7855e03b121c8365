package usage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
)

// memoryStore is an in-memory ledger for tests and local development. The
// mutex makes Increment atomic, matching the contract the SQL and redis
// backends satisfy with single-statement adds.
type memoryStore struct {
	mu      sync.Mutex
	periods map[uuid.UUID][]*Period // keyed by userID, append-only
	byID    map[uuid.UUID]*Period
}

// NewMemoryStore returns an empty in-memory ledger.
func NewMemoryStore() Store {
	return &memoryStore{
		periods: make(map[uuid.UUID][]*Period),
		byID:    make(map[uuid.UUID]*Period),
	}
}

func (s *memoryStore) FindLatestPeriod(_ context.Context, userID uuid.UUID) (*Period, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.periods[userID]
	if len(rows) == 0 {
		return nil, ErrPeriodNotFound
	}

	latest := rows[0]
	for _, p := range rows[1:] {
		if p.PeriodEnd.After(latest.PeriodEnd) {
			latest = p
		}
	}
	copied := *latest
	return &copied, nil
}

func (s *memoryStore) CreatePeriod(_ context.Context, userID uuid.UUID, start, end time.Time) (*Period, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.periods[userID] {
		if p.PeriodStart.Equal(start) {
			copied := *p
			return &copied, nil
		}
	}

	p := &Period{
		ID:          uuid.New(),
		UserID:      userID,
		PeriodStart: start.UTC(),
		PeriodEnd:   end.UTC(),
	}
	s.periods[userID] = append(s.periods[userID], p)
	s.byID[p.ID] = p

	copied := *p
	return &copied, nil
}

func (s *memoryStore) Increment(_ context.Context, periodID uuid.UUID, f plan.Feature, delta int64) error {
	if !plan.ValidFeature(f) {
		return ErrInvalidFeature
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[periodID]
	if !ok {
		return ErrPeriodNotFound
	}

	switch f {
	case plan.FeaturePrompts:
		p.Prompts += delta
	case plan.FeatureImages:
		p.Images += delta
	case plan.FeatureFigmaExports:
		p.FigmaExports += delta
	case plan.FeatureHTMLExports:
		p.HTMLExports += delta
	}
	return nil
}
