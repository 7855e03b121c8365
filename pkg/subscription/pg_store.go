package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
)

// pgStore is a PostgreSQL-backed Store using pgx.
// Schema: internal/db/migrations.
type pgStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) Get(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	const query = `
		SELECT user_id, plan_id, status, provider_customer_id, provider_sub_id, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1`

	var (
		sub    Subscription
		planID string
		status string
	)
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&sub.UserID, &planID, &status,
		&sub.ProviderCustomerID, &sub.ProviderSubID,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, errors.Join(ErrStorageFailure, err)
	}
	sub.PlanID = plan.ID(planID)
	sub.Status = Status(status)
	return &sub, nil
}

func (s *pgStore) Save(ctx context.Context, sub *Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}

	const query = `
		INSERT INTO subscriptions (user_id, plan_id, status, provider_customer_id, provider_sub_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			plan_id = EXCLUDED.plan_id,
			status = EXCLUDED.status,
			provider_customer_id = EXCLUDED.provider_customer_id,
			provider_sub_id = EXCLUDED.provider_sub_id,
			updated_at = EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, query,
		sub.UserID, string(sub.PlanID), string(sub.Status),
		sub.ProviderCustomerID, sub.ProviderSubID, time.Now().UTC(),
	)
	if err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}
