package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
)

// pgStore is a PostgreSQL-backed ledger using pgx.
// Schema: internal/db/migrations.
type pgStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

// counterColumn whitelists the column per feature. Column names are never
// taken from input, so interpolating them into SQL is safe.
func counterColumn(f plan.Feature) (string, error) {
	switch f {
	case plan.FeaturePrompts:
		return "prompts_used", nil
	case plan.FeatureImages:
		return "images_used", nil
	case plan.FeatureFigmaExports:
		return "figma_exports_used", nil
	case plan.FeatureHTMLExports:
		return "html_exports_used", nil
	}
	return "", ErrInvalidFeature
}

const periodColumns = `id, user_id, period_start, period_end, prompts_used, images_used, figma_exports_used, html_exports_used`

func scanPeriod(row pgx.Row) (*Period, error) {
	var p Period
	err := row.Scan(
		&p.ID, &p.UserID, &p.PeriodStart, &p.PeriodEnd,
		&p.Prompts, &p.Images, &p.FigmaExports, &p.HTMLExports,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *pgStore) FindLatestPeriod(ctx context.Context, userID uuid.UUID) (*Period, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM usage_periods
		WHERE user_id = $1
		ORDER BY period_end DESC
		LIMIT 1`, periodColumns)

	p, err := scanPeriod(s.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPeriodNotFound
		}
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return p, nil
}

func (s *pgStore) CreatePeriod(ctx context.Context, userID uuid.UUID, start, end time.Time) (*Period, error) {
	// Two handlers can race to create the same window; the unique index on
	// (user_id, period_start) makes one insert win and the loser re-reads
	// the winning row.
	insert := fmt.Sprintf(`
		INSERT INTO usage_periods (id, user_id, period_start, period_end)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, period_start) DO NOTHING
		RETURNING %s`, periodColumns)

	p, err := scanPeriod(s.pool.QueryRow(ctx, insert, uuid.New(), userID, start.UTC(), end.UTC()))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	selectExisting := fmt.Sprintf(`
		SELECT %s FROM usage_periods
		WHERE user_id = $1 AND period_start = $2`, periodColumns)

	p, err = scanPeriod(s.pool.QueryRow(ctx, selectExisting, userID, start.UTC()))
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return p, nil
}

func (s *pgStore) Increment(ctx context.Context, periodID uuid.UUID, f plan.Feature, delta int64) error {
	column, err := counterColumn(f)
	if err != nil {
		return err
	}

	// Single-statement add: the database serializes concurrent increments on
	// the row, so no application-level locking is needed.
	query := fmt.Sprintf(`UPDATE usage_periods SET %s = %s + $2 WHERE id = $1`, column, column)

	tag, err := s.pool.Exec(ctx, query, periodID, delta)
	if err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	return nil
}
