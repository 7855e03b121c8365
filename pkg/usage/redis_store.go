package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
)

// redisStore is a redis-backed ledger. Each period is a hash keyed by its
// ID; a per-user pointer key tracks the latest period, and a SetNX claim key
// per (user, window start) arbitrates concurrent creates. HIncrBy gives the
// atomic counter add the Store contract requires.
//
// Keys are never expired: periods are retained for history like the SQL
// backend.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore returns a Store backed by the given redis client.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func periodKey(id uuid.UUID) string {
	return "usage:period:" + id.String()
}

func latestKey(userID uuid.UUID) string {
	return "usage:user:" + userID.String() + ":latest"
}

func claimKey(userID uuid.UUID, start time.Time) string {
	return fmt.Sprintf("usage:user:%s:window:%d", userID, start.UTC().Unix())
}

func (s *redisStore) FindLatestPeriod(ctx context.Context, userID uuid.UUID) (*Period, error) {
	idStr, err := s.client.Get(ctx, latestKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPeriodNotFound
		}
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return s.loadPeriod(ctx, id)
}

func (s *redisStore) loadPeriod(ctx context.Context, id uuid.UUID) (*Period, error) {
	fields, err := s.client.HGetAll(ctx, periodKey(id)).Result()
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrPeriodNotFound
	}

	p := &Period{ID: id}
	if p.UserID, err = uuid.Parse(fields["user_id"]); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	if p.PeriodStart, err = parseUnix(fields["period_start"]); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	if p.PeriodEnd, err = parseUnix(fields["period_end"]); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	p.Prompts = parseCounter(fields["prompts_used"])
	p.Images = parseCounter(fields["images_used"])
	p.FigmaExports = parseCounter(fields["figma_exports_used"])
	p.HTMLExports = parseCounter(fields["html_exports_used"])
	return p, nil
}

func (s *redisStore) CreatePeriod(ctx context.Context, userID uuid.UUID, start, end time.Time) (*Period, error) {
	id := uuid.New()

	claimed, err := s.client.SetNX(ctx, claimKey(userID, start), id.String(), 0).Result()
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	if !claimed {
		// Another request created this window first; read the winner.
		winnerID, err := s.client.Get(ctx, claimKey(userID, start)).Result()
		if err != nil {
			return nil, errors.Join(ErrStorageUnavailable, err)
		}
		id, err := uuid.Parse(winnerID)
		if err != nil {
			return nil, errors.Join(ErrStorageUnavailable, err)
		}
		return s.loadPeriod(ctx, id)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, periodKey(id), map[string]any{
		"user_id":            userID.String(),
		"period_start":       start.UTC().Unix(),
		"period_end":         end.UTC().Unix(),
		"prompts_used":       0,
		"images_used":        0,
		"figma_exports_used": 0,
		"html_exports_used":  0,
	})
	pipe.Set(ctx, latestKey(userID), id.String(), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	return &Period{
		ID:          id,
		UserID:      userID,
		PeriodStart: start.UTC(),
		PeriodEnd:   end.UTC(),
	}, nil
}

func (s *redisStore) Increment(ctx context.Context, periodID uuid.UUID, f plan.Feature, delta int64) error {
	column, err := counterColumn(f)
	if err != nil {
		return err
	}

	exists, err := s.client.Exists(ctx, periodKey(periodID)).Result()
	if err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	if exists == 0 {
		return ErrPeriodNotFound
	}

	if err := s.client.HIncrBy(ctx, periodKey(periodID), column, delta).Err(); err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

func parseUnix(v string) (time.Time, error) {
	var sec int64
	if _, err := fmt.Sscanf(v, "%d", &sec); err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}

func parseCounter(v string) int64 {
	var n int64
	_, _ = fmt.Sscanf(v, "%d", &n)
	return n
}
