package usage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
	"github.com/NetoNetoArreche/buildix-sub004/pkg/usage"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	t.Run("remaining is limit minus used, floored at zero", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			used, limit, remaining int64
		}{
			{0, 10, 10},
			{3, 10, 7},
			{10, 10, 0},
			{15, 10, 0},
			{0, 0, 0},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.remaining, usage.Evaluate(tt.used, tt.limit).Remaining,
				"used=%d limit=%d", tt.used, tt.limit)
		}
	})

	t.Run("unlimited never reached", func(t *testing.T) {
		t.Parallel()

		for _, used := range []int64{0, 1, 1000000} {
			status := usage.Evaluate(used, plan.Unlimited)

			assert.False(t, status.LimitReached)
			assert.Equal(t, plan.Unlimited, status.Remaining)
			assert.Equal(t, plan.Unlimited, status.Limit)
			assert.Equal(t, 0, status.PercentUsed)
			assert.Equal(t, used, status.Used)
		}
	})

	t.Run("reached exactly at limit", func(t *testing.T) {
		t.Parallel()

		for _, limit := range []int64{0, 1, 10, 500} {
			status := usage.Evaluate(limit, limit)

			assert.True(t, status.LimitReached, "limit=%d", limit)
			assert.Equal(t, int64(0), status.Remaining)
			assert.Equal(t, 100, status.PercentUsed)
		}
	})

	t.Run("zero-limit plan is always at limit", func(t *testing.T) {
		t.Parallel()

		status := usage.Evaluate(0, 0)

		assert.True(t, status.LimitReached)
		assert.Equal(t, 100, status.PercentUsed)
		assert.Equal(t, int64(0), status.Remaining)
	})

	t.Run("percent rounds and caps at 100", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			used, limit int64
			percent     int
		}{
			{0, 10, 0},
			{1, 10, 10},
			{1, 3, 33},
			{2, 3, 67}, // rounds, not truncates
			{5, 10, 50},
			{9, 10, 90},
			{10, 10, 100},
			{25, 10, 100}, // capped
		}
		for _, tt := range tests {
			assert.Equal(t, tt.percent, usage.Evaluate(tt.used, tt.limit).PercentUsed,
				"used=%d limit=%d", tt.used, tt.limit)
		}
	})

	t.Run("negative used clamps to zero", func(t *testing.T) {
		t.Parallel()

		status := usage.Evaluate(-5, 10)

		assert.Equal(t, int64(0), status.Used)
		assert.Equal(t, int64(10), status.Remaining)
		assert.False(t, status.LimitReached)
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		first := usage.Evaluate(7, 10)
		second := usage.Evaluate(7, 10)

		assert.Equal(t, first, second)
	})
}
