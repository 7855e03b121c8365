package plan_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
)

func TestNewCatalog(t *testing.T) {
	t.Parallel()

	t.Run("default plans load", func(t *testing.T) {
		t.Parallel()

		catalog, err := plan.NewCatalog(context.Background(), plan.NewInMemSource(plan.DefaultPlans()))

		require.NoError(t, err)
		assert.True(t, catalog.Has(plan.IDFree))
		assert.True(t, catalog.Has(plan.IDPro))
	})

	t.Run("missing free plan rejected", func(t *testing.T) {
		t.Parallel()

		src := plan.NewInMemSource(map[plan.ID]plan.Plan{
			plan.IDPro: {ID: plan.IDPro, Name: "Pro"},
		})

		_, err := plan.NewCatalog(context.Background(), src)

		assert.ErrorIs(t, err, plan.ErrInvalidPlanConfiguration)
	})

	t.Run("unknown feature rejected", func(t *testing.T) {
		t.Parallel()

		src := plan.NewInMemSource(map[plan.ID]plan.Plan{
			plan.IDFree: {ID: plan.IDFree, Limits: map[plan.Feature]int64{"teleports": 5}},
		})

		_, err := plan.NewCatalog(context.Background(), src)

		assert.ErrorIs(t, err, plan.ErrInvalidPlanConfiguration)
	})

	t.Run("negative limit other than unlimited rejected", func(t *testing.T) {
		t.Parallel()

		src := plan.NewInMemSource(map[plan.ID]plan.Plan{
			plan.IDFree: {ID: plan.IDFree, Limits: map[plan.Feature]int64{plan.FeaturePrompts: -2}},
		})

		_, err := plan.NewCatalog(context.Background(), src)

		assert.ErrorIs(t, err, plan.ErrInvalidPlanConfiguration)
	})

	t.Run("mismatched id rejected", func(t *testing.T) {
		t.Parallel()

		src := plan.NewInMemSource(map[plan.ID]plan.Plan{
			plan.IDFree: {ID: plan.IDPro},
		})

		_, err := plan.NewCatalog(context.Background(), src)

		assert.ErrorIs(t, err, plan.ErrInvalidPlanConfiguration)
	})
}

func TestCatalogResolve(t *testing.T) {
	t.Parallel()

	catalog, err := plan.NewCatalog(context.Background(), plan.NewInMemSource(plan.DefaultPlans()))
	require.NoError(t, err)

	t.Run("known plan", func(t *testing.T) {
		t.Parallel()

		p := catalog.Resolve(plan.IDPro)

		assert.Equal(t, plan.IDPro, p.ID)
		assert.True(t, p.CanAccessPro)
		assert.True(t, p.IsUnlimited(plan.FeaturePrompts))
	})

	t.Run("unknown plan falls back to free", func(t *testing.T) {
		t.Parallel()

		p := catalog.Resolve("enterprise-2019")

		assert.Equal(t, plan.IDFree, p.ID)
	})

	t.Run("empty plan id falls back to free", func(t *testing.T) {
		t.Parallel()

		p := catalog.Resolve("")

		assert.Equal(t, plan.IDFree, p.ID)
	})
}

func TestPlanLimit(t *testing.T) {
	t.Parallel()

	p := plan.Plan{
		ID:     plan.IDFree,
		Limits: map[plan.Feature]int64{plan.FeaturePrompts: 10},
	}

	assert.Equal(t, int64(10), p.Limit(plan.FeaturePrompts))
	// Features a plan does not mention are fully restricted.
	assert.Equal(t, int64(0), p.Limit(plan.FeatureImages))
	assert.False(t, p.IsUnlimited(plan.FeaturePrompts))
}

func TestValidFeature(t *testing.T) {
	t.Parallel()

	for _, f := range plan.Features() {
		assert.True(t, plan.ValidFeature(f))
	}
	assert.False(t, plan.ValidFeature("unknown"))
	assert.False(t, plan.ValidFeature(""))
}
