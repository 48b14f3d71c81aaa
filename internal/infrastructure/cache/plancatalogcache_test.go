package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

func newTestCache(t *testing.T) (*PlanCatalogCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPlanCatalogCache(client, 5*time.Minute, logger.NewLogger()), mr
}

func TestPlanCatalogCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := c.GetActivePlans(ctx)
	assert.False(t, ok)

	plans := []*dto.PlanDTO{
		{SID: "plan_abc", Code: "STARTER_10", StudentLimit: 10, PriceMonthly: "299.00"},
		{SID: "plan_def", Code: "PRO_20", StudentLimit: 20, PriceMonthly: "499.00"},
	}
	c.SetActivePlans(ctx, plans)

	cached, ok := c.GetActivePlans(ctx)
	require.True(t, ok)
	require.Len(t, cached, 2)
	assert.Equal(t, "STARTER_10", cached[0].Code)
	assert.Equal(t, 20, cached[1].StudentLimit)
}

func TestPlanCatalogCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.SetActivePlans(ctx, []*dto.PlanDTO{{SID: "plan_abc", Code: "STARTER_10"}})
	c.Invalidate(ctx)

	_, ok := c.GetActivePlans(ctx)
	assert.False(t, ok)
}

func TestPlanCatalogCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.SetActivePlans(ctx, []*dto.PlanDTO{{SID: "plan_abc", Code: "STARTER_10"}})

	// Fast-forward past the TTL plus the maximum jitter.
	mr.FastForward(6 * time.Minute)

	_, ok := c.GetActivePlans(ctx)
	assert.False(t, ok)
}

func TestPlanCatalogCache_CorruptEntryDropped(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(planCatalogKey, "{not json"))

	_, ok := c.GetActivePlans(ctx)
	assert.False(t, ok)
	assert.False(t, mr.Exists(planCatalogKey))
}
