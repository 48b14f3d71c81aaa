package cache

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

const planCatalogKey = "billing:plans:active"

// PlanCatalogCache caches the public active-plan listing in Redis. Cache
// failures are logged and treated as misses; the catalog endpoint always
// works without Redis.
type PlanCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Interface
}

func NewPlanCatalogCache(client *redis.Client, ttl time.Duration, logger logger.Interface) *PlanCatalogCache {
	return &PlanCatalogCache{client: client, ttl: ttl, logger: logger}
}

func (c *PlanCatalogCache) GetActivePlans(ctx context.Context) ([]*dto.PlanDTO, bool) {
	data, err := c.client.Get(ctx, planCatalogKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warnw("plan catalog cache read failed", "error", err)
		}
		return nil, false
	}

	var plans []*dto.PlanDTO
	if err := json.Unmarshal(data, &plans); err != nil {
		c.logger.Warnw("plan catalog cache corrupt, dropping", "error", err)
		c.Invalidate(ctx)
		return nil, false
	}
	return plans, true
}

func (c *PlanCatalogCache) SetActivePlans(ctx context.Context, plans []*dto.PlanDTO) {
	data, err := json.Marshal(plans)
	if err != nil {
		c.logger.Warnw("failed to marshal plan catalog", "error", err)
		return
	}

	// Jitter the TTL so concurrently started instances don't expire the
	// key at the same instant.
	ttl := c.ttl + time.Duration(rand.Int63n(int64(c.ttl/10)+1))
	if err := c.client.Set(ctx, planCatalogKey, data, ttl).Err(); err != nil {
		c.logger.Warnw("plan catalog cache write failed", "error", err)
	}
}

func (c *PlanCatalogCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, planCatalogKey).Err(); err != nil {
		c.logger.Warnw("plan catalog cache invalidation failed", "error", err)
	}
}

// NoopPlanCatalogCache is used when Redis is disabled; every read is a miss.
type NoopPlanCatalogCache struct{}

func (NoopPlanCatalogCache) GetActivePlans(context.Context) ([]*dto.PlanDTO, bool) { return nil, false }
func (NoopPlanCatalogCache) SetActivePlans(context.Context, []*dto.PlanDTO)       {}
func (NoopPlanCatalogCache) Invalidate(context.Context)                           {}
