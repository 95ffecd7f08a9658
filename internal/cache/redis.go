package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avialane/charterops/config"
	"github.com/avialane/charterops/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	summaryTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, summaryTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		summaryTTL: summaryTTL,
	}
}

func (c *RedisCache) GetFleetSummary(ctx context.Context) (*domain.FleetSummary, error) {
	data, err := c.client.Get(ctx, fleetSummaryKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var summary domain.FleetSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *RedisCache) SetFleetSummary(ctx context.Context, summary *domain.FleetSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, fleetSummaryKey(), payload, c.summaryTTL).Err()
}

func (c *RedisCache) InvalidateFleetSummary(ctx context.Context) error {
	return c.client.Del(ctx, fleetSummaryKey()).Err()
}

// AcquireResourceLock takes a short-lived advisory lock on one resource so
// concurrent assignment attempts for it are serialized up front. The
// reservation transaction remains the hard guarantee.
func (c *RedisCache) AcquireResourceLock(ctx context.Context, resourceID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, resourceLockKey(resourceID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseResourceLock(ctx context.Context, resourceID int64) error {
	return c.client.Del(ctx, resourceLockKey(resourceID)).Err()
}

func fleetSummaryKey() string {
	return "cache:fleet:summary"
}

func resourceLockKey(resourceID int64) string {
	return fmt.Sprintf("lock:resource:%d", resourceID)
}
