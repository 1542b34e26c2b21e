package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// SnapshotCache stores validated product snapshots (attributes + combinations)
// as JSON so storefront reads skip the four catalog queries.
type SnapshotCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewSnapshotCache creates a new SnapshotCache.
func NewSnapshotCache(redis *RedisClient, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{redis: redis, ttl: ttl}
}

func (c *SnapshotCache) key(productID int) string {
	return fmt.Sprintf("catalog:snapshot:%d", productID)
}

// Get returns the cached snapshot or ErrCacheMiss.
func (c *SnapshotCache) Get(ctx context.Context, productID int) (*models.Product, error) {
	raw, err := c.redis.Get(ctx, c.key(productID))
	if err != nil {
		return nil, err
	}

	var p models.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &p, nil
}

// Set stores the snapshot until the configured TTL elapses.
func (c *SnapshotCache) Set(ctx context.Context, p *models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := c.redis.Set(ctx, c.key(p.ID), string(data), c.ttl); err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}
	return nil
}

// Invalidate drops the snapshot after an admin write.
func (c *SnapshotCache) Invalidate(ctx context.Context, productID int) error {
	return c.redis.Delete(ctx, c.key(productID))
}
