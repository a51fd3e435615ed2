package adapters

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/core/cache"
	"storefront/internal/features/filters/domain"
)

const keyPrefix = "filters:"

// RedisRepository implements ports.CriteriaRepository using the cache.
type RedisRepository struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRedisRepository creates a repository whose entries expire after ttl of inactivity.
func NewRedisRepository(c cache.Cache, ttl time.Duration) *RedisRepository {
	return &RedisRepository{cache: c, ttl: ttl}
}

func (r *RedisRepository) Save(ctx context.Context, sessionID string, c domain.Criteria) error {
	if err := cache.SetJSON(ctx, r.cache, keyPrefix+sessionID, c, r.ttl); err != nil {
		return fmt.Errorf("failed to save filters: %w", err)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, sessionID string) (*domain.Criteria, error) {
	var c domain.Criteria
	found, err := cache.GetJSON(ctx, r.cache, keyPrefix+sessionID, &c)
	if err != nil {
		return nil, fmt.Errorf("failed to load filters: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &c, nil
}

func (r *RedisRepository) Delete(ctx context.Context, sessionID string) error {
	return r.cache.Delete(ctx, keyPrefix+sessionID)
}
