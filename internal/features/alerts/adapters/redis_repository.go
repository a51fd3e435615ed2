package adapters

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/core/cache"
	"storefront/internal/features/alerts/domain"
)

const alertKeyPrefix = "alert:"

// RedisAlertRepository implements ports.AlertRepository using the cache.
type RedisAlertRepository struct {
	cache cache.Cache
	// ttl bounds how long an undismissed alert is shown.
	ttl time.Duration
}

// NewRedisAlertRepository creates a new RedisAlertRepository.
func NewRedisAlertRepository(c cache.Cache, ttl time.Duration) *RedisAlertRepository {
	return &RedisAlertRepository{cache: c, ttl: ttl}
}

// Save replaces the session's alert.
func (r *RedisAlertRepository) Save(ctx context.Context, sessionID string, alert *domain.Alert) error {
	if err := cache.SetJSON(ctx, r.cache, alertKeyPrefix+sessionID, alert, r.ttl); err != nil {
		return fmt.Errorf("failed to save alert to cache: %w", err)
	}
	return nil
}

// Get returns the session's alert, or nil when there is none.
func (r *RedisAlertRepository) Get(ctx context.Context, sessionID string) (*domain.Alert, error) {
	var alert domain.Alert
	found, err := cache.GetJSON(ctx, r.cache, alertKeyPrefix+sessionID, &alert)
	if err != nil {
		return nil, fmt.Errorf("failed to get alert from cache: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &alert, nil
}

// Delete removes the session's alert.
func (r *RedisAlertRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.cache.Delete(ctx, alertKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("failed to delete alert from cache: %w", err)
	}
	return nil
}
