package adapters

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/core/cache"
	"storefront/internal/features/cart/domain"
)

const keyPrefix = "cart:"

// RedisRepository implements ports.CartRepository using the cache.
type RedisRepository struct {
	// cache stores carts as JSON documents.
	cache cache.Cache
	// ttl is refreshed on every save.
	ttl time.Duration
}

// NewRedisRepository creates a new instance of RedisRepository.
func NewRedisRepository(c cache.Cache, ttl time.Duration) *RedisRepository {
	return &RedisRepository{cache: c, ttl: ttl}
}

// Get loads the cart of sessionID.
func (r *RedisRepository) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart := domain.New(sessionID)
	found, err := cache.GetJSON(ctx, r.cache, keyPrefix+sessionID, cart)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if !found {
		return domain.New(sessionID), nil
	}
	if cart.Items == nil {
		cart.Items = []domain.Item{}
	}
	return cart, nil
}

// Save stores the cart and refreshes its expiry. An empty cart is removed instead.
func (r *RedisRepository) Save(ctx context.Context, cart *domain.Cart) error {
	if cart.IsEmpty() {
		return r.Delete(ctx, cart.SessionID)
	}
	if err := cache.SetJSON(ctx, r.cache, keyPrefix+cart.SessionID, cart, r.ttl); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the cart of sessionID.
func (r *RedisRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.cache.Delete(ctx, keyPrefix+sessionID); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
