package adapters

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/core/cache"
	"storefront/internal/features/orders/domain"
)

const (
	orderKeyPrefix   = "order:"
	sessionKeyPrefix = "order_session:"
	completionPrefix = "order_completion:"
	orderIndexKey    = "orders"
)

// RedisOrderRepository implements ports.OrderRepository on the cache.
// Orders never expire; the "orders" set indexes every id.
type RedisOrderRepository struct {
	cache cache.Cache
}

// NewRedisOrderRepository creates a new RedisOrderRepository.
func NewRedisOrderRepository(c cache.Cache) *RedisOrderRepository {
	return &RedisOrderRepository{cache: c}
}

func (r *RedisOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if _, err := r.cache.Get(ctx, orderKeyPrefix+order.ID); err == nil {
		return fmt.Errorf("%w: %s", domain.ErrOrderExists, order.ID)
	} else if !errors.Is(err, cache.ErrNotFound) {
		return fmt.Errorf("failed to check order: %w", err)
	}

	if err := r.save(ctx, order); err != nil {
		return err
	}
	if err := r.cache.AddToSet(ctx, orderIndexKey, order.ID); err != nil {
		return fmt.Errorf("failed to index order: %w", err)
	}
	return nil
}

func (r *RedisOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	if _, err := r.Get(ctx, order.ID); err != nil {
		return err
	}
	return r.save(ctx, order)
}

// Complete claims order_completion:<id> with SETNX; only the claimant writes the completed order.
func (r *RedisOrderRepository) Complete(ctx context.Context, order *domain.Order) error {
	stored, err := r.Get(ctx, order.ID)
	if err != nil {
		return err
	}
	if stored.IsCompleted() {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotPending, order.ID)
	}

	claimed, err := r.cache.SetIfAbsent(ctx, completionPrefix+order.ID, []byte(order.PaymentSessionID), 0)
	if err != nil {
		return fmt.Errorf("failed to claim order completion: %w", err)
	}
	if !claimed {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotPending, order.ID)
	}

	if err := r.save(ctx, order); err != nil {
		_ = r.cache.Delete(ctx, completionPrefix+order.ID)
		return err
	}
	return nil
}

func (r *RedisOrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	found, err := cache.GetJSON(ctx, r.cache, orderKeyPrefix+id, &order)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	return &order, nil
}

func (r *RedisOrderRepository) GetByPaymentSession(ctx context.Context, sessionID string) (*domain.Order, error) {
	id, err := r.cache.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, fmt.Errorf("%w: session %s", domain.ErrOrderNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to resolve payment session: %w", err)
	}
	return r.Get(ctx, string(id))
}

func (r *RedisOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	ids, err := r.cache.SetMembers(ctx, orderIndexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		order, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrOrderNotFound) {
				continue
			}
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

func (r *RedisOrderRepository) save(ctx context.Context, order *domain.Order) error {
	if err := cache.SetJSON(ctx, r.cache, orderKeyPrefix+order.ID, order, 0); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	if order.PaymentSessionID != "" {
		if err := r.cache.Set(ctx, sessionKeyPrefix+order.PaymentSessionID, []byte(order.ID), 0); err != nil {
			return fmt.Errorf("failed to index payment session: %w", err)
		}
	}
	return nil
}
