package service

import (
	"context"
	"fmt"

	"storefront/internal/core/metrics"
	"storefront/internal/features/cart/domain"
	"storefront/internal/features/cart/ports"
)

// CartService implements cart operations for a session.
type CartService struct {
	repo     ports.CartRepository
	products ports.ProductFinder
	metrics  *metrics.Metrics
}

// NewCartService creates a new instance of CartService. m may be nil.
func NewCartService(repo ports.CartRepository, products ports.ProductFinder, m *metrics.Metrics) *CartService {
	return &CartService{repo: repo, products: products, metrics: m}
}

// GetCart returns the session's cart.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return s.repo.Get(ctx, sessionID)
}

// AddProduct looks the product up in the catalog and adds one unit.
func (s *CartService) AddProduct(ctx context.Context, sessionID string, productID int) (*domain.Cart, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Add(*product)
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}

	s.metrics.CartMutation("add")
	return cart, nil
}

// RemoveProduct removes one unit of productID.
func (s *CartService) RemoveProduct(ctx context.Context, sessionID string, productID int) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Remove(productID)
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}

	s.metrics.CartMutation("remove")
	return cart, nil
}

// ClearCart empties the session's cart.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear cart for session %s: %w", sessionID, err)
	}

	cart.Clear()
	if err := s.repo.Save(ctx, cart); err != nil {
		return fmt.Errorf("failed to clear cart for session %s: %w", sessionID, err)
	}

	s.metrics.CartMutation("clear")
	return nil
}
