package ports

import (
	"context"

	"storefront/internal/features/cart/domain"
	catalog "storefront/internal/features/catalog/domain"
)

// CartRepository persists carts per session.
// This is a Secondary Port (Driven Port).
type CartRepository interface {
	// Get returns the session's cart, or an empty cart when none is stored.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	// Save replaces the stored cart.
	Save(ctx context.Context, cart *domain.Cart) error
	// Delete forgets the session's cart.
	Delete(ctx context.Context, sessionID string) error
}

// ProductFinder looks up catalog products by id.
type ProductFinder interface {
	GetProduct(ctx context.Context, id int) (*catalog.Product, error)
}

// CartService is the Primary Port used by HTTP handlers and checkout.
type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddProduct(ctx context.Context, sessionID string, productID int) (*domain.Cart, error)
	RemoveProduct(ctx context.Context, sessionID string, productID int) (*domain.Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
}
