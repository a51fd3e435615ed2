package ports

import (
	"context"

	cart "storefront/internal/features/cart/domain"
	"storefront/internal/features/checkout/domain"
	orders "storefront/internal/features/orders/domain"
)

// OrderCreator records the pending order behind a checkout.
// This is a Secondary Port (Driven Port).
type OrderCreator interface {
	CreatePending(ctx context.Context, items []orders.OrderItem, shipping orders.Shipping) (*orders.Order, error)
	AttachPaymentSession(ctx context.Context, orderID, sessionID string) (*orders.Order, error)
}

// SessionCreator is the Primary Port used by the checkout handler.
type SessionCreator interface {
	// CreateSession creates the pending order and the hosted payment page and returns its URL.
	CreateSession(ctx context.Context, info domain.CustomerInfo, items []cart.Item) (string, error)
}
