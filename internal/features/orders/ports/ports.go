package ports

import (
	"context"

	"storefront/internal/features/orders/domain"
	payments "storefront/internal/features/payments/domain"
)

// OrderRepository persists orders.
// This is a Secondary Port (Driven Port).
type OrderRepository interface {
	// Create stores a new order; domain.ErrOrderExists if the id is taken.
	Create(ctx context.Context, order *domain.Order) error
	// Update replaces a stored order; domain.ErrOrderNotFound if absent.
	Update(ctx context.Context, order *domain.Order) error
	// Complete stores a completed order only if the stored copy is still pending.
	// It returns domain.ErrOrderNotPending when another caller completed it first.
	Complete(ctx context.Context, order *domain.Order) error
	// Get returns the order or domain.ErrOrderNotFound.
	Get(ctx context.Context, id string) (*domain.Order, error)
	// GetByPaymentSession returns the order linked to a checkout session or domain.ErrOrderNotFound.
	GetByPaymentSession(ctx context.Context, sessionID string) (*domain.Order, error)
	// List returns all orders, newest first.
	List(ctx context.Context) ([]domain.Order, error)
}

// EventPublisher announces order lifecycle changes.
type EventPublisher interface {
	OrderCreated(ctx context.Context, order *domain.Order) error
	OrderCompleted(ctx context.Context, order *domain.Order) error
}

// OrderService is the Primary Port used by checkout and HTTP handlers.
type OrderService interface {
	CreatePending(ctx context.Context, items []domain.OrderItem, shipping domain.Shipping) (*domain.Order, error)
	AttachPaymentSession(ctx context.Context, orderID, sessionID string) (*domain.Order, error)
	Finalize(ctx context.Context, orderID, sessionID string) (*domain.Order, error)
	FinalizeBySession(ctx context.Context, sessionID string) (*domain.Order, error)
	HandlePaymentEvent(ctx context.Context, evt *payments.Event) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}
