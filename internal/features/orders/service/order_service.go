package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"storefront/internal/core/logger"
	"storefront/internal/core/metrics"
	"storefront/internal/features/orders/domain"
	"storefront/internal/features/orders/ports"
	payments "storefront/internal/features/payments/domain"
	payports "storefront/internal/features/payments/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles the order lifecycle from checkout to payment confirmation.
type OrderService struct {
	// repo is the order store selected by configuration.
	repo ports.OrderRepository
	// events receives lifecycle notifications; failures are logged only.
	events ports.EventPublisher
	// sessions is asked for the payment status before a redirect completes an order.
	sessions payports.SessionReader
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

// NewOrderService creates a new instance of OrderService. m may be nil.
func NewOrderService(repo ports.OrderRepository, events ports.EventPublisher, sessions payports.SessionReader, m *metrics.Metrics) *OrderService {
	return &OrderService{
		repo:     repo,
		events:   events,
		sessions: sessions,
		metrics:  m,
		log:      logger.Named("orders"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreatePending stores a new pending order for the given cart snapshot.
func (s *OrderService) CreatePending(ctx context.Context, items []domain.OrderItem, shipping domain.Shipping) (*domain.Order, error) {
	order, err := domain.NewPendingOrder(uuid.NewString(), items, shipping, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to store order: %w", err)
	}

	s.metrics.OrderCreated()
	if err := s.events.OrderCreated(ctx, order); err != nil {
		s.log.Warn("Failed to publish order created", zap.String("order_id", order.ID), zap.Error(err))
	}

	return order, nil
}

// AttachPaymentSession links a hosted checkout session to a pending order.
func (s *OrderService) AttachPaymentSession(ctx context.Context, orderID, sessionID string) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.AttachPaymentSession(sessionID, s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return order, nil
}

// Finalize completes an order from the shopper's return redirect.
// The session id must be the one attached at checkout and the provider must report it paid.
// Completing twice returns the order unchanged.
func (s *OrderService) Finalize(ctx context.Context, orderID, sessionID string) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.PaymentSessionID == "" || order.PaymentSessionID != sessionID {
		return nil, domain.ErrSessionMismatch
	}

	return s.confirm(ctx, order)
}

// FinalizeBySession completes the order linked to a checkout session once the provider reports it paid.
func (s *OrderService) FinalizeBySession(ctx context.Context, sessionID string) (*domain.Order, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionMismatch
	}

	order, err := s.repo.GetByPaymentSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.confirm(ctx, order)
}

// HandlePaymentEvent completes the order referenced by a verified provider event.
// Events other than a completed checkout are ignored and return a nil order.
// A completed checkout that is not paid yet leaves the order pending.
func (s *OrderService) HandlePaymentEvent(ctx context.Context, evt *payments.Event) (*domain.Order, error) {
	if evt.Type != payments.EventCheckoutCompleted {
		s.log.Debug("Ignoring payment event", zap.String("event_id", evt.ID), zap.String("type", evt.Type))
		return nil, nil
	}

	var (
		order *domain.Order
		err   error
	)
	if evt.OrderID != "" {
		order, err = s.repo.Get(ctx, evt.OrderID)
		if err == nil && order.PaymentSessionID != "" && order.PaymentSessionID != evt.SessionID {
			return nil, domain.ErrSessionMismatch
		}
	} else {
		order, err = s.repo.GetByPaymentSession(ctx, evt.SessionID)
	}
	if err != nil {
		return nil, err
	}

	status := evt.PaymentStatus
	if status == "" {
		status = payments.PaymentStatusPaid
	}
	if status != payments.PaymentStatusPaid && !order.IsCompleted() {
		return nil, fmt.Errorf("%w: %s", domain.ErrPaymentIncomplete, status)
	}
	return s.complete(ctx, order, status)
}

// GetOrder returns one order.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.Get(ctx, id)
}

// ListOrders returns every order, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// confirm asks the provider for the session state before completing a pending order.
func (s *OrderService) confirm(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order.IsCompleted() {
		return order, nil
	}

	session, err := s.sessions.GetSession(ctx, order.PaymentSessionID)
	if err != nil {
		if errors.Is(err, payments.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %v", domain.ErrSessionMismatch, err)
		}
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}
	if session.OrderID != "" && session.OrderID != order.ID {
		return nil, domain.ErrSessionMismatch
	}
	if !session.IsPaid() {
		s.log.Info("Payment not completed yet",
			zap.String("order_id", order.ID),
			zap.String("payment_status", session.PaymentStatus),
		)
		return nil, fmt.Errorf("%w: %s", domain.ErrPaymentIncomplete, session.PaymentStatus)
	}

	return s.complete(ctx, order, session.PaymentStatus)
}

// complete persists the transition through the repository's pending guard, so only one caller publishes.
func (s *OrderService) complete(ctx context.Context, order *domain.Order, paymentStatus string) (*domain.Order, error) {
	if !order.Complete(paymentStatus, s.now()) {
		return order, nil
	}

	if err := s.repo.Complete(ctx, order); err != nil {
		if errors.Is(err, domain.ErrOrderNotPending) {
			s.log.Debug("Order already completed by another request", zap.String("order_id", order.ID))
			return s.repo.Get(ctx, order.ID)
		}
		return nil, fmt.Errorf("failed to complete order: %w", err)
	}

	s.metrics.OrderCompleted()
	s.log.Info("Order completed", zap.String("order_id", order.ID), zap.String("payment_status", paymentStatus))

	if err := s.events.OrderCompleted(ctx, order); err != nil {
		s.log.Warn("Failed to publish order completed", zap.String("order_id", order.ID), zap.Error(err))
	}
	return order, nil
}
