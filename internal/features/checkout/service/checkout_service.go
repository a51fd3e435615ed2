package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"storefront/internal/core/logger"
	"storefront/internal/core/metrics"
	cart "storefront/internal/features/cart/domain"
	"storefront/internal/features/checkout/domain"
	"storefront/internal/features/checkout/ports"
	orders "storefront/internal/features/orders/domain"
	payments "storefront/internal/features/payments/domain"
	payports "storefront/internal/features/payments/ports"

	"go.uber.org/zap"
)

// sessionPlaceholder is replaced by the payment provider with the checkout session id.
const sessionPlaceholder = "{CHECKOUT_SESSION_ID}"

// Options configures CheckoutService.
type Options struct {
	// BaseURL is the public origin the provider redirects back to.
	BaseURL  string
	Currency string
	Metrics  *metrics.Metrics
}

// CheckoutService turns a cart into a pending order and a hosted payment session.
type CheckoutService struct {
	orders   ports.OrderCreator
	payments payports.PaymentProvider
	baseURL  string
	currency string
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewCheckoutService creates a new instance of CheckoutService.
func NewCheckoutService(o ports.OrderCreator, p payports.PaymentProvider, opts Options) *CheckoutService {
	return &CheckoutService{
		orders:   o,
		payments: p,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		currency: opts.Currency,
		metrics:  opts.Metrics,
		log:      logger.Named("checkout"),
	}
}

// CreateSession stores a pending order for items, opens a payment session for it and returns the redirect URL.
func (s *CheckoutService) CreateSession(ctx context.Context, info domain.CustomerInfo, items []cart.Item) (string, error) {
	if len(items) == 0 {
		return "", domain.ErrEmptyCart
	}

	start := time.Now()
	defer func() { s.metrics.ObserveCheckoutDuration(time.Since(start).Seconds()) }()

	order, err := s.orders.CreatePending(ctx, toOrderItems(items), orders.Shipping{
		Name:    info.Name,
		Address: info.Address,
		Phone:   info.Phone,
	})
	if err != nil {
		s.metrics.Checkout(metrics.OutcomeFailed)
		return "", fmt.Errorf("failed to create order: %w", err)
	}

	session, err := s.payments.CreateSession(ctx, payments.SessionRequest{
		OrderID:    order.ID,
		Currency:   s.currency,
		SuccessURL: s.successURL(order.ID),
		CancelURL:  s.baseURL + "/checkout",
		Items:      toLineItems(items),
	})
	if err != nil {
		s.metrics.Checkout(metrics.OutcomeFailed)
		return "", fmt.Errorf("failed to create payment session: %w", err)
	}

	if _, err := s.orders.AttachPaymentSession(ctx, order.ID, session.ID); err != nil {
		s.metrics.Checkout(metrics.OutcomeFailed)
		return "", fmt.Errorf("failed to attach payment session: %w", err)
	}

	s.metrics.Checkout(metrics.OutcomeCreated)
	s.log.Info("Checkout session created",
		zap.String("order_id", order.ID),
		zap.String("session_id", session.ID),
		zap.String("total", order.Total.StringFixed(2)),
	)

	return session.URL, nil
}

func (s *CheckoutService) successURL(orderID string) string {
	return s.baseURL + "/orders/confirm?session_id=" + sessionPlaceholder + "&order_id=" + url.QueryEscape(orderID)
}

func toOrderItems(items []cart.Item) []orders.OrderItem {
	out := make([]orders.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, orders.OrderItem{
			ProductID: it.ID,
			Title:     it.Title,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}
	return out
}

func toLineItems(items []cart.Item) []payments.LineItem {
	out := make([]payments.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, payments.LineItem{
			Name:       it.Title,
			Image:      it.Image,
			UnitAmount: payments.ToMinorUnits(it.Price),
			Quantity:   it.Quantity,
		})
	}
	return out
}
