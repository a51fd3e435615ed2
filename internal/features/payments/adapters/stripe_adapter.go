package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/core/config"
	"storefront/internal/core/httpclient"
	"storefront/internal/core/logger"
	"storefront/internal/features/payments/domain"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// DefaultTolerance is the maximum age of a webhook signature.
const DefaultTolerance = 5 * time.Minute

// StripeAdapter implements PaymentProvider, SessionReader and WebhookVerifier with the Stripe SDK.
type StripeAdapter struct {
	// sessions is the checkout session API client.
	sessions *session.Client
	// webhookSecret signs provider notifications.
	webhookSecret string
	tolerance     time.Duration
}

// NewStripeAdapter creates a new instance of StripeAdapter.
// cfg.APIURL overrides the SDK's API host, which lets tests point it at a local server.
func NewStripeAdapter(cfg config.PaymentConfig) *StripeAdapter {
	backendConfig := &stripe.BackendConfig{
		HTTPClient:        httpclient.NewClient("payments", 15*time.Second),
		LeveledLogger:     logger.Named("stripe").Sugar(),
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.APIURL != "" {
		backendConfig.URL = stripe.String(cfg.APIURL)
	}

	return &StripeAdapter{
		sessions: &session.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
			Key: cfg.SecretKey,
		},
		webhookSecret: cfg.WebhookSecret,
		tolerance:     DefaultTolerance,
	}
}

// CreateSession creates a hosted checkout session in payment mode.
// The order id is the idempotency key, so a retried checkout reuses the same session.
func (a *StripeAdapter) CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		ClientReferenceID:  stripe.String(req.OrderID),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.OrderID)
	params.AddMetadata("order_id", req.OrderID)

	for _, item := range req.Items {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Image != "" {
			productData.Images = stripe.StringSlice([]string{item.Image})
		}

		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(req.Currency),
				UnitAmount:  stripe.Int64(item.UnitAmount),
				ProductData: productData,
			},
		})
	}

	s, err := a.sessions.New(params)
	if err != nil {
		return nil, providerError(err)
	}
	if s.ID == "" || s.URL == "" {
		return nil, fmt.Errorf("%w: session without id or url", domain.ErrProvider)
	}

	return toSession(s), nil
}

// GetSession fetches the current state of a checkout session.
func (a *StripeAdapter) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := a.sessions.Get(id, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
		}
		return nil, providerError(err)
	}

	return toSession(s), nil
}

// ParseEvent verifies the Stripe-Signature header over payload and decodes the event.
func (a *StripeAdapter) ParseEvent(payload []byte, signatureHeader string) (*domain.Event, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signatureHeader, a.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                a.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if errors.Is(err, webhook.ErrTooOld) {
			return nil, domain.ErrSignatureExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	out := &domain.Event{
		ID:      evt.ID,
		Type:    string(evt.Type),
		Created: time.Unix(evt.Created, 0).UTC(),
	}

	if evt.Data != nil && len(evt.Data.Raw) > 0 {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("failed to decode event object: %w", err)
		}
		out.SessionID = s.ID
		out.OrderID = s.Metadata["order_id"]
		out.PaymentStatus = string(s.PaymentStatus)
	}

	return out, nil
}

func toSession(s *stripe.CheckoutSession) *domain.Session {
	orderID := s.Metadata["order_id"]
	if orderID == "" {
		orderID = s.ClientReferenceID
	}

	return &domain.Session{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		OrderID:       orderID,
	}
}

func providerError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return fmt.Errorf("%w: %s (status %d)", domain.ErrProvider, stripeErr.Msg, stripeErr.HTTPStatusCode)
	}
	return fmt.Errorf("%w: %v", domain.ErrProvider, err)
}
