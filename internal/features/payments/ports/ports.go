package ports

import (
	"context"

	"storefront/internal/features/payments/domain"
)

// PaymentProvider creates hosted checkout sessions.
// This is a Secondary Port (Driven Port).
type PaymentProvider interface {
	CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.Session, error)
}

// SessionReader looks up the current state of a checkout session.
type SessionReader interface {
	GetSession(ctx context.Context, id string) (*domain.Session, error)
}

// WebhookVerifier authenticates and decodes provider notifications.
type WebhookVerifier interface {
	ParseEvent(payload []byte, signatureHeader string) (*domain.Event, error)
}
