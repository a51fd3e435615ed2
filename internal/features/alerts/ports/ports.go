package ports

import (
	"context"

	"storefront/internal/features/alerts/domain"
)

// AlertService defines the primary port for alert operations.
type AlertService interface {
	Notify(ctx context.Context, sessionID string, alertType domain.AlertType, message string) error
	Current(ctx context.Context, sessionID string) (*domain.Alert, error)
	Dismiss(ctx context.Context, sessionID string) error
}

// AlertRepository defines the secondary port for alert storage.
type AlertRepository interface {
	Save(ctx context.Context, sessionID string, alert *domain.Alert) error
	Get(ctx context.Context, sessionID string) (*domain.Alert, error)
	Delete(ctx context.Context, sessionID string) error
}
