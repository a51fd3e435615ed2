package service

import (
	"context"
	"fmt"

	"storefront/internal/features/alerts/domain"
	"storefront/internal/features/alerts/ports"
)

// AlertServiceImpl implements ports.AlertService.
type AlertServiceImpl struct {
	repo ports.AlertRepository
}

// NewAlertService creates a new AlertServiceImpl.
func NewAlertService(repo ports.AlertRepository) *AlertServiceImpl {
	return &AlertServiceImpl{repo: repo}
}

// Notify replaces the session's current alert.
func (s *AlertServiceImpl) Notify(ctx context.Context, sessionID string, alertType domain.AlertType, message string) error {
	alert, err := domain.NewAlert(alertType, message)
	if err != nil {
		return err
	}

	if err := s.repo.Save(ctx, sessionID, alert); err != nil {
		return fmt.Errorf("service: failed to save alert: %w", err)
	}
	return nil
}

// Current returns the session's alert, or nil.
func (s *AlertServiceImpl) Current(ctx context.Context, sessionID string) (*domain.Alert, error) {
	alert, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get alert: %w", err)
	}
	return alert, nil
}

// Dismiss removes the session's alert.
func (s *AlertServiceImpl) Dismiss(ctx context.Context, sessionID string) error {
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("service: failed to dismiss alert: %w", err)
	}
	return nil
}
