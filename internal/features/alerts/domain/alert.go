package domain

import (
	"errors"
	"strings"
	"time"
)

// AlertType is the severity of a user-facing notification.
type AlertType string

const (
	AlertTypeSuccess AlertType = "success"
	AlertTypeError   AlertType = "error"
)

var (
	ErrInvalidAlertType = errors.New("invalid alert type")
	ErrEmptyMessage     = errors.New("alert message cannot be empty")
)

// Alert is a transient notification shown to one shopper session.
type Alert struct {
	Type      AlertType `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAlert creates a new Alert and validates it.
func NewAlert(alertType AlertType, message string) (*Alert, error) {
	if alertType != AlertTypeSuccess && alertType != AlertTypeError {
		return nil, ErrInvalidAlertType
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	return &Alert{
		Type:      alertType,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}, nil
}
