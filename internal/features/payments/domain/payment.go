package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// EventCheckoutCompleted is sent when a shopper finishes a hosted checkout.
const EventCheckoutCompleted = "checkout.session.completed"

const (
	// PaymentStatusPaid is the provider status of a captured payment.
	PaymentStatusPaid = "paid"
	// PaymentStatusUnpaid is reported while the shopper has not paid yet.
	PaymentStatusUnpaid = "unpaid"
)

var (
	// ErrProvider wraps failures reported by the payment provider.
	ErrProvider = errors.New("payment provider error")
	// ErrInvalidSignature is returned when a webhook signature does not verify.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrSignatureExpired is returned when a webhook timestamp is outside the tolerance.
	ErrSignatureExpired = errors.New("webhook signature expired")
	// ErrSessionNotFound is returned when the provider has no such checkout session.
	ErrSessionNotFound = errors.New("payment session not found")
)

// LineItem is one row of a hosted checkout.
type LineItem struct {
	Name string
	// Image is an optional product picture URL.
	Image string
	// UnitAmount is the price in minor currency units.
	UnitAmount int64
	Quantity   int
}

// SessionRequest describes the hosted checkout to create.
type SessionRequest struct {
	OrderID    string
	Currency   string
	SuccessURL string
	CancelURL  string
	Items      []LineItem
}

// Session is a hosted checkout as reported by the provider.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
	// PaymentStatus is "paid" once the payment was captured.
	PaymentStatus string `json:"payment_status,omitempty"`
	// OrderID is the order reference stored on the session at creation.
	OrderID string `json:"order_id,omitempty"`
}

// IsPaid reports whether the provider captured the payment.
func (s *Session) IsPaid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

// Event is a verified provider notification.
type Event struct {
	ID            string
	Type          string
	SessionID     string
	OrderID       string
	PaymentStatus string
	Created       time.Time
}

// ToMinorUnits converts a price to integer cents, rounding half away from zero.
func ToMinorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).Shift(2).Round(0).IntPart()
}
