package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the current state of an order.
type OrderStatus string

const (
	// OrderStatusPending indicates the order awaits payment confirmation.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusCompleted indicates the payment was confirmed. It is terminal.
	OrderStatusCompleted OrderStatus = "completed"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderExists       = errors.New("order already exists")
	ErrSessionMismatch   = errors.New("payment session does not match order")
	ErrOrderNotPending   = errors.New("order is not pending")
	ErrPaymentIncomplete = errors.New("payment not completed")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInvalidLineItem   = errors.New("order item must have a positive quantity and a non-negative price")
)

// Shipping is the delivery contact of an order.
type Shipping struct {
	// Name is the recipient's full name.
	Name string `json:"name"`
	// Address is the delivery address.
	Address string `json:"address"`
	// Phone is the contact number, digits only.
	Phone string `json:"phone"`
}

// OrderItem represents an individual item within an order.
type OrderItem struct {
	// ProductID is the catalog identifier of the product.
	ProductID int `json:"product_id"`
	// Title is the product name at purchase time.
	Title string `json:"title"`
	// Price is the unit price at purchase time.
	Price float64 `json:"price"`
	// Quantity is the number of units purchased.
	Quantity int `json:"quantity"`
	// Image is the URL to an image of the product.
	Image string `json:"image"`
}

// Subtotal is price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a customer order in the system.
type Order struct {
	// ID is the unique identifier for the order.
	ID string `json:"order_id"`
	// Status is pending until the payment is confirmed.
	Status OrderStatus `json:"status"`
	// Items is the cart snapshot taken at checkout.
	Items []OrderItem `json:"items"`
	// Shipping is the validated delivery contact.
	Shipping Shipping `json:"shipping"`
	// Total is the sum of item subtotals.
	Total decimal.Decimal `json:"total"`
	// PaymentSessionID links the order to its hosted checkout session.
	PaymentSessionID string `json:"payment_session_id,omitempty"`
	// PaymentStatus is the provider's payment status once completed.
	PaymentStatus string `json:"payment_status,omitempty"`
	// CreatedAt is the timestamp when the order was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp of the last change.
	UpdatedAt time.Time `json:"updated_at"`
	// CompletedAt is set when the order is completed.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewPendingOrder builds a pending order and computes its total.
func NewPendingOrder(id string, items []OrderItem, shipping Shipping, now time.Time) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	total := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 || item.Price < 0 {
			return nil, ErrInvalidLineItem
		}
		total = total.Add(item.Subtotal())
	}

	snapshot := make([]OrderItem, len(items))
	copy(snapshot, items)

	return &Order{
		ID:        id,
		Status:    OrderStatusPending,
		Items:     snapshot,
		Shipping:  shipping,
		Total:     total,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AttachPaymentSession links a hosted checkout session to a pending order.
func (o *Order) AttachPaymentSession(sessionID string, now time.Time) error {
	if o.Status != OrderStatusPending {
		return ErrOrderNotPending
	}
	o.PaymentSessionID = sessionID
	o.UpdatedAt = now
	return nil
}

// Complete marks the order completed. It reports false when the order already was.
func (o *Order) Complete(paymentStatus string, now time.Time) bool {
	if o.Status == OrderStatusCompleted {
		return false
	}
	o.Status = OrderStatusCompleted
	o.PaymentStatus = paymentStatus
	o.UpdatedAt = now
	o.CompletedAt = &now
	return true
}

// IsCompleted reports whether the payment was confirmed.
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}
