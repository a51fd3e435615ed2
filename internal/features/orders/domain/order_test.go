package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var items = []OrderItem{
	{ProductID: 1, Title: "Backpack", Price: 109.95, Quantity: 1, Image: "https://img/1.jpg"},
	{ProductID: 2, Title: "Ring", Price: 9.99, Quantity: 3},
}

var shipping = Shipping{Name: "Jane Doe", Address: "221B Baker Street", Phone: "5551234"}

func TestNewPendingOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	order, err := NewPendingOrder("ord-1", items, shipping, now)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, "139.92", order.Total.StringFixed(2))
	assert.Equal(t, now, order.CreatedAt)
	assert.Nil(t, order.CompletedAt)

	// The order keeps its own copy of the items.
	items[0].Quantity = 5
	assert.Equal(t, 1, order.Items[0].Quantity)
	items[0].Quantity = 1

	_, err = NewPendingOrder("ord-2", nil, shipping, now)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = NewPendingOrder("ord-3", []OrderItem{{ProductID: 1, Price: 10, Quantity: 0}}, shipping, now)
	assert.ErrorIs(t, err, ErrInvalidLineItem)
}

func TestOrder_Complete(t *testing.T) {
	now := time.Now().UTC()
	order, err := NewPendingOrder("ord-1", items, shipping, now)
	require.NoError(t, err)

	require.NoError(t, order.AttachPaymentSession("cs_1", now))
	assert.Equal(t, "cs_1", order.PaymentSessionID)

	later := now.Add(time.Minute)
	assert.True(t, order.Complete("paid", later))
	assert.True(t, order.IsCompleted())
	require.NotNil(t, order.CompletedAt)
	assert.Equal(t, later, *order.CompletedAt)

	// Completing twice is a no-op.
	assert.False(t, order.Complete("unpaid", later.Add(time.Hour)))
	assert.Equal(t, "paid", order.PaymentStatus)
	assert.Equal(t, later, *order.CompletedAt)

	assert.ErrorIs(t, order.AttachPaymentSession("cs_2", later), ErrOrderNotPending)
}

func TestOrder_MarshalJSON(t *testing.T) {
	order, err := NewPendingOrder("ord-1", items, shipping, time.Now())
	require.NoError(t, err)

	data, err := json.Marshal(order)
	require.NoError(t, err)

	jsonString := string(data)
	assert.Contains(t, jsonString, `"order_id":"ord-1"`)
	assert.Contains(t, jsonString, `"status":"pending"`)
	assert.Contains(t, jsonString, `"total":"139.92"`)
	assert.Contains(t, jsonString, `"shipping":{"name":"Jane Doe"`)
	assert.NotContains(t, jsonString, "completed_at")
}

func TestOrderStatus_Values(t *testing.T) {
	assert.Equal(t, OrderStatus("pending"), OrderStatusPending)
	assert.Equal(t, OrderStatus("completed"), OrderStatusCompleted)
}
