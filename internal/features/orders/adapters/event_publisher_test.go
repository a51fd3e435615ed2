package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMessage struct {
	key  string
	body []byte
}

type fakeBroker struct {
	messages []recordedMessage
	err      error
}

func (f *fakeBroker) Publish(_ context.Context, routingKey string, body []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, recordedMessage{key: routingKey, body: body})
	return nil
}

func TestBrokerEventPublisher(t *testing.T) {
	broker := &fakeBroker{}
	publisher := NewBrokerEventPublisher(broker)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	publisher.now = func() time.Time { return fixed }

	order := newOrder(t, "ord-1")
	ctx := context.Background()

	require.NoError(t, publisher.OrderCreated(ctx, order))
	require.NoError(t, publisher.OrderCompleted(ctx, order))
	require.Len(t, broker.messages, 2)

	assert.Equal(t, EventOrderCreated, broker.messages[0].key)
	assert.Equal(t, EventOrderCompleted, broker.messages[1].key)

	var env struct {
		EventID      string    `json:"event_id"`
		EventName    string    `json:"event_name"`
		EventVersion int       `json:"event_version"`
		Producer     string    `json:"producer"`
		PartitionKey string    `json:"partition_key"`
		OccurredAt   time.Time `json:"occurred_at"`
		Payload      struct {
			ID     string `json:"order_id"`
			Status string `json:"status"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(broker.messages[0].body, &env))

	_, err := uuid.Parse(env.EventID)
	assert.NoError(t, err)
	assert.Equal(t, EventOrderCreated, env.EventName)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "storefront", env.Producer)
	assert.Equal(t, "ord-1", env.PartitionKey)
	assert.True(t, fixed.Equal(env.OccurredAt))
	assert.Equal(t, "ord-1", env.Payload.ID)
	assert.Equal(t, "pending", env.Payload.Status)
}

func TestBrokerEventPublisher_Error(t *testing.T) {
	publisher := NewBrokerEventPublisher(&fakeBroker{err: errors.New("channel closed")})

	err := publisher.OrderCreated(context.Background(), newOrder(t, "ord-1"))
	assert.EqualError(t, err, "channel closed")
}

func TestNoopEventPublisher(t *testing.T) {
	var p NoopEventPublisher
	assert.NoError(t, p.OrderCreated(context.Background(), nil))
	assert.NoError(t, p.OrderCompleted(context.Background(), nil))
}
