package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/core/logger"
	"storefront/internal/features/orders/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Routing keys of the order lifecycle events.
const (
	EventOrderCreated   = "order.created"
	EventOrderCompleted = "order.completed"

	eventVersion = 1
	producerName = "storefront"
)

// MessagePublisher is the broker operation the event adapter needs.
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// Envelope wraps every order event published to the broker.
type Envelope struct {
	EventID      string        `json:"event_id"`
	EventName    string        `json:"event_name"`
	EventVersion int           `json:"event_version"`
	Producer     string        `json:"producer"`
	PartitionKey string        `json:"partition_key"`
	OccurredAt   time.Time     `json:"occurred_at"`
	Payload      *domain.Order `json:"payload"`
}

// BrokerEventPublisher implements ports.EventPublisher over a message broker.
type BrokerEventPublisher struct {
	broker MessagePublisher
	now    func() time.Time
}

// NewBrokerEventPublisher creates a publisher that sends enveloped JSON to broker.
func NewBrokerEventPublisher(broker MessagePublisher) *BrokerEventPublisher {
	return &BrokerEventPublisher{
		broker: broker,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// OrderCreated announces a new pending order.
func (p *BrokerEventPublisher) OrderCreated(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, EventOrderCreated, order)
}

// OrderCompleted announces a paid order.
func (p *BrokerEventPublisher) OrderCompleted(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, EventOrderCompleted, order)
}

func (p *BrokerEventPublisher) publish(ctx context.Context, name string, order *domain.Order) error {
	body, err := json.Marshal(Envelope{
		EventID:      uuid.NewString(),
		EventName:    name,
		EventVersion: eventVersion,
		Producer:     producerName,
		PartitionKey: order.ID,
		OccurredAt:   p.now(),
		Payload:      order,
	})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	return p.broker.Publish(ctx, name, body)
}

// NoopEventPublisher logs events instead of publishing them. Used when no broker is configured.
type NoopEventPublisher struct{}

func (NoopEventPublisher) OrderCreated(_ context.Context, order *domain.Order) error {
	logSkipped(EventOrderCreated, order)
	return nil
}

func (NoopEventPublisher) OrderCompleted(_ context.Context, order *domain.Order) error {
	logSkipped(EventOrderCompleted, order)
	return nil
}

func logSkipped(name string, order *domain.Order) {
	if order == nil {
		return
	}
	logger.Get().Debug("Broker disabled, event not published",
		zap.String("event", name),
		zap.String("order_id", order.ID),
	)
}
