package broker

import (
	"context"

	"order-api/internal/models"
)

// Publisher publishes order lifecycle events. Publishing is best-effort:
// callers log failures and never fail the request over them.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusUpdated(ctx context.Context, event *models.OrderStatusUpdatedEvent) error
}

// EventPublisher publishes events through a Kafka producer, keyed by order id
// so events for one order stay ordered.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderCreated publishes an OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, event.Order.OrderID, event)
}

// PublishOrderStatusUpdated publishes an OrderStatusUpdated event
func (ep *EventPublisher) PublishOrderStatusUpdated(ctx context.Context, event *models.OrderStatusUpdatedEvent) error {
	return ep.producer.PublishEvent(ctx, event.OrderID, event)
}

// NopPublisher discards events. Used when Kafka is disabled so the service
// runs standalone.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, *models.OrderCreatedEvent) error {
	return nil
}

func (NopPublisher) PublishOrderStatusUpdated(context.Context, *models.OrderStatusUpdatedEvent) error {
	return nil
}
