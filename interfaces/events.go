package interfaces

import (
	"context"

	"github.com/customeros/outreachstack/internal/enum"
)

// EventsPublisher emits outreach lifecycle events on the message bus.
type EventsPublisher interface {
	PublishEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error
	Close() error
}

// EventListener consumes one event type from one queue.
type EventListener interface {
	Handle(ctx context.Context, baseEvent any) error
	GetEventType() string
	GetQueueName() string
}
