package shared

import (
	"context"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// EventSource is an aggregate that buffers domain events until they are published
type EventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// CollectEvents drains the buffered events of every source in order
func CollectEvents(sources ...EventSource) []shared.DomainEvent {
	var events []shared.DomainEvent
	for _, src := range sources {
		if src == nil {
			continue
		}
		events = append(events, src.GetDomainEvents()...)
		src.ClearDomainEvents()
	}
	return events
}

// PublishEvents hands committed events to the publisher.
// Publishing failures are logged, never returned: the state change is already durable.
func PublishEvents(ctx context.Context, publisher shared.EventPublisher, events []shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}
