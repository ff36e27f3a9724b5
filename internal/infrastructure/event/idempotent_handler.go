package event

import (
	"context"
	"sync/atomic"

	"github.com/affiliate/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DeliveryStats counts what an IdempotentHandler did with the events it saw
type DeliveryStats struct {
	Delivered  int64 `json:"delivered"`
	Duplicates int64 `json:"duplicates"`
	Failed     int64 `json:"failed"`
}

// IdempotentHandler delivers each event id to the wrapped handler at most once per TTL.
// A failed delivery releases the id so the event can be delivered again.
type IdempotentHandler struct {
	handler   shared.EventHandler
	store     shared.IdempotencyStore
	config    shared.IdempotencyConfig
	keyPrefix string
	logger    *zap.Logger

	delivered  atomic.Int64
	duplicates atomic.Int64
	failed     atomic.Int64
}

// IdempotentHandlerOption configures an IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig overrides the default TTL and enabled flag
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.config = config
	}
}

// WithDeliveryKeyPrefix namespaces the event ids, so several sinks can share one store
func WithDeliveryKeyPrefix(prefix string) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.keyPrefix = prefix
	}
}

// NewIdempotentHandler wraps handler with event-id deduplication
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, logger *zap.Logger, opts ...IdempotentHandlerOption) *IdempotentHandler {
	h := &IdempotentHandler{
		handler:   handler,
		store:     store,
		config:    shared.DefaultIdempotencyConfig(),
		keyPrefix: "event:",
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle delivers the event unless its id was already delivered
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, event)
	}

	key := h.keyPrefix + event.EventID().String()
	claimed, err := h.store.MarkProcessed(ctx, key, h.config.TTL)
	if err != nil {
		// fail open: a duplicate downstream beats a lost event
		h.logger.Warn("idempotency check failed, delivering anyway",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	} else if !claimed {
		h.duplicates.Add(1)
		h.logger.Debug("duplicate event skipped",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.failed.Add(1)
		if claimed {
			if relErr := h.store.Release(context.WithoutCancel(ctx), key); relErr != nil {
				h.logger.Warn("failed to release event id",
					zap.String("event_id", event.EventID().String()),
					zap.Error(relErr),
				)
			}
		}
		return err
	}

	h.delivered.Add(1)
	return nil
}

// Stats returns a snapshot of delivery counters
func (h *IdempotentHandler) Stats() DeliveryStats {
	return DeliveryStats{
		Delivered:  h.delivered.Load(),
		Duplicates: h.duplicates.Load(),
		Failed:     h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
