package event

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher forwards lifecycle events to a Kafka topic. It subscribes to the
// event bus as a handler; messages are keyed by aggregate so events for one
// payout or referral stay ordered within a partition.
type KafkaPublisher struct {
	writer     MessageWriter
	serializer *EventSerializer
	topic      string
	logger     *zap.Logger
}

// KafkaConfig holds writer settings
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// NewKafkaPublisher creates a publisher backed by a kafka-go writer
func NewKafkaPublisher(cfg KafkaConfig, serializer *EventSerializer, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: false,
	}
	return NewKafkaPublisherWithWriter(writer, cfg.Topic, serializer, logger), nil
}

// NewKafkaPublisherWithWriter wraps an existing writer
func NewKafkaPublisherWithWriter(writer MessageWriter, topic string, serializer *EventSerializer, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer:     writer,
		serializer: serializer,
		topic:      topic,
		logger:     logger,
	}
}

// EventTypes subscribes the publisher to every lifecycle event
func (p *KafkaPublisher) EventTypes() []string {
	return LifecycleEventTypes
}

// Handle writes the event envelope to the topic
func (p *KafkaPublisher) Handle(ctx context.Context, event shared.DomainEvent) error {
	value, err := p.serializer.Serialize(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.AggregateType() + ":" + event.AggregateID()),
		Value: value,
		Time:  event.OccurredAt(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
			{Key: "event_id", Value: []byte(event.EventID().String())},
			{Key: "partner_id", Value: []byte(strconv.FormatInt(event.PartnerID(), 10))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: failed to write %s to %s: %w", event.EventType(), p.topic, err)
	}

	p.logger.Debug("lifecycle event streamed",
		zap.String("topic", p.topic),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID()),
	)
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ shared.EventHandler = (*KafkaPublisher)(nil)
