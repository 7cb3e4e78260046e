package events

import (
	"context"

	"pitstop/pkg/kafka"
	"pitstop/pkg/logger"
)

// Publisher emits one workflow event. Key is the booking id so events for
// a booking keep their order on the partition.
type Publisher interface {
	Publish(ctx context.Context, key string, eventType string, payload any)
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, key string, eventType string, payload any) {
	msg, err := kafka.NewMessage().
		WithKey(key).
		WithEventType(eventType).
		WithHeader(kafka.HeaderSource, "garage").
		WithHeader(kafka.HeaderSchemaVersion, "1").
		WithValue(payload).
		Build()
	if err != nil {
		p.log.Error("Failed to build workflow event", "event_type", eventType, "key", key, "error", err)
		return
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish workflow event", "event_type", eventType, "key", key, "error", err)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops all events; used when
// Kafka is disabled.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, string, any) {}
func (nopPublisher) Close() error                                 { return nil }
