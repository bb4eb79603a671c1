package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"smartdiagnosis/internal/config"
	"smartdiagnosis/internal/model"
)

// Publisher emits prediction events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event *model.PredictionEvent) error
	Close() error
}

// New returns a Kafka publisher when events are enabled, otherwise a no-op.
func New(cfg config.EventsConfig) Publisher {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		return NoopPublisher{}
	}
	return NewKafkaPublisher(cfg.Brokers, cfg.Topic)
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// Publish implements Publisher
func (NoopPublisher) Publish(context.Context, *model.PredictionEvent) error { return nil }

// Close implements Publisher
func (NoopPublisher) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON events to one topic.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a writer balanced across partitions by size.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  brokers,
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		}),
	}
}

// Publish sends one event keyed by user, or by event id for anonymous requests.
func (p *KafkaPublisher) Publish(ctx context.Context, event *model.PredictionEvent) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("could not write prediction event: %w", err)
	}
	return nil
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encode(event *model.PredictionEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode prediction event: %w", err)
	}
	key := event.UserID
	if key == "" {
		key = event.ID
	}
	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}, nil
}
