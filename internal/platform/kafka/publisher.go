// Package kafka publishes ledger commit events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/tallybook/backend/internal/domain/events"
)

// DefaultTopic is the topic commit events go to unless configured otherwise.
const DefaultTopic = "ledger_commits"

// Publisher implements events.Publisher over a Kafka writer.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish implements events.Publisher. Events for the same ledger share a
// key so they stay ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, event events.CommitEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Ledger),
		Value: data,
	})
}

// Close closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
