// Package kafka carries the change feed across processes: the server
// publishes change envelopes to a topic, remote caches consume them.
package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/models/events"
)

// Publisher writes change-event envelopes to a Kafka topic. Messages are
// keyed by account id so per-account ordering survives partitioning.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	message := kafka.Message{Value: data}
	if envelope, ok := event.(events.Envelope); ok {
		if change, err := envelope.Change(); err == nil {
			message.Key = []byte(events.AccountID(change).String())
		}
	}

	return p.writer.WriteMessages(ctx, message)
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
