package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/models/events"
)

// Consumer adapts a Kafka topic carrying change envelopes to the ChangeFeed
// interface. Kafka has no server-side predicate push-down, so the account
// filter is applied here, before events reach the subscription channel.
type Consumer struct {
	brokers []string
	topic   string
	logger  *slog.Logger
}

// NewConsumer creates a feed over the given brokers and topic.
func NewConsumer(brokers []string, topic string, logger *slog.Logger) *Consumer {
	return &Consumer{brokers: brokers, topic: topic, logger: logger}
}

// Subscribe starts a reader at the latest offset. There is no replay
// cursor: a subscriber that reconnects resyncs from a baseline fetch
// instead of gap-filling.
func (c *Consumer) Subscribe(ctx context.Context, table string, filter interfaces.Filter) (interfaces.Subscription, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     c.brokers,
		Topic:       c.topic,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    1 << 20,
	})

	sub := &subscription{
		reader: reader,
		ch:     make(chan events.Change, 32),
		done:   make(chan struct{}),
	}
	go sub.run(ctx, filter, c.logger)
	return sub, nil
}

type subscription struct {
	reader *kafka.Reader
	ch     chan events.Change
	done   chan struct{}

	mu        sync.Mutex
	err       error
	closeOnce sync.Once
}

// run owns the event channel: it is the only goroutine that closes it.
func (s *subscription) run(ctx context.Context, filter interfaces.Filter, logger *slog.Logger) {
	defer close(s.ch)

	for {
		message, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() == nil && !s.closed() {
				s.setErr(err)
			}
			return
		}

		// A malformed event is logged and skipped; it must never kill the
		// subscription.
		var envelope events.Envelope
		if err := json.Unmarshal(message.Value, &envelope); err != nil {
			logger.Warn("skipping undecodable change event", "err", err)
			continue
		}
		change, err := envelope.Change()
		if err != nil {
			logger.Warn("skipping malformed change event", "err", err)
			continue
		}

		if !filter.Matches(events.AccountID(change).String()) {
			continue
		}

		select {
		case s.ch <- change:
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

func (s *subscription) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *subscription) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *subscription) Events() <-chan events.Change { return s.ch }

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close releases the subscription; closing the reader unblocks run, which
// then closes the event channel.
func (s *subscription) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.reader.Close()
	})
	return nil
}

var _ interfaces.ChangeFeed = (*Consumer)(nil)
