// Package hub is the in-process change feed transport, used in local mode
// and in tests. It implements both sides of the feed: EventPublisher for
// the store decorator and ChangeFeed for reconcilers.
package hub

import (
	"context"
	"fmt"
	"sync"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/models/events"
)

// Hub fans change events out to filtered subscribers. Each subscriber gets
// a buffered channel; a subscriber that falls behind has events dropped
// rather than blocking the publisher, and recovers via resync.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*subscription]struct{})}
}

// Publish routes a change envelope to every subscription whose topic and
// filter match.
func (h *Hub) Publish(ctx context.Context, topic string, event any) error {
	envelope, ok := event.(events.Envelope)
	if !ok {
		return fmt.Errorf("hub: unsupported event type %T", event)
	}
	change, err := envelope.Change()
	if err != nil {
		return fmt.Errorf("hub: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub.topic != topic {
			continue
		}
		if !sub.filter.Matches(events.AccountID(change).String()) {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			// Subscriber too slow — drop.
		}
	}
	return nil
}

// Subscribe registers a filtered subscription on a table's change stream.
func (h *Hub) Subscribe(ctx context.Context, table string, filter interfaces.Filter) (interfaces.Subscription, error) {
	sub := &subscription{
		hub:    h,
		topic:  table,
		filter: filter,
		ch:     make(chan events.Change, 32),
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub, nil
}

// SubscriberCount returns the number of live subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

type subscription struct {
	hub    *Hub
	topic  string
	filter interfaces.Filter
	ch     chan events.Change
	once   sync.Once
}

func (s *subscription) Events() <-chan events.Change { return s.ch }

// Err is always nil for the in-process hub: the only way its stream ends is
// an explicit Close.
func (s *subscription) Err() error { return nil }

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		s.hub.mu.Unlock()
		close(s.ch)
	})
	return nil
}

// Compile-time checks: Hub serves both feed roles.
var (
	_ interfaces.EventPublisher = (*Hub)(nil)
	_ interfaces.ChangeFeed     = (*Hub)(nil)
)
