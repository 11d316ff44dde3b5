package interfaces

import "context"

// EventPublisher delivers change-event envelopes to a feed transport.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
}
