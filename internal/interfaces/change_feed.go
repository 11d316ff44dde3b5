package interfaces

import (
	"context"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/models/events"
)

// Filter is a server-side predicate of the form `column = value` scoping a
// subscription, e.g. account_id = <uuid>.
type Filter struct {
	Column string
	Value  string
}

// Matches reports whether a value satisfies the predicate.
func (f Filter) Matches(value string) bool {
	return f.Value == value
}

// Subscription is one live, filtered view of the change feed. Events is a
// potentially infinite sequence that ends only on fault or Close; the
// subscription never restarts itself.
type Subscription interface {
	// Events yields changes until the subscription ends. The channel is
	// closed on fault or Close.
	Events() <-chan events.Change

	// Err reports why the event channel closed; nil after a clean Close.
	Err() error

	// Close releases the subscription.
	Close() error
}

// ChangeFeed hands out filtered subscriptions to table mutations. Delivery
// is at-least-once with no ordering guarantee across ids and no replay
// cursor; a consumer that loses its subscription must resync from a
// baseline fetch.
type ChangeFeed interface {
	Subscribe(ctx context.Context, table string, filter Filter) (Subscription, error)
}
