package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/metrics"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/models/events"
)

// transactionsTable is the change stream the reconciler subscribes to.
const transactionsTable = "transactions"

var errFeedClosed = errors.New("change feed closed")

// State is the reconciler's connection state.
type State int32

const (
	Disconnected State = iota
	Subscribing
	Streaming
)

func (s State) String() string {
	switch s {
	case Subscribing:
		return "subscribing"
	case Streaming:
		return "streaming"
	}
	return "disconnected"
}

// Reconciler keeps one Cache converged with the store's change feed. Each
// cycle subscribes with an account filter, seeds the cache from a baseline
// fetch, then applies events until the feed drops. A dropped feed triggers
// a full resync rather than gap-filling: the feed offers no replay cursor.
type Reconciler struct {
	cache  *Cache
	feed   interfaces.ChangeFeed
	logger *slog.Logger

	// resubscribeDelay is the pause before reconnecting after a fault.
	resubscribeDelay time.Duration

	state atomic.Int32
}

// NewReconciler wires a reconciler for one account cache.
func NewReconciler(cache *Cache, feed interfaces.ChangeFeed, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		cache:            cache,
		feed:             feed,
		logger:           logger,
		resubscribeDelay: time.Second,
	}
}

// State returns the current connection state.
func (r *Reconciler) State() State {
	return State(r.state.Load())
}

func (r *Reconciler) setState(s State) {
	r.state.Store(int32(s))
}

// Run drives the subscribe/resync loop until ctx is cancelled. On cancel
// the subscription is released and the cache is left as last applied.
func (r *Reconciler) Run(ctx context.Context) error {
	defer r.setState(Disconnected)

	for {
		err := r.stream(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.setState(Disconnected)
		r.logger.Warn("change feed dropped, resubscribing",
			"account_id", r.cache.AccountID(),
			"err", err,
		)
		metrics.ReconcilerResyncs.Inc()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.resubscribeDelay):
		}
	}
}

// stream runs one subscription cycle: subscribe, baseline, apply events.
// The baseline runs after the subscription is acknowledged, so events that
// arrive during the fetch sit in the channel and land afterwards through
// the idempotent merge — no gap, no duplicate initial entries.
func (r *Reconciler) stream(ctx context.Context) error {
	r.setState(Subscribing)

	filter := interfaces.Filter{Column: "account_id", Value: r.cache.AccountID().String()}
	sub, err := r.feed.Subscribe(ctx, transactionsTable, filter)
	if err != nil {
		return err
	}
	defer sub.Close()

	baseline, err := r.cache.store.TransactionsByAccount(ctx, r.cache.AccountID())
	if err != nil {
		return err
	}
	r.cache.Reset(baseline)
	r.setState(Streaming)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change, ok := <-sub.Events():
			if !ok {
				if err := sub.Err(); err != nil {
					return err
				}
				return errFeedClosed
			}
			r.cache.Apply(change)
			metrics.FeedEvents.WithLabelValues(string(events.KindOf(change))).Inc()
		}
	}
}
