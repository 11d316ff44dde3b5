// Package storage composes LedgerStore implementations with the change
// feed: every successful write emits the matching change event, which is
// how both user CRUD and transfer writes become observable to subscribed
// caches.
package storage

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/models"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/models/events"
)

// PublishingStore wraps a LedgerStore and publishes an Insert, Update or
// Delete change event after each successful transaction write. A publish
// failure is logged, not returned: the write is already durable, and a
// missed event is recovered by the next full resync.
type PublishingStore struct {
	interfaces.LedgerStore

	publisher interfaces.EventPublisher
	topic     string
	logger    *slog.Logger
}

// NewPublishingStore wires a store to a feed transport. topic names the
// table-change stream, e.g. "transactions".
func NewPublishingStore(store interfaces.LedgerStore, publisher interfaces.EventPublisher, topic string, logger *slog.Logger) *PublishingStore {
	return &PublishingStore{
		LedgerStore: store,
		publisher:   publisher,
		topic:       topic,
		logger:      logger,
	}
}

func (s *PublishingStore) InsertTransaction(ctx context.Context, tx models.Transaction) error {
	if err := s.LedgerStore.InsertTransaction(ctx, tx); err != nil {
		return err
	}
	s.publish(ctx, events.Insert{Record: tx})
	return nil
}

func (s *PublishingStore) UpdateTransaction(ctx context.Context, tx models.Transaction) error {
	if err := s.LedgerStore.UpdateTransaction(ctx, tx); err != nil {
		return err
	}
	s.publish(ctx, events.Update{Record: tx})
	return nil
}

// DeleteTransaction reads the row before deleting it so the delete event
// can carry the old record.
func (s *PublishingStore) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	old, err := s.LedgerStore.TransactionByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.LedgerStore.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.Delete{Old: old})
	return nil
}

func (s *PublishingStore) publish(ctx context.Context, change events.Change) {
	if err := s.publisher.Publish(ctx, s.topic, events.Wrap(change)); err != nil {
		s.logger.Error("failed to publish change event",
			"kind", events.KindOf(change),
			"account_id", events.AccountID(change),
			"err", err,
		)
	}
}

var _ interfaces.LedgerStore = (*PublishingStore)(nil)
