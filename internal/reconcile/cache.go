// Package reconcile keeps a client-local mirror of one account's
// transactions converged with the authoritative store. The cache is fed by
// two producers — local write-through CRUD and the change feed — whose
// updates may arrive in either order and more than once.
package reconcile

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/models"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/models/events"
)

// Cache is the local transaction mirror for one account. All mutations are
// serialized by a single mutex; the merge rule is idempotent by id, so a
// change applied optimistically and again via the feed echo is a no-op the
// second time, in either order.
type Cache struct {
	accountID uuid.UUID
	store     interfaces.LedgerStore

	mu    sync.Mutex
	order []uuid.UUID
	byID  map[uuid.UUID]models.Transaction
}

// NewCache creates an empty cache for one account, with the store it writes
// through to.
func NewCache(store interfaces.LedgerStore, accountID uuid.UUID) *Cache {
	return &Cache{
		accountID: accountID,
		store:     store,
		byID:      make(map[uuid.UUID]models.Transaction),
	}
}

// AccountID returns the account this cache mirrors.
func (c *Cache) AccountID() uuid.UUID { return c.accountID }

// Apply merges one change event. Insert and Update both upsert by id;
// Delete removes by id and is a no-op when the entry is absent.
func (c *Cache) Apply(change events.Change) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch change := change.(type) {
	case events.Insert:
		c.upsert(change.Record)
	case events.Update:
		c.upsert(change.Record)
	case events.Delete:
		c.remove(change.Old.ID)
	}
}

// Reset replaces the cache contents with a baseline snapshot.
func (c *Cache) Reset(baseline []models.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = c.order[:0]
	clear(c.byID)
	for _, tx := range baseline {
		c.upsert(tx)
	}
}

// Snapshot returns the cached transactions in arrival order.
func (c *Cache) Snapshot() []models.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]models.Transaction, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.byID[id])
	}
	return result
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Insert writes a new transaction through to the store, then applies it
// optimistically. The feed echo that follows merges as a no-op.
func (c *Cache) Insert(ctx context.Context, tx models.Transaction) error {
	tx.AccountID = c.accountID
	if err := c.store.InsertTransaction(ctx, tx); err != nil {
		return err
	}
	c.Apply(events.Insert{Record: tx})
	return nil
}

// Update replaces a transaction in the store, then in the cache.
func (c *Cache) Update(ctx context.Context, tx models.Transaction) error {
	tx.AccountID = c.accountID
	if err := c.store.UpdateTransaction(ctx, tx); err != nil {
		return err
	}
	c.Apply(events.Update{Record: tx})
	return nil
}

// Delete removes a transaction from the store, then from the cache.
func (c *Cache) Delete(ctx context.Context, tx models.Transaction) error {
	if err := c.store.DeleteTransaction(ctx, tx.ID); err != nil {
		return err
	}
	c.Apply(events.Delete{Old: tx})
	return nil
}

// upsert and remove require c.mu held.
func (c *Cache) upsert(tx models.Transaction) {
	if _, ok := c.byID[tx.ID]; !ok {
		c.order = append(c.order, tx.ID)
	}
	c.byID[tx.ID] = tx
}

func (c *Cache) remove(id uuid.UUID) {
	if _, ok := c.byID[id]; !ok {
		return
	}
	delete(c.byID, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
