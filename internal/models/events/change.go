// Package events defines the change notifications emitted for every
// mutation of the transactions table. The feed delivers them at-least-once
// and unordered across ids; consumers must merge idempotently.
package events

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/models"
)

// Change is one observed mutation. It is a closed variant over Insert,
// Update and Delete; handling is an exhaustive type switch, never dynamic
// dispatch over a common supertype.
type Change interface {
	isChange()
}

// Insert reports a newly created transaction.
type Insert struct {
	Record models.Transaction
}

// Update reports a full replacement of an existing transaction.
type Update struct {
	Record models.Transaction
}

// Delete reports a removed transaction; only the old row is available.
type Delete struct {
	Old models.Transaction
}

func (Insert) isChange() {}
func (Update) isChange() {}
func (Delete) isChange() {}

// AccountID returns the account a change applies to.
func AccountID(c Change) uuid.UUID {
	switch c := c.(type) {
	case Insert:
		return c.Record.AccountID
	case Update:
		return c.Record.AccountID
	case Delete:
		return c.Old.AccountID
	}
	return uuid.Nil
}

// Kind is the wire name of a change variant.
type Kind string

const (
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// KindOf returns the wire kind for a change.
func KindOf(c Change) Kind {
	switch c.(type) {
	case Insert:
		return KindInsert
	case Update:
		return KindUpdate
	}
	return KindDelete
}

// Envelope is the wire form of a Change: a tagged payload carrying the new
// record for inserts and updates, and the old record for deletes.
type Envelope struct {
	Kind      Kind                `json:"kind"`
	NewRecord *models.Transaction `json:"new_record,omitempty"`
	OldRecord *models.Transaction `json:"old_record,omitempty"`
}

// Wrap converts a Change into its wire envelope.
func Wrap(c Change) Envelope {
	switch c := c.(type) {
	case Insert:
		rec := c.Record
		return Envelope{Kind: KindInsert, NewRecord: &rec}
	case Update:
		rec := c.Record
		return Envelope{Kind: KindUpdate, NewRecord: &rec}
	case Delete:
		old := c.Old
		return Envelope{Kind: KindDelete, OldRecord: &old}
	}
	return Envelope{}
}

// Change decodes the envelope back into its variant. A malformed envelope
// (unknown kind, missing record) is an error the consumer logs and skips.
func (e Envelope) Change() (Change, error) {
	switch e.Kind {
	case KindInsert:
		if e.NewRecord == nil {
			return nil, fmt.Errorf("insert event without new_record")
		}
		return Insert{Record: *e.NewRecord}, nil
	case KindUpdate:
		if e.NewRecord == nil {
			return nil, fmt.Errorf("update event without new_record")
		}
		return Update{Record: *e.NewRecord}, nil
	case KindDelete:
		if e.OldRecord == nil {
			return nil, fmt.Errorf("delete event without old_record")
		}
		return Delete{Old: *e.OldRecord}, nil
	default:
		return nil, fmt.Errorf("unknown change kind %q", e.Kind)
	}
}
