package interfaces

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/models"
)

// Sentinel errors returned by LedgerStore and Directory implementations.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUserNotFound        = errors.New("user not found")
)

// LedgerStore is the authoritative store for accounts and transactions.
// It is passed explicitly to every component that needs it, never held as
// process-wide state.
type LedgerStore interface {
	// AccountByID returns a single account or ErrAccountNotFound.
	AccountByID(ctx context.Context, id uuid.UUID) (models.Account, error)

	// AccountsByUser returns the accounts owned by a user, ordered by
	// creation time ascending with id as the tie-break.
	AccountsByUser(ctx context.Context, userID uuid.UUID) ([]models.Account, error)

	// TransactionByID returns a single transaction or ErrTransactionNotFound.
	TransactionByID(ctx context.Context, id uuid.UUID) (models.Transaction, error)

	// TransactionsByAccount returns all transactions for one account,
	// ordered by date ascending. This is the baseline fetch used to seed a
	// cache on (re)subscription.
	TransactionsByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Transaction, error)

	InsertTransaction(ctx context.Context, tx models.Transaction) error

	// UpdateTransaction replaces the stored row wholesale; there are no
	// partial patch semantics. Returns ErrTransactionNotFound if absent.
	UpdateTransaction(ctx context.Context, tx models.Transaction) error

	// DeleteTransaction removes a row by id, or ErrTransactionNotFound.
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	// TransferKeyExists and SaveTransferKey implement the optional
	// idempotency-key check for transfer resubmission.
	TransferKeyExists(ctx context.Context, key string) (bool, error)
	SaveTransferKey(ctx context.Context, key string) error
}
