package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountOpen       AccountStatus = "open"
	AccountRestricted AccountStatus = "restricted"
	AccountClosed     AccountStatus = "closed"
)

// Account is a ledger account owned by a single user.
// Accounts are created elsewhere; this service only reads them.
type Account struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	CreatedAt time.Time     `json:"created_at"`
	Status    AccountStatus `json:"status"`
}

// User is an authenticated identity resolved from a credential or an
// email lookup.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}
