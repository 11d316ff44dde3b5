package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the accounting side of a ledger entry. The sign of
// effect is carried by the type; Amount is always positive.
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// Transaction is a single ledger entry: one signed movement of funds into
// or out of one account. Field names follow the snake_case wire mapping
// shared by the store and the change feed.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
}

// Validate checks the invariants a ledger entry must hold before it is
// written: positive amount, known type, 3-letter currency code, category set.
func (t Transaction) Validate() error {
	if t.AccountID == uuid.Nil {
		return errors.New("account_id is required")
	}
	if t.Type != TransactionCredit && t.Type != TransactionDebit {
		return errors.New("type must be credit or debit")
	}
	if !t.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if len(t.Currency) != 3 {
		return errors.New("currency must be a 3-letter code")
	}
	if t.Category == "" {
		return errors.New("category is required")
	}
	return nil
}
