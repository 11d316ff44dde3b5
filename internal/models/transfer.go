package models

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferRequest is the intent to move money from the sender's account to
// whichever account belongs to the recipient email. It is transient and
// never persisted; a transfer that succeeds leaves behind exactly two
// Transactions.
type TransferRequest struct {
	SenderAccountID uuid.UUID       `json:"sender_account_id"`
	RecipientEmail  string          `json:"recipient_email"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Category        string          `json:"category"`
	Description     string          `json:"description,omitempty"`
}

// Validate checks that all required fields are present and the amount is
// positive.
func (r TransferRequest) Validate() error {
	if r.SenderAccountID == uuid.Nil || r.RecipientEmail == "" || r.Currency == "" || r.Category == "" {
		return errors.New("missing required fields")
	}
	if !r.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	return nil
}

// TransferReceipt echoes a completed transfer back to the caller.
type TransferReceipt struct {
	Message        string          `json:"message"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	RecipientEmail string          `json:"recipient_email"`
}
