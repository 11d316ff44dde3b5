// Package transfer executes funds transfers: it authenticates the caller,
// resolves the recipient email to an account, and posts the two ledger
// entries that make up a transfer.
package transfer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/models"
)

// Service is the stateless transfer request handler. Concurrent calls are
// independent; calls racing on the same sender account are ordered by the
// store, not by the service.
type Service struct {
	store     interfaces.LedgerStore
	auth      interfaces.Authenticator
	directory interfaces.Directory
	timeout   time.Duration
	logger    *slog.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

// NewService wires a transfer service. timeout bounds each remote call
// (auth check, lookups, writes) individually.
func NewService(store interfaces.LedgerStore, auth interfaces.Authenticator, directory interfaces.Directory, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{
		store:     store,
		auth:      auth,
		directory: directory,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.New,
	}
}

// Execute runs one transfer: validate, authenticate, resolve the recipient,
// then debit the sender and credit the recipient. The two writes are
// independent; if the credit fails the debit stays committed and the error
// reports side=recipient so the caller can tell "nothing happened" from
// "half happened". No retry is performed here — resubmission is the
// caller's call, deduplicated only when an idempotency key is supplied.
func (s *Service) Execute(ctx context.Context, req models.TransferRequest, credential, idempotencyKey string) (models.TransferReceipt, error) {
	if err := req.Validate(); err != nil {
		return models.TransferReceipt{}, invalidRequest(err.Error())
	}

	if credential == "" {
		return models.TransferReceipt{}, unauthorized("missing token", nil)
	}
	caller, err := s.authenticate(ctx, credential)
	if err != nil {
		return models.TransferReceipt{}, err
	}

	receipt := models.TransferReceipt{
		Message:        "Transaction successful",
		Amount:         req.Amount,
		Currency:       req.Currency,
		RecipientEmail: req.RecipientEmail,
	}

	if idempotencyKey != "" {
		seen, err := s.keyExists(ctx, idempotencyKey)
		if err != nil {
			return models.TransferReceipt{}, err
		}
		if seen {
			s.logger.Info("transfer replayed, no writes performed", "idempotency_key", idempotencyKey)
			return receipt, nil
		}
	}

	recipientAccount, err := s.resolveRecipient(ctx, req.RecipientEmail)
	if err != nil {
		return models.TransferReceipt{}, err
	}

	now := s.now()
	debit := models.Transaction{
		ID:          s.newID(),
		AccountID:   req.SenderAccountID,
		Type:        models.TransactionDebit,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Category:    req.Category,
		Description: defaultDescription(req.Description, "Transfer to "+req.RecipientEmail),
		Date:        now,
	}
	credit := models.Transaction{
		ID:          s.newID(),
		AccountID:   recipientAccount,
		Type:        models.TransactionCredit,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Category:    req.Category,
		Description: defaultDescription(req.Description, "Transfer from "+caller.Email),
		Date:        now,
	}

	if err := s.insert(ctx, debit); err != nil {
		return models.TransferReceipt{}, writeFailed(SideSender, "failed to create debit transaction", err)
	}
	if err := s.insert(ctx, credit); err != nil {
		s.logger.Error("credit write failed after debit committed",
			"sender_account", req.SenderAccountID,
			"recipient_account", recipientAccount,
			"err", err,
		)
		return models.TransferReceipt{}, writeFailed(SideRecipient, "failed to create credit transaction", err)
	}

	if idempotencyKey != "" {
		if err := s.saveKey(ctx, idempotencyKey); err != nil {
			// The transfer itself is committed; a lost key only weakens
			// dedup for this one request.
			s.logger.Warn("failed to record idempotency key", "err", err)
		}
	}

	return receipt, nil
}

func (s *Service) authenticate(ctx context.Context, credential string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	caller, err := s.auth.UserFromToken(ctx, credential)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.User{}, timedOut("auth check", err)
		}
		return models.User{}, unauthorized("invalid token", err)
	}
	return caller, nil
}

// resolveRecipient maps the email to a user and picks the user's
// earliest-created account: the store returns accounts ordered by creation
// time ascending, so the first result wins deterministically.
func (s *Service) resolveRecipient(ctx context.Context, email string) (uuid.UUID, error) {
	lctx, cancel := context.WithTimeout(ctx, s.timeout)
	userID, err := s.directory.UserIDByEmail(lctx, email)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return uuid.Nil, timedOut("recipient lookup", err)
		}
		if errors.Is(err, interfaces.ErrUserNotFound) {
			return uuid.Nil, &Error{Code: CodeRecipientNotFound, Message: "target user not found"}
		}
		return uuid.Nil, &Error{Code: CodeRecipientNotFound, Message: "target user not found", cause: err}
	}

	actx, cancel := context.WithTimeout(ctx, s.timeout)
	accounts, err := s.store.AccountsByUser(actx, userID)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return uuid.Nil, timedOut("account lookup", err)
		}
		return uuid.Nil, &Error{Code: CodeRecipientHasNoAccount, Message: "target user has no accounts", cause: err}
	}
	if len(accounts) == 0 {
		return uuid.Nil, &Error{Code: CodeRecipientHasNoAccount, Message: "target user has no accounts"}
	}
	return accounts[0].ID, nil
}

// insert performs one bounded ledger write. Write failures keep their cause
// so a deadline is still visible via errors.Is; they are reported as write
// failures rather than timeouts because by then the row may have landed.
func (s *Service) insert(ctx context.Context, tx models.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.InsertTransaction(ctx, tx)
}

func (s *Service) keyExists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	seen, err := s.store.TransferKeyExists(ctx, key)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return false, timedOut("idempotency check", err)
		}
		return false, writeFailed(SideSender, "idempotency check failed", err)
	}
	return seen, nil
}

func (s *Service) saveKey(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.SaveTransferKey(ctx, key)
}

func defaultDescription(description, fallback string) string {
	if description == "" {
		return fallback
	}
	return description
}
