package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/metrics"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/models"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/transfer"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func httpError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// handleTransfer executes a funds transfer.
// POST /transfer
func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.Transfers.WithLabelValues(string(transfer.CodeInvalidRequest)).Inc()
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	receipt, err := s.transfers.Execute(r.Context(), req, bearerToken(r), r.Header.Get("Idempotency-Key"))
	if err != nil {
		s.writeTransferError(w, err)
		return
	}

	metrics.Transfers.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, receipt)
}

// writeTransferError maps the service taxonomy onto HTTP statuses. A write
// failure carries details so the caller can tell which side failed and
// whether the sender may already be debited.
func (s *Server) writeTransferError(w http.ResponseWriter, err error) {
	var terr *transfer.Error
	if !errors.As(err, &terr) {
		s.logger.Error("transfer failed", "err", err)
		metrics.Transfers.WithLabelValues("internal").Inc()
		httpError(w, http.StatusInternalServerError, "transfer failed")
		return
	}

	metrics.Transfers.WithLabelValues(string(terr.Code)).Inc()

	switch terr.Code {
	case transfer.CodeInvalidRequest:
		httpError(w, http.StatusBadRequest, terr.Message)
	case transfer.CodeUnauthorized:
		httpError(w, http.StatusUnauthorized, "unauthorized")
	case transfer.CodeRecipientNotFound, transfer.CodeRecipientHasNoAccount:
		httpError(w, http.StatusNotFound, terr.Message)
	case transfer.CodeTimeout:
		httpError(w, http.StatusGatewayTimeout, terr.Message)
	default:
		s.logger.Error("transfer write failed", "side", terr.Side, "err", terr)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   terr.Message,
			"details": "failed write side: " + string(terr.Side),
		})
	}
}

// handleGetAccount returns one account by id.
// GET /accounts/{accountID}
func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	account, err := s.store.AccountByID(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, interfaces.ErrAccountNotFound) {
			httpError(w, http.StatusNotFound, "account not found")
			return
		}
		s.logger.Error("failed to load account", "account_id", accountID, "err", err)
		httpError(w, http.StatusInternalServerError, "failed to load account")
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// handleListTransactions returns the baseline snapshot for one account.
// GET /accounts/{accountID}/transactions
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	transactions, err := s.store.TransactionsByAccount(r.Context(), accountID)
	if err != nil {
		s.logger.Error("failed to list transactions", "account_id", accountID, "err", err)
		httpError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactions)
}

// handleInsertTransaction creates a ledger entry directly.
// POST /accounts/{accountID}/transactions
func (s *Server) handleInsertTransaction(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// The path owns the account; the body cannot write elsewhere.
	tx.AccountID = accountID
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now()
	}
	if err := tx.Validate(); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.InsertTransaction(r.Context(), tx); err != nil {
		s.logger.Error("failed to insert transaction", "id", tx.ID, "err", err)
		httpError(w, http.StatusInternalServerError, "failed to insert transaction")
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// handleUpdateTransaction replaces a ledger entry wholesale.
// PUT /transactions/{id}
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tx.ID = id
	if err := tx.Validate(); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.UpdateTransaction(r.Context(), tx); err != nil {
		if errors.Is(err, interfaces.ErrTransactionNotFound) {
			httpError(w, http.StatusNotFound, "transaction not found")
			return
		}
		s.logger.Error("failed to update transaction", "id", id, "err", err)
		httpError(w, http.StatusInternalServerError, "failed to update transaction")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// handleDeleteTransaction removes a ledger entry by id.
// DELETE /transactions/{id}
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
		if errors.Is(err, interfaces.ErrTransactionNotFound) {
			httpError(w, http.StatusNotFound, "transaction not found")
			return
		}
		s.logger.Error("failed to delete transaction", "id", id, "err", err)
		httpError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
