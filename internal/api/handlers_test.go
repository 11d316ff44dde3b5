package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/auth"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/models"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/storage/memory"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/transfer"
)

const testSecret = "test-secret"

var (
	senderAccountID    = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	recipientAccountID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	callerUserID       = uuid.MustParse("44444444-4444-4444-4444-444444444444")
)

func signToken(t *testing.T, userID uuid.UUID, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return token
}

// brokenStore fails the nth insert, for exercising partial-failure paths.
type brokenStore struct {
	*memory.Store
	insertCalls int
	failOnCall  int
}

func (s *brokenStore) InsertTransaction(ctx context.Context, tx models.Transaction) error {
	s.insertCalls++
	if s.failOnCall != 0 && s.insertCalls == s.failOnCall {
		return errors.New("connection refused")
	}
	return s.Store.InsertTransaction(ctx, tx)
}

func newTestServer(t *testing.T, store interfaces.LedgerStore, directory interfaces.Directory) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	verifier := auth.NewVerifier([]byte(testSecret))
	transfers := transfer.NewService(store, verifier, directory, time.Second, logger)
	return NewServer(transfers, store, verifier, logger)
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	store.AddUser("bob@example.com", uuid.MustParse("33333333-3333-3333-3333-333333333333"))
	store.AddAccount(models.Account{
		ID:        recipientAccountID,
		UserID:    uuid.MustParse("33333333-3333-3333-3333-333333333333"),
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.AccountOpen,
	})
	return store
}

func transferBody(t *testing.T, email string, amount string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(models.TransferRequest{
		SenderAccountID: senderAccountID,
		RecipientEmail:  email,
		Amount:          decimal.RequireFromString(amount),
		Currency:        "USD",
		Category:        "Transfer",
	})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return bytes.NewBuffer(body)
}

func doRequest(handler http.Handler, method, target, token string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestHandleTransfer_Success(t *testing.T) {
	store := seededStore(t)
	handler := newTestServer(t, store, store).Handler()
	token := signToken(t, callerUserID, "alice@example.com")

	recorder := doRequest(handler, http.MethodPost, "/transfer", token, transferBody(t, "bob@example.com", "100.00"))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", recorder.Code, recorder.Body)
	}

	var receipt models.TransferReceipt
	if err := json.NewDecoder(recorder.Body).Decode(&receipt); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if receipt.Message != "Transaction successful" {
		t.Errorf("Message = %q", receipt.Message)
	}
	if !receipt.Amount.Equal(decimal.RequireFromString("100.00")) || receipt.Currency != "USD" {
		t.Errorf("receipt = %+v, want echoed amount/currency", receipt)
	}
	if receipt.RecipientEmail != "bob@example.com" {
		t.Errorf("RecipientEmail = %q", receipt.RecipientEmail)
	}

	recipientTxs, _ := store.TransactionsByAccount(context.Background(), recipientAccountID)
	if len(recipientTxs) != 1 || recipientTxs[0].Type != models.TransactionCredit {
		t.Errorf("recipient transactions = %+v, want one credit", recipientTxs)
	}
	senderTxs, _ := store.TransactionsByAccount(context.Background(), senderAccountID)
	if len(senderTxs) != 1 || senderTxs[0].Type != models.TransactionDebit {
		t.Errorf("sender transactions = %+v, want one debit", senderTxs)
	}
}

func TestHandleTransfer_Statuses(t *testing.T) {
	store := seededStore(t)
	handler := newTestServer(t, store, store).Handler()
	validToken := signToken(t, callerUserID, "alice@example.com")

	tests := []struct {
		name   string
		token  string
		body   *bytes.Buffer
		status int
	}{
		{"zero amount", validToken, transferBody(t, "bob@example.com", "0"), http.StatusBadRequest},
		{"missing token", "", transferBody(t, "bob@example.com", "100.00"), http.StatusUnauthorized},
		{"invalid token", "garbage", transferBody(t, "bob@example.com", "100.00"), http.StatusUnauthorized},
		{"unknown recipient", validToken, transferBody(t, "nobody@example.com", "100.00"), http.StatusNotFound},
		{"malformed body", validToken, bytes.NewBufferString("{"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := doRequest(handler, http.MethodPost, "/transfer", tt.token, tt.body)
			if recorder.Code != tt.status {
				t.Errorf("status = %d, want %d; body %s", recorder.Code, tt.status, recorder.Body)
			}
			var resp map[string]string
			if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if resp["error"] == "" {
				t.Errorf("response missing error message")
			}
		})
	}

	// No writes happened on any failure above.
	senderTxs, _ := store.TransactionsByAccount(context.Background(), senderAccountID)
	if len(senderTxs) != 0 {
		t.Errorf("sender transactions = %+v, want none", senderTxs)
	}
}

func TestHandleTransfer_CreditWriteFailure(t *testing.T) {
	store := &brokenStore{Store: seededStore(t), failOnCall: 2}
	handler := newTestServer(t, store, store.Store).Handler()
	token := signToken(t, callerUserID, "alice@example.com")

	recorder := doRequest(handler, http.MethodPost, "/transfer", token, transferBody(t, "bob@example.com", "100.00"))
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500; body %s", recorder.Code, recorder.Body)
	}

	var resp map[string]string
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if resp["error"] == "" || resp["details"] != "failed write side: recipient" {
		t.Errorf("response = %v, want recipient-side failure details", resp)
	}

	// Half-happened: the debit is committed, the credit is not.
	senderTxs, _ := store.TransactionsByAccount(context.Background(), senderAccountID)
	if len(senderTxs) != 1 {
		t.Errorf("sender transactions = %d, want the committed debit", len(senderTxs))
	}
	recipientTxs, _ := store.TransactionsByAccount(context.Background(), recipientAccountID)
	if len(recipientTxs) != 0 {
		t.Errorf("recipient transactions = %d, want none", len(recipientTxs))
	}
}

func TestTransactionCRUD(t *testing.T) {
	store := seededStore(t)
	handler := newTestServer(t, store, store).Handler()
	token := signToken(t, callerUserID, "alice@example.com")
	base := fmt.Sprintf("/accounts/%s/transactions", senderAccountID)

	// Unauthenticated CRUD is rejected.
	if recorder := doRequest(handler, http.MethodGet, base, "", nil); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list status = %d, want 401", recorder.Code)
	}

	// Insert.
	tx := models.Transaction{
		Type:     models.TransactionDebit,
		Amount:   decimal.RequireFromString("30.00"),
		Currency: "USD",
		Category: "Transport",
	}
	body, _ := json.Marshal(tx)
	recorder := doRequest(handler, http.MethodPost, base, token, bytes.NewBuffer(body))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("insert status = %d, want 201; body %s", recorder.Code, recorder.Body)
	}
	var created models.Transaction
	if err := json.NewDecoder(recorder.Body).Decode(&created); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if created.ID == uuid.Nil || created.AccountID != senderAccountID || created.Date.IsZero() {
		t.Errorf("created = %+v, want assigned id, path account and date", created)
	}

	// List.
	recorder = doRequest(handler, http.MethodGet, base, token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", recorder.Code)
	}
	var listed []models.Transaction
	if err := json.NewDecoder(recorder.Body).Decode(&listed); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("listed = %+v, want the created transaction", listed)
	}

	// Update (full replace).
	created.Amount = decimal.RequireFromString("45.00")
	body, _ = json.Marshal(created)
	recorder = doRequest(handler, http.MethodPut, "/transactions/"+created.ID.String(), token, bytes.NewBuffer(body))
	if recorder.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200; body %s", recorder.Code, recorder.Body)
	}
	stored, _ := store.TransactionByID(context.Background(), created.ID)
	if !stored.Amount.Equal(created.Amount) {
		t.Errorf("stored.Amount = %s, want 45.00", stored.Amount)
	}

	// Update of a missing id is a 404.
	body, _ = json.Marshal(created)
	recorder = doRequest(handler, http.MethodPut, "/transactions/"+uuid.NewString(), token, bytes.NewBuffer(body))
	if recorder.Code != http.StatusNotFound {
		t.Errorf("update missing status = %d, want 404", recorder.Code)
	}

	// Delete, then the list is empty.
	recorder = doRequest(handler, http.MethodDelete, "/transactions/"+created.ID.String(), token, nil)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", recorder.Code)
	}
	recorder = doRequest(handler, http.MethodGet, base, token, nil)
	listed = nil
	if err := json.NewDecoder(recorder.Body).Decode(&listed); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("listed = %+v after delete, want empty", listed)
	}
}

func TestGetAccount(t *testing.T) {
	store := seededStore(t)
	handler := newTestServer(t, store, store).Handler()
	token := signToken(t, callerUserID, "alice@example.com")

	recorder := doRequest(handler, http.MethodGet, "/accounts/"+recipientAccountID.String(), token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", recorder.Code, recorder.Body)
	}
	var account models.Account
	if err := json.NewDecoder(recorder.Body).Decode(&account); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if account.ID != recipientAccountID || account.Status != models.AccountOpen {
		t.Errorf("account = %+v", account)
	}

	recorder = doRequest(handler, http.MethodGet, "/accounts/"+uuid.NewString(), token, nil)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("unknown account status = %d, want 404", recorder.Code)
	}
}

func TestHealth(t *testing.T) {
	store := seededStore(t)
	handler := newTestServer(t, store, store).Handler()

	recorder := doRequest(handler, http.MethodGet, "/health", "", nil)
	if recorder.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", recorder.Code)
	}
}
