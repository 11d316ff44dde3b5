package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	interfaces "github.com/sheikh-saqib/realtime-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/models"
)

// Store is an in-memory implementation of interfaces.LedgerStore and
// interfaces.Directory. It is safe for concurrent use and backs tests and
// local mode.
type Store struct {
	mu           sync.Mutex
	accounts     map[uuid.UUID]models.Account
	transactions map[uuid.UUID]models.Transaction
	users        map[string]uuid.UUID // email -> user id
	transferKeys map[string]struct{}
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[uuid.UUID]models.Account),
		transactions: make(map[uuid.UUID]models.Transaction),
		users:        make(map[string]uuid.UUID),
		transferKeys: make(map[string]struct{}),
	}
}

// AddUser seeds an email -> user id mapping.
func (s *Store) AddUser(email string, id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = id
}

// AddAccount seeds an account.
func (s *Store) AddAccount(account models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account
}

func (s *Store) AccountByID(ctx context.Context, id uuid.UUID) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return models.Account{}, interfaces.ErrAccountNotFound
	}
	return account, nil
}

func (s *Store) AccountsByUser(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Account
	for _, account := range s.accounts {
		if account.UserID == userID {
			result = append(result, account)
		}
	}
	// Creation time ascending, id as the tie-break, so the first result is
	// deterministic.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

func (s *Store) TransactionByID(ctx context.Context, id uuid.UUID) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok {
		return models.Transaction{}, interfaces.ErrTransactionNotFound
	}
	return tx, nil
}

func (s *Store) TransactionsByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Transaction
	for _, tx := range s.transactions {
		if tx.AccountID == accountID {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

func (s *Store) InsertTransaction(ctx context.Context, tx models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions[tx.ID] = tx
	return nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[tx.ID]; !ok {
		return interfaces.ErrTransactionNotFound
	}
	s.transactions[tx.ID] = tx
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return interfaces.ErrTransactionNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) TransferKeyExists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.transferKeys[key]
	return exists, nil
}

func (s *Store) SaveTransferKey(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transferKeys[key] = struct{}{}
	return nil
}

func (s *Store) UserIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.users[email]
	if !ok {
		return uuid.Nil, interfaces.ErrUserNotFound
	}
	return id, nil
}

// Compile-time checks: Store implements both capability interfaces.
var (
	_ interfaces.LedgerStore = (*Store)(nil)
	_ interfaces.Directory   = (*Store)(nil)
)
