package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	interfaces "github.com/sheikh-saqib/realtime-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/models"
)

// Store is the PostgreSQL-backed ledger store. It also serves as the
// Directory: the users table lookup runs with the service's elevated
// connection, not the caller's.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrations returns the schema statements, one per string.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY,
			email      TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS accounts (
			id         UUID PRIMARY KEY,
			user_id    UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			status     TEXT NOT NULL DEFAULT 'open'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_user ON accounts (user_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id          UUID PRIMARY KEY,
			account_id  UUID NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
			type        TEXT NOT NULL,
			amount      NUMERIC(10,2) NOT NULL CHECK (amount > 0),
			currency    VARCHAR(3) NOT NULL,
			category    TEXT NOT NULL,
			description TEXT,
			date        TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions (account_id, date)`,

		`CREATE TABLE IF NOT EXISTS transfer_keys (
			key        TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
}

// Migrate applies the schema.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range Migrations() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) AccountByID(ctx context.Context, id uuid.UUID) (models.Account, error) {
	const query = `SELECT id, user_id, created_at, status FROM accounts WHERE id = $1`

	var account models.Account
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.UserID,
		&account.CreatedAt,
		&account.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, interfaces.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (s *Store) AccountsByUser(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	const query = `SELECT id, user_id, created_at, status FROM accounts
	WHERE user_id = $1
	ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.ID, &account.UserID, &account.CreatedAt, &account.Status); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (s *Store) TransactionByID(ctx context.Context, id uuid.UUID) (models.Transaction, error) {
	const query = `SELECT id, account_id, type, amount, currency, category, description, date
	FROM transactions WHERE id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, interfaces.ErrTransactionNotFound
	}
	return tx, err
}

func (s *Store) TransactionsByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Transaction, error) {
	const query = `SELECT id, account_id, type, amount, currency, category, description, date
	FROM transactions
	WHERE account_id = $1
	ORDER BY date ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func (s *Store) InsertTransaction(ctx context.Context, tx models.Transaction) error {
	const query = `INSERT INTO transactions (id, account_id, type, amount, currency, category, description, date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		tx.ID, tx.AccountID, tx.Type, tx.Amount, tx.Currency, tx.Category,
		nullableString(tx.Description), tx.Date,
	)
	return err
}

func (s *Store) UpdateTransaction(ctx context.Context, tx models.Transaction) error {
	const query = `UPDATE transactions
	SET account_id = $2, type = $3, amount = $4, currency = $5, category = $6, description = $7, date = $8
	WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query,
		tx.ID, tx.AccountID, tx.Type, tx.Amount, tx.Currency, tx.Category,
		nullableString(tx.Description), tx.Date,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return interfaces.ErrTransactionNotFound
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM transactions WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return interfaces.ErrTransactionNotFound
	}
	return nil
}

func (s *Store) TransferKeyExists(ctx context.Context, key string) (bool, error) {
	const query = `SELECT 1 FROM transfer_keys WHERE key = $1 LIMIT 1`

	var exists int
	err := s.db.QueryRowContext(ctx, query, key).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) SaveTransferKey(ctx context.Context, key string) error {
	const query = `INSERT INTO transfer_keys (key) VALUES ($1) ON CONFLICT (key) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query, key)
	return err
}

func (s *Store) UserIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	const query = `SELECT id FROM users WHERE email = $1`

	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, query, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, interfaces.ErrUserNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var tx models.Transaction
	var description sql.NullString
	err := row.Scan(
		&tx.ID,
		&tx.AccountID,
		&tx.Type,
		&tx.Amount,
		&tx.Currency,
		&tx.Category,
		&description,
		&tx.Date,
	)
	if err != nil {
		return models.Transaction{}, err
	}
	tx.Description = description.String
	return tx, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Compile-time checks: Store implements both capability interfaces.
var (
	_ interfaces.LedgerStore = (*Store)(nil)
	_ interfaces.Directory   = (*Store)(nil)
)
