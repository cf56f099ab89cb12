// Package accounts provides the local account store. Accounts are the
// service's own user records; a developer on the gateway platform may
// or may not have a matching local account, correlated by email.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indicates no account matches the given identifier
var ErrNotFound = errors.New("account not found")

// Account represents a local user account
type Account struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store defines the local account lookup surface
type Store interface {
	LoadByEmail(ctx context.Context, email string) (*Account, error)
	LoadByID(ctx context.Context, id int64) (*Account, error)
	Create(ctx context.Context, account *Account) error
	UpdateEmail(ctx context.Context, id int64, email string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, activeOnly bool) ([]*Account, error)
}

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const accountColumns = `id, email, username, display_name, active, created_at, updated_at`

// LoadByEmail retrieves an account by email address
func (s *PostgresStore) LoadByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, email))
}

// LoadByID retrieves an account by its local ID
func (s *PostgresStore) LoadByID(ctx context.Context, id int64) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// Create inserts a new account and fills in its generated fields
func (s *PostgresStore) Create(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO accounts (email, username, display_name, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		account.Email, account.Username, account.DisplayName, account.Active).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// UpdateEmail changes an account's email address
func (s *PostgresStore) UpdateEmail(ctx context.Context, id int64, email string) error {
	query := `UPDATE accounts SET email = $1, updated_at = NOW() WHERE id = $2`
	result, err := s.db.ExecContext(ctx, query, email, id)
	if err != nil {
		return fmt.Errorf("failed to update account email: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an account
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all accounts, optionally restricted to active ones
func (s *PostgresStore) List(ctx context.Context, activeOnly bool) ([]*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		account := &Account{}
		if err := rows.Scan(
			&account.ID, &account.Email, &account.Username, &account.DisplayName,
			&account.Active, &account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID, &account.Email, &account.Username, &account.DisplayName,
		&account.Active, &account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return account, nil
}
