package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accountRows(t *testing.T) *sqlmock.Rows {
	t.Helper()
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "email", "username", "display_name", "active", "created_at", "updated_at",
	}).AddRow(int64(42), "jane@example.com", "jane", "Jane Doe", true, now, now)
}

func TestLoadByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE email = \$1`).
		WithArgs("jane@example.com").
		WillReturnRows(accountRows(t))

	store := NewPostgresStore(db)
	account, err := store.LoadByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(42), account.ID)
	assert.Equal(t, "jane", account.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE email = \$1`).
		WithArgs("missing@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "username", "display_name", "active", "created_at", "updated_at",
		}))

	store := NewPostgresStore(db)
	_, err = store.LoadByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(accountRows(t))

	store := NewPostgresStore(db)
	account, err := store.LoadByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", account.Email)
}

func TestCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs("new@example.com", "new", "New User", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(7), now, now))

	store := NewPostgresStore(db)
	account := &Account{Email: "new@example.com", Username: "new", DisplayName: "New User", Active: true}
	require.NoError(t, store.Create(context.Background(), account))
	assert.Equal(t, int64(7), account.ID)
	assert.False(t, account.CreatedAt.IsZero())
}

func TestUpdateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE accounts SET email = \$1`).
		WithArgs("renamed@example.com", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPostgresStore(db)
	assert.NoError(t, store.UpdateEmail(context.Background(), 42, "renamed@example.com"))
}

func TestUpdateEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE accounts SET email = \$1`).
		WithArgs("renamed@example.com", int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPostgresStore(db)
	err = store.UpdateEmail(context.Background(), 999, "renamed@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListActiveOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE active = true ORDER BY id`).
		WillReturnRows(accountRows(t))

	store := NewPostgresStore(db)
	accounts, err := store.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].Active)
}
