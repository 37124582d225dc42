// Package auth provides login, logout, single-session enforcement, and
// password re-verification for destructive admin operations.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

// Account is the authentication slice of a user row.
type Account struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         string
	SessionID    *string
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (Account, error) {
	var account Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, role, session_id
		FROM users WHERE username = $1
	`, username).Scan(&account.ID, &account.Username, &account.PasswordHash, &account.Role, &account.SessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrUserNotFound
	}
	return account, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Account, error) {
	var account Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, role, session_id
		FROM users WHERE id = $1
	`, id).Scan(&account.ID, &account.Username, &account.PasswordHash, &account.Role, &account.SessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrUserNotFound
	}
	return account, err
}

// SetSessionID rotates the user's active session, invalidating tokens from
// earlier logins.
func (r *Repository) SetSessionID(ctx context.Context, userID uuid.UUID, sessionID string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET session_id = $2, last_activity_at = $3 WHERE id = $1
	`, userID, sessionID, at)
	return err
}

// ClearSessionID logs the user out everywhere.
func (r *Repository) ClearSessionID(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET session_id = NULL WHERE id = $1
	`, userID)
	return err
}
