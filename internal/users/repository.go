// Package users manages agent and admin accounts, their running disposition
// counters, and list progress.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

// User is a portal account.
type User struct {
	ID             uuid.UUID
	Username       string
	Email          string
	Role           string
	RCExtensionID  *string
	ProgressIndex  int
	LastActivityAt *time.Time
	CreatedAt      time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, username, email, role, rc_extension_id, progress_index, last_activity_at, created_at`

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Role, &user.RCExtensionID,
		&user.ProgressIndex, &user.LastActivityAt, &user.CreatedAt,
	)
	return user, err
}

// CreateParams carries a new account's fields. PasswordHash is already
// bcrypt-hashed by the service.
type CreateParams struct {
	Username      string
	PasswordHash  string
	Email         string
	Role          string
	RCExtensionID *string
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, email, role, rc_extension_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns+`
	`, params.Username, params.PasswordHash, params.Email, params.Role, params.RCExtensionID))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *Repository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)
	`, username).Scan(&taken)
	return taken, err
}

func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// ListAgents returns only agent-role accounts, for assignment targets and
// the summary dashboard.
func (r *Repository) ListAgents(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users WHERE role = 'agent' ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Extension pairs an agent with their phone system extension.
type Extension struct {
	Username    string
	ExtensionID string
}

// ListExtensions returns the agents that have a phone extension configured.
func (r *Repository) ListExtensions(ctx context.Context) ([]Extension, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT username, rc_extension_id FROM users
		WHERE role = 'agent' AND rc_extension_id IS NOT NULL AND rc_extension_id <> ''
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	extensions := make([]Extension, 0)
	for rows.Next() {
		var ext Extension
		if err := rows.Scan(&ext.Username, &ext.ExtensionID); err != nil {
			return nil, err
		}
		extensions = append(extensions, ext)
	}
	return extensions, rows.Err()
}

func (r *Repository) AgentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND role = 'agent')
	`, id).Scan(&exists)
	return exists, err
}

// UpdateParams carries optional account edits.
type UpdateParams struct {
	Username      *string
	Role          *string
	Email         *string
	PasswordHash  *string
	RCExtensionID *string
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET username = COALESCE($2, username),
		    role = COALESCE($3, role),
		    email = COALESCE($4, email),
		    password_hash = COALESCE($5, password_hash),
		    rc_extension_id = COALESCE($6, rc_extension_id)
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id, params.Username, params.Role, params.Email, params.PasswordHash, params.RCExtensionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementStat bumps the running counter for one disposition.
func (r *Repository) IncrementStat(ctx context.Context, userID uuid.UUID, disposition string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_stats (user_id, disposition, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, disposition) DO UPDATE SET count = user_stats.count + 1
	`, userID, disposition)
	return err
}

// DecrementStat lowers a counter, never below zero.
func (r *Repository) DecrementStat(ctx context.Context, userID uuid.UUID, disposition string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE user_stats SET count = GREATEST(count - 1, 0)
		WHERE user_id = $1 AND disposition = $2
	`, userID, disposition)
	return err
}

// UserStats reads the running counters as a disposition -> count map.
func (r *Repository) UserStats(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT disposition, count FROM user_stats WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var disposition string
		var count int64
		if err := rows.Scan(&disposition, &count); err != nil {
			return nil, err
		}
		counts[disposition] = count
	}
	return counts, rows.Err()
}

// ResetStats zeroes an agent's counters.
func (r *Repository) ResetStats(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_stats WHERE user_id = $1`, userID)
	return err
}

// GetProgress reads the stored list position.
func (r *Repository) GetProgress(ctx context.Context, userID uuid.UUID) (int, error) {
	var index int
	err := r.pool.QueryRow(ctx, `
		SELECT progress_index FROM users WHERE id = $1
	`, userID).Scan(&index)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return index, err
}

// SetProgress advances the stored list position, never backwards.
func (r *Repository) SetProgress(ctx context.Context, userID uuid.UUID, index int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET progress_index = GREATEST(progress_index, $2) WHERE id = $1
	`, userID, index)
	return err
}
