package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"accountsvc/internal/domain"
	"accountsvc/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ repository.UserRepository = (*Repository)(nil)

const userColumns = `id, name, email, password_hash, role, is_active, COALESCE(refresh_token, ''), created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user. Violating the active-email unique index maps
// to ErrDuplicateEmail so callers can surface it as a validation failure.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `INSERT INTO users (id, name, email, password_hash, role, is_active, refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.IsActive, user.RefreshToken, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicateEmail
	}
	return err
}

// GetUserByEmail fetches an active user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetUserByID retrieves a user by identifier regardless of active state.
// Callers that authenticate must check IsActive themselves.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// ListActiveUsers returns a page of active users newest-first plus the
// total count of active users.
func (r *Repository) ListActiveUsers(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE is_active ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	const countQuery = `SELECT COUNT(1) FROM users WHERE is_active`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateUser persists name, email and updated_at for an existing user.
func (r *Repository) UpdateUser(ctx context.Context, user *domain.User) error {
	const query = `UPDATE users SET name = $2, email = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, user.ID, user.Name, user.Email, user.UpdatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// StoreRefreshToken replaces the single refresh-token slot for the user.
// An empty token clears the slot.
func (r *Repository) StoreRefreshToken(ctx context.Context, id, token string) error {
	const query = `UPDATE users SET refresh_token = NULLIF($2, ''), updated_at = now() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeactivateUser soft-deletes a user. The refresh slot is cleared so the
// account cannot mint new access tokens afterwards.
func (r *Repository) DeactivateUser(ctx context.Context, id string) error {
	const query = `UPDATE users SET is_active = FALSE, refresh_token = NULL, updated_at = now() WHERE id = $1 AND is_active`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
