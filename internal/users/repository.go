package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/usersync/internal/platform/db"
	"github.com/odyssey-erp/usersync/internal/platform/httpx"
)

const uniqueViolation = "23505"

var schemaSQL = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(50) NOT NULL,
	email VARCHAR(100) NOT NULL UNIQUE
)`,
	`CREATE INDEX IF NOT EXISTS users_name_idx ON users (name)`,
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the users table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, stmt := range schemaSQL {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("users: ensure schema: %w", err)
	}
	return nil
}

// ListUsers returns all users.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, email FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]User, 0)
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser loads a user by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `SELECT id, name, email FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Name, &user.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, httpx.ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// CreateUser inserts a user and returns it with the assigned id.
func (r *Repository) CreateUser(ctx context.Context, in CreateInput) (User, error) {
	user := User{Name: in.Name, Email: in.Email}
	err := r.pool.QueryRow(ctx, `INSERT INTO users (name, email) VALUES ($1, $2) RETURNING id`, in.Name, in.Email).
		Scan(&user.ID)
	if err != nil {
		return User{}, mapWriteError(err)
	}
	return user, nil
}

// UpdateUser writes the non-empty fields of in in one statement, so
// overlapping partial updates of the same row never drop a field.
func (r *Repository) UpdateUser(ctx context.Context, id int64, in UpdateInput) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `UPDATE users
SET name = COALESCE(NULLIF($2, ''), name),
	email = COALESCE(NULLIF($3, ''), email)
WHERE id = $1
RETURNING id, name, email`, id, in.Name, in.Email).Scan(&user.ID, &user.Name, &user.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, httpx.ErrNotFound
	}
	if err != nil {
		return User{}, mapWriteError(err)
	}
	return user, nil
}

// DeleteUser removes a user by id.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("users: %s: %w", pgErr.ConstraintName, httpx.ErrDuplicate)
	}
	return err
}
