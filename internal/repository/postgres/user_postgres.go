package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"soundapi/internal/model"
	"soundapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// Create inserts a new user row. A unique-constraint violation on the
// username maps to repository.ErrDuplicate.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, username, hashed_password, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, hashed_password, created_at
	`
	row := r.db.QueryRowContext(ctx, q, u.ID, u.Username, u.HashedPassword, u.CreatedAt)
	var out model.User
	if err := row.Scan(&out.ID, &out.Username, &out.HashedPassword, &out.CreatedAt); err != nil {
		return nil, mapPgError(err)
	}
	return &out, nil
}

// FindByID fetches a single user by ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id, username, hashed_password, created_at FROM users WHERE id = $1`
	row := r.db.QueryRowContext(ctx, q, id)
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByUsername fetches a single user by normalized username.
func (r *UserPostgres) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT id, username, hashed_password, created_at FROM users WHERE username = $1`
	row := r.db.QueryRowContext(ctx, q, username)
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns the id+username projection of all users, oldest first.
func (r *UserPostgres) List(ctx context.Context) ([]model.UserRef, error) {
	const q = `SELECT id, username FROM users ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.UserRef, 0)
	for rows.Next() {
		var u model.UserRef
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a user by ID. It does not return an error if the row does not exist.
func (r *UserPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM users WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// mapPgError translates driver-level unique violations into the
// repository-level sentinel.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrDuplicate
	}
	return err
}
