// Package postgres implements storage.Repository backed by PostgreSQL.
//
// Uniqueness of usernames and email addresses is delegated to unique
// indexes; a unique-violation (SQLSTATE 23505) is translated into a
// storage.DuplicateError, with the colliding field resolved from the
// violated constraint name so callers never inspect driver errors.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmcleod/gatehouse/storage"
)

// uniqueViolationCode is the SQLSTATE class for unique-constraint errors.
const uniqueViolationCode = "23505"

// Store implements storage.Repository backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Repository = (*Store)(nil)

// NewRepository returns a Repository backed by the given pgx connection pool.
func NewRepository(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// NewRepositoryFromDSN creates a connection pool from a DSN string, ensures
// the schema exists, and returns a new Repository.
func NewRepositoryFromDSN(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return NewRepository(pool), nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

const userColumns = `id, username, email, password_hash, full_name, bio, image,
	email_verified, active, created_at, updated_at`

func scanUser(row pgx.Row) (*storage.User, error) {
	var u storage.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FullName, &u.Bio, &u.Image, &u.EmailVerified, &u.Active,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// duplicateField maps a violated unique constraint to the colliding field.
// Unknown constraints produce a DuplicateError with no field hint.
func duplicateField(constraint string) string {
	switch constraint {
	case "users_username_key":
		return "username"
	case "users_email_key":
		return "email"
	default:
		return ""
	}
}

func (s *Store) Insert(ctx context.Context, user *storage.User) (*storage.User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, username, email, password_hash, full_name, bio, image, email_verified, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+userColumns,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.FullName, user.Bio, user.Image, user.EmailVerified, user.Active)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, &storage.DuplicateError{Field: duplicateField(pgErr.ConstraintName)}
		}
		return nil, err
	}
	return created, nil
}

func (s *Store) FindByIdentifier(ctx context.Context, identifier string) (*storage.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`,
		identifier)
	return scanUser(row)
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*storage.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, profile storage.ProfileUpdate) (*storage.User, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE users SET full_name = $2, bio = $3, image = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, profile.FullName, profile.Bio, profile.Image)
	return scanUser(row)
}

// Delete removes a user record.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
