package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/gatehouse/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("GATEHOUSE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("GATEHOUSE_TEST_POSTGRES_DSN not set; skipping PostgreSQL tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("could not connect to postgres: %v", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("could not ensure schema: %v", err)
	}

	// Start from a clean table so duplicate tests are deterministic.
	if _, err := pool.Exec(ctx, `TRUNCATE users`); err != nil {
		t.Fatalf("could not truncate users: %v", err)
	}

	s := NewRepository(pool)
	t.Cleanup(s.Close)
	return s
}

func newUser(username, email string) *storage.User {
	return &storage.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: "$argon2id$fake",
		Active:       true,
	}
}

func TestInsertAndFind(t *testing.T) {
	s := newTestStore(t)

	created, err := s.Insert(t.Context(), newUser("ada", "ada@x.com"))
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	for _, identifier := range []string{"ada", "ada@x.com"} {
		found, err := s.FindByIdentifier(t.Context(), identifier)
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	}

	_, err = s.FindByIdentifier(t.Context(), "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInsertDuplicates(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Insert(t.Context(), newUser("ada", "ada@x.com"))
	require.NoError(t, err)

	var dup *storage.DuplicateError

	_, err = s.Insert(t.Context(), newUser("ada", "other@x.com"))
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)

	_, err = s.Insert(t.Context(), newUser("grace", "ada@x.com"))
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestStore(t)
	created, err := s.Insert(t.Context(), newUser("ada", "ada@x.com"))
	require.NoError(t, err)

	updated, err := s.UpdateProfile(t.Context(), created.ID, storage.ProfileUpdate{
		FullName: "Ada Lovelace",
		Bio:      "first programmer",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.FullName)

	_, err = s.UpdateProfile(t.Context(), uuid.New(), storage.ProfileUpdate{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	created, err := s.Insert(t.Context(), newUser("ada", "ada@x.com"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(t.Context(), created.ID))
	_, err = s.FindByID(t.Context(), created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, s.Delete(t.Context(), created.ID), storage.ErrNotFound)
}
