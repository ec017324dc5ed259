// Package storage provides the user store abstraction and its backends.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// DuplicateError reports a unique-constraint violation on insert. Field
// names the colliding column ("username" or "email") when the backend can
// tell, and is empty otherwise.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return "duplicate user"
	}
	return "duplicate " + e.Field
}

// User is a stored account record. PasswordHash is the only
// password-derived value ever persisted.
type User struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	FullName      string    `json:"full_name,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	Image         string    `json:"image,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProfileUpdate replaces the mutable profile fields wholesale; an empty
// string clears the field.
type ProfileUpdate struct {
	FullName string
	Bio      string
	Image    string
}

// Repository defines the interface for user account storage.
type Repository interface {
	// Insert persists a new user. It returns a DuplicateError when the
	// username or email is already taken.
	Insert(ctx context.Context, user *User) (*User, error)
	// FindByIdentifier looks a user up by username or email, exactly as
	// stored. Returns ErrNotFound when absent.
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	// FindByID looks a user up by id. Returns ErrNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// UpdateProfile replaces the profile fields and returns the updated
	// record. Returns ErrNotFound when absent.
	UpdateProfile(ctx context.Context, id uuid.UUID, profile ProfileUpdate) (*User, error)
}
