// Package account implements the credential and session-authentication
// core: keyed password hashing, signed session tokens, the signup/login
// flows, and the per-request authorization gate.
package account

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jmcleod/gatehouse/storage"
)

// NewUser carries the signup input. Password is plaintext and is never
// persisted; only its hash reaches the store.
type NewUser struct {
	Username string
	Email    string
	Password string
}

// Service orchestrates signup and login over the hasher, the token service,
// and the user store.
type Service struct {
	store  storage.Repository
	hasher *Hasher
	tokens *TokenService
}

// NewService wires a Service from its collaborators.
func NewService(store storage.Repository, hasher *Hasher, tokens *TokenService) *Service {
	return &Service{store: store, hasher: hasher, tokens: tokens}
}

// Tokens exposes the token service, for callers that verify tokens outside
// a full service (tests, CLI tooling).
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// Signup hashes the password and persists the new user. Uniqueness
// conflicts surface as *storage.DuplicateError.
func (s *Service) Signup(ctx context.Context, candidate NewUser) (*storage.User, error) {
	hash, err := s.hasher.Hash(ctx, candidate.Password)
	if err != nil {
		return nil, err
	}

	user := &storage.User{
		ID:           uuid.New(),
		Username:     candidate.Username,
		Email:        candidate.Email,
		PasswordHash: hash,
		Active:       true,
	}
	return s.store.Insert(ctx, user)
}

// Login verifies the identifier/password pair and returns a fresh session
// token. Unknown identifier, deactivated account, and wrong password all
// return the identical ErrInvalidCredentials so callers cannot tell which
// one happened.
func (s *Service) Login(ctx context.Context, identifier, password string) (string, error) {
	user, err := s.store.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !user.Active {
		return "", ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(ctx, user.ID)
}

// Profile returns the user record for an authenticated id.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*storage.User, error) {
	return s.store.FindByID(ctx, id)
}

// UpdateProfile replaces the profile fields and returns the updated record.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, profile storage.ProfileUpdate) (*storage.User, error) {
	return s.store.UpdateProfile(ctx, id, profile)
}
