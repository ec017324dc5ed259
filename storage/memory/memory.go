// Package memory provides an in-memory user store, primarily for tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jmcleod/gatehouse/storage"
)

// Store implements storage.Repository backed by process memory.
type Store struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]*storage.User
	byUsername map[string]uuid.UUID
	byEmail    map[string]uuid.UUID
}

var _ storage.Repository = (*Store)(nil)

// NewRepository returns an empty in-memory Repository.
func NewRepository() *Store {
	return &Store{
		users:      make(map[uuid.UUID]*storage.User),
		byUsername: make(map[string]uuid.UUID),
		byEmail:    make(map[string]uuid.UUID),
	}
}

func clone(u *storage.User) *storage.User {
	c := *u
	return &c
}

func (s *Store) Insert(ctx context.Context, user *storage.User) (*storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[user.Username]; ok {
		return nil, &storage.DuplicateError{Field: "username"}
	}
	if _, ok := s.byEmail[user.Email]; ok {
		return nil, &storage.DuplicateError{Field: "email"}
	}

	rec := clone(user)
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	s.users[rec.ID] = rec
	s.byUsername[rec.Username] = rec.ID
	s.byEmail[rec.Email] = rec.ID
	return clone(rec), nil
}

func (s *Store) FindByIdentifier(ctx context.Context, identifier string) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[identifier]
	if !ok {
		id, ok = s.byEmail[identifier]
	}
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clone(s.users[id]), nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clone(rec), nil
}

func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, profile storage.ProfileUpdate) (*storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	rec.FullName = profile.FullName
	rec.Bio = profile.Bio
	rec.Image = profile.Image
	rec.UpdatedAt = time.Now().UTC()
	return clone(rec), nil
}

// Delete removes a user. It exists so tests can simulate account deletion
// between token issuance and a later authorized request.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return
	}
	delete(s.byUsername, rec.Username)
	delete(s.byEmail, rec.Email)
	delete(s.users, id)
}

// SetActive flips the active flag for tests exercising deactivated accounts.
func (s *Store) SetActive(id uuid.UUID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.users[id]; ok {
		rec.Active = active
	}
}
