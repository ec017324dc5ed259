// Package bbolt provides a BBolt-backed user store.
//
// Users are stored as JSON under their id in the users bucket. Username and
// email uniqueness is enforced through two index buckets mapping the value
// to the owning user id; all writes to the three buckets happen in a single
// update transaction.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/jmcleod/gatehouse/storage"
)

var (
	bucketUsers    = []byte("users")
	bucketUsername = []byte("idx_username")
	bucketEmail    = []byte("idx_email")
)

// Store implements storage.Repository backed by a BBolt database.
type Store struct {
	db *bbolt.DB
}

var _ storage.Repository = (*Store)(nil)

// NewRepository returns a Repository backed by the given BBolt database.
func NewRepository(db *bbolt.DB) (*Store, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketUsers, bucketUsername, bucketEmail} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// NewRepositoryFromFile opens a BBolt database at the given path and returns
// a new Repository.
func NewRepositoryFromFile(path string, options *bbolt.Options) (*Store, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewRepository(db)
}

// Close closes the underlying BBolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func putUser(tx *bbolt.Tx, user *storage.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketUsers).Put([]byte(user.ID.String()), data)
}

func getUser(tx *bbolt.Tx, id []byte) (*storage.User, error) {
	data := tx.Bucket(bucketUsers).Get(id)
	if data == nil {
		return nil, storage.ErrNotFound
	}
	var user storage.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) Insert(ctx context.Context, user *storage.User) (*storage.User, error) {
	rec := *user
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	err := s.db.Update(func(tx *bbolt.Tx) error {
		usernames := tx.Bucket(bucketUsername)
		emails := tx.Bucket(bucketEmail)

		if usernames.Get([]byte(rec.Username)) != nil {
			return &storage.DuplicateError{Field: "username"}
		}
		if emails.Get([]byte(rec.Email)) != nil {
			return &storage.DuplicateError{Field: "email"}
		}

		id := []byte(rec.ID.String())
		if err := usernames.Put([]byte(rec.Username), id); err != nil {
			return err
		}
		if err := emails.Put([]byte(rec.Email), id); err != nil {
			return err
		}
		return putUser(tx, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) FindByIdentifier(ctx context.Context, identifier string) (*storage.User, error) {
	var user *storage.User
	err := s.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(bucketUsername).Get([]byte(identifier))
		if id == nil {
			id = tx.Bucket(bucketEmail).Get([]byte(identifier))
		}
		if id == nil {
			return storage.ErrNotFound
		}
		var err error
		user, err = getUser(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*storage.User, error) {
	var user *storage.User
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		user, err = getUser(tx, []byte(id.String()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, profile storage.ProfileUpdate) (*storage.User, error) {
	var user *storage.User
	err := s.db.Update(func(tx *bbolt.Tx) error {
		var err error
		user, err = getUser(tx, []byte(id.String()))
		if err != nil {
			return err
		}
		user.FullName = profile.FullName
		user.Bio = profile.Bio
		user.Image = profile.Image
		user.UpdatedAt = time.Now().UTC()
		return putUser(tx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user and its index entries.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		user, err := getUser(tx, []byte(id.String()))
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketUsername).Delete([]byte(user.Username)); err != nil {
			return err
		}
		if err := tx.Bucket(bucketEmail).Delete([]byte(user.Email)); err != nil {
			return err
		}
		return tx.Bucket(bucketUsers).Delete([]byte(id.String()))
	})
}
