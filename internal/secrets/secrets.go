// Package secrets holds process-wide secret material in memguard enclaves.
// Secrets are loaded once at startup and are immutable afterwards; the raw
// bytes only exist in a locked buffer for the duration of a single use.
package secrets

import (
	"errors"

	"github.com/awnumar/memguard"
)

// ErrEmptySecret is returned when constructing a Secret from empty input.
var ErrEmptySecret = errors.New("secret must not be empty")

// Secret is an immutable process secret (hashing pepper, token signing key).
// The zero value is unusable; construct with New.
type Secret struct {
	enclave *memguard.Enclave
}

// New seals the given value in an enclave. The input string is not wiped —
// callers loading from the environment should treat the process env as the
// source of truth.
func New(value string) (Secret, error) {
	if value == "" {
		return Secret{}, ErrEmptySecret
	}
	return Secret{enclave: memguard.NewEnclave([]byte(value))}, nil
}

// Open decrypts the secret into a locked buffer. The caller must call
// Destroy on the returned buffer as soon as the bytes are no longer needed.
func (s Secret) Open() (*memguard.LockedBuffer, error) {
	if s.enclave == nil {
		return nil, ErrEmptySecret
	}
	return s.enclave.Open()
}

// IsZero reports whether the secret was never initialized.
func (s Secret) IsZero() bool {
	return s.enclave == nil
}
