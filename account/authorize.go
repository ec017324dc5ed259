package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jmcleod/gatehouse/storage"
)

// AuthenticatedUser is the result of a successful authorization pass. It is
// only valid for the lifetime of the request that produced it, and is the
// sole legitimate source of the caller's identity for downstream logic.
type AuthenticatedUser struct {
	UserID uuid.UUID
}

// notAuthorized wraps a cause so errors.Is(err, ErrNotAuthorized) holds
// while keeping the detail for server-side logs. Callers must only ever
// surface the generic message.
func notAuthorized(cause error) error {
	if cause == nil {
		return ErrNotAuthorized
	}
	return fmt.Errorf("%w: %v", ErrNotAuthorized, cause)
}

// Authorize converts a raw bearer token into an authenticated identity.
// Every failure path — missing token, bad signature, expired token, subject
// deleted or deactivated — collapses into ErrNotAuthorized; only the
// wrapped detail distinguishes them, and only in logs.
func (s *Service) Authorize(ctx context.Context, rawToken string) (AuthenticatedUser, error) {
	if rawToken == "" {
		return AuthenticatedUser{}, notAuthorized(errors.New("no token presented"))
	}

	subject, err := s.tokens.Verify(ctx, rawToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return AuthenticatedUser{}, notAuthorized(err)
		}
		return AuthenticatedUser{}, err
	}

	// Re-check existence: a deleted or deactivated account invalidates
	// every outstanding token. This is the only revocation mechanism.
	user, err := s.store.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return AuthenticatedUser{}, notAuthorized(fmt.Errorf("subject %s no longer exists", subject))
		}
		return AuthenticatedUser{}, err
	}
	if !user.Active {
		return AuthenticatedUser{}, notAuthorized(fmt.Errorf("subject %s is deactivated", subject))
	}

	return AuthenticatedUser{UserID: user.ID}, nil
}
