package account

import "errors"

var (
	// ErrHashingFailure is returned when password hashing cannot produce
	// a usable hash (bad parameters, failed salt generation).
	ErrHashingFailure = errors.New("password hashing failed")

	// ErrMalformedHash is returned when a stored hash cannot be parsed.
	// A plain password mismatch is not an error.
	ErrMalformedHash = errors.New("malformed password hash")

	// ErrInvalidToken is returned for tokens that are malformed, expired,
	// or signed with the wrong key or algorithm.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidCredentials is returned for any failed login. Unknown
	// identifier, deactivated account, and wrong password all map here so
	// a caller cannot probe for account existence.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthorized is returned when a request cannot be tied to an
	// existing account: missing, invalid or stale token, or a token whose
	// subject no longer exists.
	ErrNotAuthorized = errors.New("not authorized")
)
