package account

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jmcleod/gatehouse/internal/secrets"
)

// DefaultTokenTTL is how long an issued session token stays valid. There is
// no revocation mechanism; a token expires on its own or its subject stops
// existing.
const DefaultTokenTTL = 24 * time.Hour

// TokenService issues and verifies signed session tokens. Tokens are HS256
// JWTs carrying only the subject user id and an expiry; all validity is
// determined by signature and expiry at verification time.
type TokenService struct {
	signingKey secrets.Secret
	ttl        time.Duration
	pool       *workerPool
}

// NewTokenService returns a TokenService signing with the given key. A
// non-positive ttl falls back to DefaultTokenTTL.
func NewTokenService(signingKey secrets.Secret, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		signingKey: signingKey,
		ttl:        ttl,
		pool:       cryptoPool,
	}
}

// Issue mints a token for the given subject, expiring ttl from now.
func (ts *TokenService) Issue(ctx context.Context, subject uuid.UUID) (string, error) {
	key, err := ts.signingKey.Open()
	if err != nil {
		return "", fmt.Errorf("opening signing key: %w", err)
	}
	defer key.Destroy()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ts.ttl)),
	})

	var signed string
	var signErr error
	if err := ts.pool.do(ctx, func() {
		signed, signErr = token.SignedString(key.Bytes())
	}); err != nil {
		return "", err
	}
	if signErr != nil {
		return "", fmt.Errorf("signing token: %w", signErr)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the subject. Any
// parse, signature, algorithm, or expiry problem yields ErrInvalidToken;
// the wrapped detail is for server-side logs only.
func (ts *TokenService) Verify(ctx context.Context, tokenString string) (uuid.UUID, error) {
	key, err := ts.signingKey.Open()
	if err != nil {
		return uuid.Nil, fmt.Errorf("opening signing key: %w", err)
	}
	defer key.Destroy()

	keyBytes := key.Bytes()

	var claims jwt.RegisteredClaims
	var parseErr error
	if err := ts.pool.do(ctx, func() {
		_, parseErr = jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return keyBytes, nil
		}, jwt.WithExpirationRequired())
	}); err != nil {
		return uuid.Nil, err
	}
	if parseErr != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, parseErr)
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject: %v", ErrInvalidToken, err)
	}
	return subject, nil
}
