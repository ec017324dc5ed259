package account

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/gatehouse/internal/secrets"
)

func newTestTokenService(t *testing.T, key string, ttl time.Duration) *TokenService {
	t.Helper()
	sec, err := secrets.New(key)
	require.NoError(t, err)
	return NewTokenService(sec, ttl)
}

func TestIssueAndVerify(t *testing.T) {
	ts := newTestTokenService(t, "signing-secret", 0)
	subject := uuid.New()

	token, err := ts.Issue(t.Context(), subject)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := ts.Verify(t.Context(), token)
	require.NoError(t, err)
	assert.Equal(t, subject, got)
}

func TestVerifyExpired(t *testing.T) {
	ts := newTestTokenService(t, "signing-secret", -time.Minute)

	token, err := ts.Issue(t.Context(), uuid.New())
	require.NoError(t, err)

	_, err = ts.Verify(t.Context(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongKey(t *testing.T) {
	token, err := newTestTokenService(t, "signing-secret", 0).Issue(t.Context(), uuid.New())
	require.NoError(t, err)

	_, err = newTestTokenService(t, "other-secret", 0).Verify(t.Context(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformed(t *testing.T) {
	ts := newTestTokenService(t, "signing-secret", 0)

	for _, token := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.."} {
		_, err := ts.Verify(t.Context(), token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestVerifyRejectsUnsignedAlgorithm(t *testing.T) {
	ts := newTestTokenService(t, "signing-secret", 0)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ts.Verify(t.Context(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMissingExpiry(t *testing.T) {
	sec, err := secrets.New("signing-secret")
	require.NoError(t, err)
	ts := NewTokenService(sec, 0)

	key, err := sec.Open()
	require.NoError(t, err)
	defer key.Destroy()

	eternal := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: uuid.NewString(),
	})
	token, err := eternal.SignedString(key.Bytes())
	require.NoError(t, err)

	_, err = ts.Verify(t.Context(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsBadSubject(t *testing.T) {
	sec, err := secrets.New("signing-secret")
	require.NoError(t, err)
	ts := NewTokenService(sec, 0)

	key, err := sec.Open()
	require.NoError(t, err)
	defer key.Destroy()

	bad := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := bad.SignedString(key.Bytes())
	require.NoError(t, err)

	_, err = ts.Verify(t.Context(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
