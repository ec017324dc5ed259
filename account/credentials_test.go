package account

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/gatehouse/internal/secrets"
)

// testParams keeps argon2 cheap enough for the test suite.
var testParams = Argon2idParams{Time: 1, MemoryKiB: 8 * 1024, Parallelism: 1, KeyLen: 32}

func newTestHasher(t *testing.T, pepper string) *Hasher {
	t.Helper()
	sec, err := secrets.New(pepper)
	require.NoError(t, err)
	return NewHasher(sec).WithParams(testParams)
}

func TestHashAndVerify(t *testing.T) {
	h := newTestHasher(t, "pepper-secret")

	passwords := []string{
		"secretpw",
		"correct horse battery staple",
		"pässwörd-ünïcode",
		"short",
	}

	for _, password := range passwords {
		t.Run(password, func(t *testing.T) {
			encoded, err := h.Hash(t.Context(), password)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))
			assert.NotContains(t, encoded, password)

			ok, err := h.Verify(t.Context(), password, encoded)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestVerifyMismatch(t *testing.T) {
	h := newTestHasher(t, "pepper-secret")

	encoded, err := h.Hash(t.Context(), "secretpw")
	require.NoError(t, err)

	for _, wrong := range []string{"wrongpw", "secretp", "secretpw ", ""} {
		ok, err := h.Verify(t.Context(), wrong, encoded)
		require.NoError(t, err)
		assert.False(t, ok, "password %q must not verify", wrong)
	}
}

func TestVerifyDifferentPepper(t *testing.T) {
	encoded, err := newTestHasher(t, "pepper-one").Hash(t.Context(), "secretpw")
	require.NoError(t, err)

	ok, err := newTestHasher(t, "pepper-two").Verify(t.Context(), "secretpw", encoded)
	require.NoError(t, err)
	assert.False(t, ok, "hash must be bound to the server pepper")
}

func TestHashesAreSalted(t *testing.T) {
	h := newTestHasher(t, "pepper-secret")

	first, err := h.Hash(t.Context(), "secretpw")
	require.NoError(t, err)
	second, err := h.Hash(t.Context(), "secretpw")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyMalformedHash(t *testing.T) {
	h := newTestHasher(t, "pepper-secret")

	malformed := []string{
		"",
		"not a hash",
		"$argon2id$v=19$m=8192,t=1,p=1$saltonly",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$a2V5", // unsupported version
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5",    // bad base64
	}

	for _, encoded := range malformed {
		_, err := h.Verify(t.Context(), "secretpw", encoded)
		assert.ErrorIs(t, err, ErrMalformedHash, "hash %q", encoded)
	}
}

func TestVerifyHonorsStoredParams(t *testing.T) {
	// A hash produced with different cost settings must still verify;
	// the parameters come from the encoded form, not the hasher.
	sec, err := secrets.New("pepper-secret")
	require.NoError(t, err)
	slow := NewHasher(sec).WithParams(Argon2idParams{Time: 2, MemoryKiB: 16 * 1024, Parallelism: 2, KeyLen: 32})

	encoded, err := slow.Hash(t.Context(), "secretpw")
	require.NoError(t, err)

	fast := newTestHasher(t, "pepper-secret")
	ok, err := fast.Verify(t.Context(), "secretpw", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}
