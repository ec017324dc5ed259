package account

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"

	"golang.org/x/crypto/argon2"

	"github.com/jmcleod/gatehouse/internal/secrets"
	"github.com/jmcleod/gatehouse/internal/util"
)

// Argon2idParams captures the KDF cost settings recorded alongside each
// hash, so parameters can be raised without invalidating stored hashes.
type Argon2idParams struct {
	Time        uint32
	MemoryKiB   uint32
	Parallelism uint8
	KeyLen      uint32
}

// DefaultArgon2idParams returns the cost settings used for new hashes.
func DefaultArgon2idParams() Argon2idParams {
	return Argon2idParams{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		KeyLen:      32,
	}
}

const saltLen = 16

// phcRE matches the PHC-style encoded form produced by Hash.
var phcRE = regexp.MustCompile(`^\$argon2id\$v=(\d+)\$m=(\d+),t=(\d+),p=(\d+)\$([A-Za-z0-9+/]+)\$([A-Za-z0-9+/]+)$`)

// Hasher derives and verifies keyed password hashes. The password is run
// through argon2id together with a process-wide pepper, so a leaked hash
// store alone is not enough for an offline attack.
type Hasher struct {
	pepper secrets.Secret
	params Argon2idParams
	pool   *workerPool
}

// NewHasher returns a Hasher using the given pepper and default parameters.
func NewHasher(pepper secrets.Secret) *Hasher {
	return &Hasher{
		pepper: pepper,
		params: DefaultArgon2idParams(),
		pool:   cryptoPool,
	}
}

// WithParams overrides the cost parameters for new hashes.
func (h *Hasher) WithParams(params Argon2idParams) *Hasher {
	h.params = params
	return h
}

// derive runs the KDF on the worker pool. The pepper is appended to the
// normalized password bytes before key derivation.
func (h *Hasher) derive(ctx context.Context, password string, salt []byte, params Argon2idParams) ([]byte, error) {
	pepper, err := h.pepper.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening pepper: %v", ErrHashingFailure, err)
	}
	defer pepper.Destroy()

	input := append([]byte(util.Normalize(password)), pepper.Bytes()...)

	var key []byte
	err = h.pool.do(ctx, func() {
		key = argon2.IDKey(input, salt, params.Time, params.MemoryKiB, params.Parallelism, params.KeyLen)
	})
	if err != nil {
		return nil, err
	}
	return key, nil
}

// Hash produces a PHC-style encoded argon2id hash with a fresh random salt.
// The encoded form records the cost parameters and salt, never the pepper.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	salt, err := util.RandomBytes(saltLen)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}

	key, err := h.derive(ctx, password, salt, h.params)
	if err != nil {
		return "", err
	}

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.MemoryKiB, h.params.Time, h.params.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify recomputes the hash with the stored salt and parameters and
// compares in constant time. A mismatch is (false, nil); only an encoded
// form that cannot be parsed is an error.
func (h *Hasher) Verify(ctx context.Context, password, encoded string) (bool, error) {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	candidate, err := h.derive(ctx, password, salt, params)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(candidate, key) == 1, nil
}

func decodeHash(encoded string) (Argon2idParams, []byte, []byte, error) {
	matches := phcRE.FindStringSubmatch(encoded)
	if matches == nil {
		return Argon2idParams{}, nil, nil, ErrMalformedHash
	}

	version, err := strconv.Atoi(matches[1])
	if err != nil || version != argon2.Version {
		return Argon2idParams{}, nil, nil, fmt.Errorf("%w: unsupported version", ErrMalformedHash)
	}

	memory, err1 := strconv.ParseUint(matches[2], 10, 32)
	time, err2 := strconv.ParseUint(matches[3], 10, 32)
	parallelism, err3 := strconv.ParseUint(matches[4], 10, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return Argon2idParams{}, nil, nil, ErrMalformedHash
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(matches[5])
	if err != nil {
		return Argon2idParams{}, nil, nil, ErrMalformedHash
	}
	key, err := b64.DecodeString(matches[6])
	if err != nil {
		return Argon2idParams{}, nil, nil, ErrMalformedHash
	}

	params := Argon2idParams{
		Time:        uint32(time),
		MemoryKiB:   uint32(memory),
		Parallelism: uint8(parallelism),
		KeyLen:      uint32(len(key)),
	}
	return params, salt, key, nil
}
