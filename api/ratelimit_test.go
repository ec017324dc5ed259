package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsBeforeThreshold(t *testing.T) {
	rl := newLoginRateLimiter()

	// Under the threshold, requests should not be blocked.
	for i := 0; i < maxFailures-1; i++ {
		rl.recordFailure("id-1")
		blocked, _ := rl.check("id-1")
		assert.False(t, blocked, "should not block before reaching maxFailures")
	}
}

func TestRateLimiter_BlocksAfterThreshold(t *testing.T) {
	rl := newLoginRateLimiter()

	for i := 0; i < maxFailures; i++ {
		rl.recordFailure("id-1")
	}

	blocked, retryAfter := rl.check("id-1")
	require.True(t, blocked, "should block after maxFailures")
	assert.Greater(t, retryAfter, time.Duration(0), "retry-after should be positive")
}

func TestRateLimiter_ExponentialBackoff(t *testing.T) {
	rl := newLoginRateLimiter()

	for i := 0; i < maxFailures; i++ {
		rl.recordFailure("id-1")
	}
	_, first := rl.check("id-1")

	// One more failure should double the lockout.
	rl.recordFailure("id-1")
	_, second := rl.check("id-1")
	assert.Greater(t, second, first, "lockout should increase with more failures")
}

func TestRateLimiter_SuccessResetsCounter(t *testing.T) {
	rl := newLoginRateLimiter()

	for i := 0; i < maxFailures; i++ {
		rl.recordFailure("id-1")
	}
	blocked, _ := rl.check("id-1")
	require.True(t, blocked)

	rl.recordSuccess("id-1")

	blocked, _ = rl.check("id-1")
	assert.False(t, blocked, "should not block after successful login")
}

func TestRateLimiter_IsolatesIdentifiers(t *testing.T) {
	rl := newLoginRateLimiter()

	for i := 0; i < maxFailures; i++ {
		rl.recordFailure("id-1")
	}
	blocked, _ := rl.check("id-1")
	require.True(t, blocked)

	blocked, _ = rl.check("id-2")
	assert.False(t, blocked, "rate limit for one identifier should not affect another")
}

func TestRateLimiter_UnknownIdentifierNotBlocked(t *testing.T) {
	rl := newLoginRateLimiter()

	blocked, _ := rl.check("unknown")
	assert.False(t, blocked)
}

func TestRateLimiter_SweepRemovesExpired(t *testing.T) {
	rl := newLoginRateLimiter()

	// Manually create an expired record.
	rl.mu.Lock()
	rl.attempts["old"] = &attemptRecord{
		failures:    maxFailures + 1,
		lastFailure: time.Now().Add(-2 * attemptExpiry),
		lockedUntil: time.Now().Add(-attemptExpiry),
	}
	rl.mu.Unlock()

	rl.sweep()

	rl.mu.Lock()
	_, exists := rl.attempts["old"]
	rl.mu.Unlock()
	assert.False(t, exists, "sweep should remove expired records")
}

func TestRateLimiter_MaxLockoutCap(t *testing.T) {
	rl := newLoginRateLimiter()

	for i := 0; i < maxFailures+20; i++ {
		rl.recordFailure("id-1")
	}

	_, retryAfter := rl.check("id-1")
	assert.LessOrEqual(t, retryAfter, maxLockout+time.Second, "lockout should not exceed maxLockout")
}

func TestLookupID(t *testing.T) {
	// Case-insensitive: the same account typed differently maps to one key.
	assert.Equal(t, lookupID("Ada"), lookupID("ada"))
	assert.NotEqual(t, lookupID("ada"), lookupID("ada@example.com"))

	// The key must not contain the identifier itself.
	assert.NotContains(t, lookupID("ada@example.com"), "ada")
	assert.Len(t, lookupID("ada"), 64)
}
