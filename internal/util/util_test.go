package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	// U+FB01 (LATIN SMALL LIGATURE FI) decomposes to "fi" under NFKD.
	assert.Equal(t, "fi", Normalize("ﬁ"))
	assert.Equal(t, "plain ascii", Normalize("plain ascii"))
}

func TestRandomBytes(t *testing.T) {
	a, err := RandomBytes(16)
	require.NoError(t, err)
	require.Len(t, a, 16)

	b, err := RandomBytes(16)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
