package crypto

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevate-edu/elevate/pkg/errors"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, hasher.Verify(hash, "correct horse battery"))

	err = hasher.Verify(hash, "wrong password!")
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))
}

func TestBcryptHasher_LengthLimits(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	t.Run("too short", func(t *testing.T) {
		_, err := hasher.Hash("short")
		assert.Error(t, err)
	})

	t.Run("over 72 bytes", func(t *testing.T) {
		_, err := hasher.Hash(strings.Repeat("a", 73))
		assert.Error(t, err)
	})

	t.Run("exactly 72 bytes", func(t *testing.T) {
		_, err := hasher.Hash(strings.Repeat("a", 72))
		assert.NoError(t, err)
	})
}

func TestBcryptHasher_DistinctSalts(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	h1, err := hasher.Hash("correct horse battery")
	require.NoError(t, err)
	h2, err := hasher.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
