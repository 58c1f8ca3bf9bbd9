package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/credential-server/internal/model"
)

func TestBcrypt_HashVerify(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	digest, err := h.Hash("pass123")
	require.NoError(t, err)
	assert.NotEqual(t, "pass123", digest)

	assert.True(t, h.Verify("pass123", digest))
	assert.False(t, h.Verify("pass124", digest))
}

func TestBcrypt_SaltedDigests(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	first, err := h.Hash("same")
	require.NoError(t, err)
	second, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same", first))
	assert.True(t, h.Verify("same", second))
}

func TestBcrypt_MalformedDigest(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	assert.False(t, h.Verify("x", ""))
	assert.False(t, h.Verify("x", "not-a-bcrypt-digest"))
}

func TestBcrypt_Cost(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)
	digest, err := h.Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.Equal(t, DefaultCost, NewBcrypt(0).cost)
}

func TestBcrypt_TooLong(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", 73))
	require.Error(t, err)
	assert.Equal(t, model.KindInvalidArgument, model.KindOf(err))

	_, err = h.Hash(strings.Repeat("a", 72))
	require.NoError(t, err)
}
