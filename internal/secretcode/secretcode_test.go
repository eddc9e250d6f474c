package secretcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veilroom/backend/internal/secretcode"
)

func TestHashRejectsShortSecrets(t *testing.T) {
	// "日本" is 6 bytes but only 2 runes; length is counted in runes.
	for _, secret := range []string{"", "1", "123", "日本"} {
		_, err := secretcode.Hash(secret)
		assert.ErrorIs(t, err, secretcode.ErrTooShort, "secret %q", secret)
	}
}

func TestHashAcceptsMultibyteSecret(t *testing.T) {
	digest, err := secretcode.Hash("日本語です")
	require.NoError(t, err)

	ok, err := secretcode.Verify("日本語です", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHashAndVerify(t *testing.T) {
	digest, err := secretcode.Hash("1234")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	require.NotContains(t, digest, "1234")

	ok, err := secretcode.Verify("1234", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = secretcode.Verify("wrong secret", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashIsSalted(t *testing.T) {
	first, err := secretcode.Hash("hunter2...")
	require.NoError(t, err)
	second, err := secretcode.Hash("hunter2...")
	require.NoError(t, err)

	// Same secret, different salts, both must still verify.
	assert.NotEqual(t, first, second)

	for _, digest := range []string{first, second} {
		ok, err := secretcode.Verify("hunter2...", digest)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestVerifyMalformedDigest(t *testing.T) {
	_, err := secretcode.Verify("1234", "not-a-bcrypt-digest")
	assert.Error(t, err)
}
