package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Minute)

	token, expiresAt, err := signer.Generate("sub-1", "submissions/sub-1/photo.jpg")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	subID, relPath, _, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", subID)
	assert.Equal(t, "submissions/sub-1/photo.jpg", relPath)
}

func TestSignedURLTamperedSignature(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Minute)

	token, _, err := signer.Generate("sub-1", "submissions/sub-1/photo.jpg")
	require.NoError(t, err)

	forged := token[:len(token)-2] + "zz"
	_, _, _, err = signer.Parse(forged)
	assert.Error(t, err)
}

func TestSignedURLWrongSecret(t *testing.T) {
	signer := NewSignedURLSigner("secret-a", time.Minute)
	other := NewSignedURLSigner("secret-b", time.Minute)

	token, _, err := signer.Generate("sub-1", "photo.jpg")
	require.NoError(t, err)

	_, _, _, err = other.Parse(token)
	assert.Error(t, err)
}

func TestSignedURLExpired(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Minute)
	signer.ttl = -time.Minute

	token, _, err := signer.Generate("sub-1", "photo.jpg")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token)
	assert.ErrorContains(t, err, "expired")
}

func TestSignedURLMissingInput(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Minute)

	_, _, err := signer.Generate("", "photo.jpg")
	assert.Error(t, err)

	_, _, _, err = signer.Parse("not-a-token")
	assert.Error(t, err)
}
