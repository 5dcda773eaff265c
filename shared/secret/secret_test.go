package secret_test

import (
	"testing"

	"consultation/shared/secret"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestNew_RejectsBadKey(t *testing.T) {
	_, err := secret.New("short")
	assert.ErrorIs(t, err, secret.ErrInvalidKey)
}

func TestSealOpen(t *testing.T) {
	box, err := secret.New(testKey)
	require.NoError(t, err)

	sealed, err := box.Seal("zoom-api-secret")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "zoom-api-secret")

	again, err := box.Seal("zoom-api-secret")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again)

	plain, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "zoom-api-secret", plain)
}

func TestOpen_Failures(t *testing.T) {
	box, err := secret.New(testKey)
	require.NoError(t, err)

	other, err := secret.New("fedcba9876543210fedcba9876543210")
	require.NoError(t, err)

	sealed, err := other.Seal("zoom-api-secret")
	require.NoError(t, err)

	_, err = box.Open(sealed)
	assert.ErrorIs(t, err, secret.ErrDecrypt)

	_, err = box.Open("%%%not-base64")
	assert.ErrorIs(t, err, secret.ErrInvalidSealed)

	_, err = box.Open("c2hvcnQ=")
	assert.ErrorIs(t, err, secret.ErrInvalidSealed)
}

func TestPlain(t *testing.T) {
	box := secret.Plain()

	sealed, err := box.Seal("zoom-api-secret")
	require.NoError(t, err)
	assert.Equal(t, "zoom-api-secret", sealed)

	opened, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "zoom-api-secret", opened)
}
