package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptor_RoundTrip(t *testing.T) {
	enc, err := NewEncryptorFromPassphrase("local-dev-passphrase")
	require.NoError(t, err)

	ciphertext, err := enc.EncryptString("super-secret-client-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "super-secret-client-secret", ciphertext)

	plaintext, err := enc.DecryptString(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "super-secret-client-secret", plaintext)
}

func TestEncryptor_SamePassphraseDecryptsAcrossInstances(t *testing.T) {
	first, err := NewEncryptorFromPassphrase("shared")
	require.NoError(t, err)
	second, err := NewEncryptorFromPassphrase("shared")
	require.NoError(t, err)

	ciphertext, err := first.EncryptString("payload")
	require.NoError(t, err)

	plaintext, err := second.DecryptString(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "payload", plaintext)
}

func TestEncryptor_WrongKeyFails(t *testing.T) {
	enc, err := NewEncryptorFromPassphrase("right")
	require.NoError(t, err)
	other, err := NewEncryptorFromPassphrase("wrong")
	require.NoError(t, err)

	ciphertext, err := enc.EncryptString("payload")
	require.NoError(t, err)

	_, err = other.DecryptString(ciphertext)
	assert.Error(t, err)
}

func TestEncryptor_RejectsBadInput(t *testing.T) {
	_, err := NewEncryptor([]byte("short"))
	assert.Error(t, err)

	_, err = NewEncryptorFromPassphrase("")
	assert.Error(t, err)

	enc, err := NewEncryptorFromPassphrase("ok")
	require.NoError(t, err)

	_, err = enc.DecryptString("not-base64!!")
	assert.Error(t, err)

	_, err = enc.DecryptString("c2hvcnQ=")
	assert.Error(t, err)
}
