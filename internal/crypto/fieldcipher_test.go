package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinical-notes-backend/internal/config"
	"github.com/clinicore/clinical-notes-backend/internal/crypto"
)

func newCipher(key string) *crypto.FieldCipher {
	return crypto.NewFieldCipher(&config.Config{EncryptionKey: key})
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c := newCipher("unit-test-key")

	encrypted, err := c.Encrypt("Jane Doe")
	require.NoError(t, err)
	assert.NotEqual(t, "Jane Doe", encrypted)
	assert.NotContains(t, encrypted, "Jane")

	assert.Equal(t, "Jane Doe", c.Decrypt(encrypted))
}

func TestEncrypt_EmptyPassthrough(t *testing.T) {
	c := newCipher("unit-test-key")

	encrypted, err := c.Encrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", encrypted)
	assert.Equal(t, "", c.Decrypt(""))
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	c := newCipher("unit-test-key")

	first, err := c.Encrypt("same input")
	require.NoError(t, err)
	second, err := c.Encrypt("same input")
	require.NoError(t, err)

	// Fresh random nonce per call
	assert.NotEqual(t, first, second)
	assert.Equal(t, "same input", c.Decrypt(first))
	assert.Equal(t, "same input", c.Decrypt(second))
}

func TestDecrypt_PlaintextFallback(t *testing.T) {
	c := newCipher("unit-test-key")

	// Values written before field encryption existed are stored as
	// plaintext and must read back unchanged.
	assert.Equal(t, "legacy plaintext name", c.Decrypt("legacy plaintext name"))
	assert.Equal(t, "not base64 at all!!", c.Decrypt("not base64 at all!!"))
}

func TestDecrypt_WrongKeyFallback(t *testing.T) {
	encrypted, err := newCipher("key-one").Encrypt("secret note")
	require.NoError(t, err)

	// Authentication fails under the other key; the stored value comes
	// back as-is instead of an error.
	assert.Equal(t, encrypted, newCipher("key-two").Decrypt(encrypted))
}
