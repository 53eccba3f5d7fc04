package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptSecret(t *testing.T) {
	blob, err := EncryptSecret("super-secret-api-key", "passphrase")
	require.NoError(t, err)
	assert.NotContains(t, blob, "super-secret-api-key")

	got, err := DecryptSecret(blob, "passphrase")
	require.NoError(t, err)
	assert.Equal(t, "super-secret-api-key", got)
}

func TestDecryptSecretWrongPassphrase(t *testing.T) {
	blob, err := EncryptSecret("secret", "right")
	require.NoError(t, err)

	_, err = DecryptSecret(blob, "wrong")
	assert.Error(t, err)
}

func TestEncryptSecretRejectsEmpty(t *testing.T) {
	_, err := EncryptSecret("", "pass")
	assert.Error(t, err)

	_, err = EncryptSecret("secret", "")
	assert.Error(t, err)
}

func TestCoinbaseHeadersAtDeterministic(t *testing.T) {
	auth := &HMACAuth{Key: "k", Secret: "s"}

	a := auth.CoinbaseHeadersAt("GET", "/api/v3/brokerage/accounts", "", 1700000000)
	b := auth.CoinbaseHeadersAt("GET", "/api/v3/brokerage/accounts", "", 1700000000)
	assert.Equal(t, a, b)
	assert.Equal(t, "k", a["CB-ACCESS-KEY"])
	assert.Equal(t, "1700000000", a["CB-ACCESS-TIMESTAMP"])
	assert.Len(t, a["CB-ACCESS-SIGN"], 64) // hex SHA-256
}

func TestSignQuery(t *testing.T) {
	auth := &HMACAuth{Key: "k", Secret: "s"}
	sig := auth.SignQuery("timestamp=1700000000")
	assert.Len(t, sig, 64)
	assert.Equal(t, sig, auth.SignQuery("timestamp=1700000000"))
	assert.NotEqual(t, sig, auth.SignQuery("timestamp=1700000001"))
}
