package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveKeySeparatesUses(t *testing.T) {
	t.Parallel()

	secret := []byte(strings.Repeat("s", 32))

	sign, err := DeriveKey(secret, "session-sign")
	require.NoError(t, err)
	seal, err := DeriveKey(secret, "token-seal")
	require.NoError(t, err)

	require.Len(t, sign, KeySize)
	require.Len(t, seal, KeySize)
	require.NotEqual(t, sign, seal)

	// Deterministic for the same secret and info.
	again, err := DeriveKey(secret, "session-sign")
	require.NoError(t, err)
	require.Equal(t, sign, again)
}

func TestDeriveKeyRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := DeriveKey([]byte("short"), "session-sign")
	require.ErrorIs(t, err, ErrSecretTooShort)
}

func TestSealRoundTrip(t *testing.T) {
	t.Parallel()

	key, err := DeriveKey([]byte(strings.Repeat("k", 32)), "token-seal")
	require.NoError(t, err)

	sealed, err := Seal(key, []byte("access-token|refresh-token"))
	require.NoError(t, err)
	require.NotContains(t, sealed, "access-token")

	plaintext, err := Open(key, sealed)
	require.NoError(t, err)
	require.Equal(t, []byte("access-token|refresh-token"), plaintext)
}

func TestOpenRejectsTamperedValue(t *testing.T) {
	t.Parallel()

	key, err := DeriveKey([]byte(strings.Repeat("k", 32)), "token-seal")
	require.NoError(t, err)

	sealed, err := Seal(key, []byte("payload"))
	require.NoError(t, err)

	tampered := "A" + sealed[1:]
	_, err = Open(key, tampered)
	require.Error(t, err)

	_, err = Open(key, "!!not-base64!!")
	require.ErrorIs(t, err, ErrSealedMalformed)

	_, err = Open(key, "c2hvcnQ")
	require.ErrorIs(t, err, ErrSealedMalformed)
}

func TestGenerateTokenAndFingerprint(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	other, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, tok, other)

	require.Equal(t, FingerprintToken(tok), FingerprintToken(tok))
	require.NotEqual(t, FingerprintToken(tok), FingerprintToken(other))

	_, err = GenerateToken(0)
	require.Error(t, err)
}
