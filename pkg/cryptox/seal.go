package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the byte length of derived subkeys.
const KeySize = chacha20poly1305.KeySize

var (
	// ErrSealedMalformed reports ciphertext too short to contain a nonce.
	ErrSealedMalformed = errors.New("cryptox: sealed value malformed")
	// ErrSecretTooShort reports a session secret below the minimum length.
	ErrSecretTooShort = errors.New("cryptox: secret must be at least 32 bytes")
)

// DeriveKey derives a 32-byte subkey from a shared secret using HKDF-SHA256.
// The info string separates uses: the same secret yields independent keys for
// signing and sealing ("session-sign", "token-seal").
func DeriveKey(secret []byte, info string) ([]byte, error) {
	if len(secret) < 32 {
		return nil, ErrSecretTooShort
	}

	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, secret, nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("cryptox: derive key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext with ChaCha20-Poly1305 using a random nonce and
// returns base64url(nonce || ciphertext). Used to keep the upstream token
// pair opaque inside the session artifact.
func Seal(key []byte, plaintext []byte) (string, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", fmt.Errorf("cryptox: seal: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("cryptox: seal nonce: %w", err)
	}

	out := aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal.
func Open(key []byte, sealed string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return nil, ErrSealedMalformed
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: open: %w", err)
	}

	if len(raw) < aead.NonceSize() {
		return nil, ErrSealedMalformed
	}

	nonce, ct := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("cryptox: open: %w", err)
	}
	return plaintext, nil
}
