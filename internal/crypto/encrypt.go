// Package crypto seals the Discord OAuth access token before it is placed in
// the session cookie.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	// hkdfInfo separates this key from the one used to sign session JWTs.
	hkdfInfo = "unify-dashboard/v1/oauth-token"

	// Format: tok:v1:<base64url(nonce+ciphertext+tag)>
	sealedPrefix = "tok:v1:"
)

// ErrNotSealed is returned by Open for values without the sealed prefix.
var ErrNotSealed = errors.New("crypto: value is not sealed")

// Sealer encrypts short strings with AES-256-GCM under a key derived from
// the session secret.
type Sealer struct {
	aead cipher.AEAD
}

// DeriveKey derives a 32-byte AES-256 key from secret using HKDF-SHA256.
func DeriveKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("crypto: secret must not be empty")
	}

	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	key := make([]byte, 32)
	if _, err := r.Read(key); err != nil {
		return nil, fmt.Errorf("crypto: hkdf key derivation failed: %w", err)
	}
	return key, nil
}

// NewSealer derives a key from secret and prepares the cipher
func NewSealer(secret string) (*Sealer, error) {
	key, err := DeriveKey(secret)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: aes.NewCipher: %w", err)
	}
	aead, err := cipher.NewGCMWithRandomNonce(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: NewGCMWithRandomNonce: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext. The empty string seals to the empty string.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	// The random nonce is generated internally and prepended to the output.
	ciphertext := s.aead.Seal(nil, nil, []byte(plaintext), nil)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Open reverses Seal. Values lacking the prefix fail with ErrNotSealed.
func (s *Sealer) Open(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if !strings.HasPrefix(value, sealedPrefix) {
		return "", ErrNotSealed
	}

	ciphertext, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("crypto: base64 decode: %w", err)
	}
	plaintext, err := s.aead.Open(nil, nil, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("crypto: decryption failed (wrong key or corrupted data): %w", err)
	}
	return string(plaintext), nil
}
