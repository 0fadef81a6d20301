package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

// CiphertextPrefix marks an already-encrypted value so a re-save never
// encrypts twice.
const CiphertextPrefix = "enc1:"

var ErrInvalidCiphertext = errors.New("invalid ciphertext")

// KeyCipher encrypts wallet private keys at rest with AES-GCM.
// The secret is padded or truncated to 32 bytes, matching the platform's
// fixed key derivation.
type KeyCipher struct {
	key []byte
}

// NewKeyCipher creates a key cipher from the configured secret
func NewKeyCipher(secret string) (*KeyCipher, error) {
	if secret == "" {
		return nil, errors.New("encryption secret must not be empty")
	}

	key := make([]byte, 32)
	copy(key, []byte(secret))
	return &KeyCipher{key: key}, nil
}

// IsEncrypted reports whether a value already carries the ciphertext marker
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, CiphertextPrefix)
}

// Encrypt encrypts a private key. Already-encrypted input is returned
// unchanged so save paths are idempotent.
func (c *KeyCipher) Encrypt(plaintext string) (string, error) {
	if IsEncrypted(plaintext) {
		return plaintext, nil
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return CiphertextPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt decrypts a private key previously produced by Encrypt
func (c *KeyCipher) Decrypt(ciphertext string) (string, error) {
	if !IsEncrypted(ciphertext) {
		return "", ErrInvalidCiphertext
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, CiphertextPrefix))
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(raw) < gcm.NonceSize() {
		return "", ErrInvalidCiphertext
	}

	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	return string(plaintext), nil
}
