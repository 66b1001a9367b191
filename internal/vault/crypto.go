// Package vault encrypts secrets, such as the forms API token, before they
// are written to the settings store.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

// sealedPrefix marks a value produced by Seal: enc:v2:<salt>:<nonce|ciphertext>,
// both parts base64.
const (
	sealedPrefix = "enc:v2:"
	saltSize     = 16
)

var (
	// ErrDecrypt is returned for a wrong passphrase or tampered data.
	ErrDecrypt = errors.New("decryption failed (wrong key or tampered data)")
	// ErrMalformed is returned for a tagged value that cannot be parsed.
	ErrMalformed = errors.New("malformed sealed value")
)

// DeriveKey turns an operator passphrase and salt into a 32-byte AES-256 key
// with argon2id.
func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, 32)
}

// NewSalt returns random bytes for DeriveKey.
func NewSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// Encrypt seals plaintext with AES-GCM and returns base64(nonce|ciphertext).
func Encrypt(plaintext string, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt.
func Decrypt(encoded string, key []byte) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecrypt
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", ErrDecrypt
	}

	nonce, body := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

// Seal encrypts s under a key derived from passphrase and a fresh salt, and
// tags the result so IsSealed can recognise it. An empty string stays empty.
func Seal(s, passphrase string) (string, error) {
	if s == "" {
		return "", nil
	}
	salt, err := NewSalt()
	if err != nil {
		return "", err
	}
	enc, err := Encrypt(s, DeriveKey(passphrase, salt))
	if err != nil {
		return "", err
	}
	return sealedPrefix + base64.StdEncoding.EncodeToString(salt) + ":" + enc, nil
}

// Open decrypts a value produced by Seal. Untagged values are returned as is,
// so settings written before a passphrase was configured keep working.
func Open(s, passphrase string) (string, error) {
	if !IsSealed(s) {
		return s, nil
	}
	saltPart, enc, ok := strings.Cut(strings.TrimPrefix(s, sealedPrefix), ":")
	if !ok {
		return "", ErrMalformed
	}
	salt, err := base64.StdEncoding.DecodeString(saltPart)
	if err != nil || len(salt) == 0 {
		return "", ErrMalformed
	}
	return Decrypt(enc, DeriveKey(passphrase, salt))
}

// IsSealed reports whether s was produced by Seal.
func IsSealed(s string) bool {
	return strings.HasPrefix(s, sealedPrefix)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
