// Package crypt seals and opens container payloads with AES-256-GCM.
//
// Every sealed blob is self-describing: a fresh random nonce is generated
// per call and prepended to the ciphertext, so blobs can be decrypted
// independently of one another.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	// KeySize is the exact key length accepted by the engine.
	KeySize = 32

	// NonceSize is the GCM nonce length prepended to every sealed blob.
	NonceSize = 12

	// Overhead is the number of bytes Seal adds beyond the plaintext
	// (nonce plus GCM authentication tag).
	Overhead = NonceSize + 16
)

// Sentinel errors.
var (
	// ErrInvalidKeySize is returned when a key is not exactly KeySize bytes.
	// Keys that are empty, too short, or too long are all rejected.
	ErrInvalidKeySize = errors.New("cask: invalid key size")

	// ErrAuthentication is returned when a sealed blob fails to open:
	// wrong key, tampered bytes, or a corrupted nonce.
	ErrAuthentication = errors.New("cask: authentication failed")

	// ErrTruncatedCiphertext is returned when a sealed blob is too short
	// to contain its nonce.
	ErrTruncatedCiphertext = errors.New("cask: truncated ciphertext")
)

// Engine encrypts and decrypts byte payloads with a fixed symmetric key.
type Engine struct {
	aead cipher.AEAD
}

// New creates an Engine from a key of exactly KeySize bytes.
func New(key []byte) (*Engine, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeySize, len(key), KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &Engine{aead: aead}, nil
}

// Seal encrypts plaintext under a fresh random nonce and returns
// nonce || ciphertext.
func (e *Engine) Seal(plaintext []byte) ([]byte, error) {
	out := make([]byte, NonceSize, NonceSize+len(plaintext)+e.aead.Overhead())
	if _, err := rand.Read(out); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return e.aead.Seal(out, out[:NonceSize], plaintext, nil), nil
}

// Open splits the leading nonce from a sealed blob and decrypts the rest.
//
// Any authentication failure is reported as ErrAuthentication; the
// integrity guarantee of the cipher mode is never downgraded to an empty
// result.
func (e *Engine) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < NonceSize {
		return nil, fmt.Errorf("%w: %d bytes, want at least %d", ErrTruncatedCiphertext, len(sealed), NonceSize)
	}
	plaintext, err := e.aead.Open(nil, sealed[:NonceSize], sealed[NonceSize:], nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

// GenerateKey returns a fresh cryptographically random key of KeySize bytes.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}
