package local

import (
	"fmt"

	"github.com/caskfs/cask"
	"github.com/caskfs/cask/internal/crypt"
)

// EncryptedDir is a Dir that passes every payload through authenticated
// encryption, so file contents are never stored in the clear.
//
// Listings report on-disk (ciphertext) sizes. Paths and names are not
// encrypted.
type EncryptedDir struct {
	dir    *Dir
	engine *crypt.Engine
}

// NewEncryptedDir creates an encrypting backend rooted at base. The key
// must be exactly cask.KeySize bytes.
func NewEncryptedDir(base string, writable bool, key []byte) (*EncryptedDir, error) {
	engine, err := crypt.New(key)
	if err != nil {
		return nil, err
	}
	dir, err := NewDir(base, writable)
	if err != nil {
		return nil, err
	}
	return &EncryptedDir{dir: dir, engine: engine}, nil
}

// ReadFile reads and decrypts the file at path. Tampered or wrong-key
// content fails with cask.ErrAuthentication.
func (e *EncryptedDir) ReadFile(path string) ([]byte, error) {
	sealed, err := e.dir.ReadFile(path)
	if err != nil {
		return nil, err
	}
	plaintext, err := e.engine.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w", path, err)
	}
	return plaintext, nil
}

// WriteFile encrypts data under a fresh nonce and stores it at path.
func (e *EncryptedDir) WriteFile(path string, data []byte) error {
	sealed, err := e.engine.Seal(data)
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", path, err)
	}
	return e.dir.WriteFile(path, sealed)
}

// Remove deletes the file at path.
func (e *EncryptedDir) Remove(path string) error {
	return e.dir.Remove(path)
}

// List returns the immediate children of dir.
func (e *EncryptedDir) List(dir string) ([]cask.EntryInfo, error) {
	return e.dir.List(dir)
}
