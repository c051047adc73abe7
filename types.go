package cask

import "github.com/caskfs/cask/internal/crypt"

// KeySize is the exact key length in bytes accepted everywhere a key is
// taken.
const KeySize = crypt.KeySize

// GenerateKey returns a fresh cryptographically random key of KeySize bytes.
func GenerateKey() ([]byte, error) {
	return crypt.GenerateKey()
}

// EntryInfo describes one entry returned by List: either a stored file or
// a pseudo-directory synthesized from the paths beneath it.
type EntryInfo struct {
	// Name is the entry's display name (last path segment).
	Name string

	// Path is the path relative to the archive or backend root, using
	// "/" separators.
	Path string

	// Size is the stored payload length in bytes. For container entries
	// this is the ciphertext length, not the plaintext length. Zero for
	// directories.
	Size uint64

	// IsDir reports whether the entry is a directory.
	IsDir bool
}

// FS is the storage contract shared by sealed containers and the
// pass-through backends in package local.
//
// Implementations return the typed sentinel errors of this package:
// ErrNotFound for absent paths and ErrReadOnly for mutations against
// read-only media. Paths use "/" separators and are relative to the
// implementation's root.
type FS interface {
	// ReadFile returns the full decoded content of the file at path.
	ReadFile(path string) ([]byte, error)

	// WriteFile stores data at path, creating parent directories as
	// needed.
	WriteFile(path string, data []byte) error

	// Remove deletes the file at path.
	Remove(path string) error

	// List returns the entries under dir.
	List(dir string) ([]EntryInfo, error)
}
