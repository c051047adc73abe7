// Package local provides pass-through storage backends rooted at a
// directory on disk: a plain one and one that encrypts every payload at
// rest. Both implement the cask.FS contract so they are interchangeable
// with sealed containers.
package local

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caskfs/cask"
	"github.com/caskfs/cask/internal/fileutil"
	"github.com/caskfs/cask/internal/pathutil"
)

// Interface compliance.
var (
	_ cask.FS = (*Dir)(nil)
	_ cask.FS = (*EncryptedDir)(nil)
)

// Dir is a storage backend backed by an ordinary directory tree.
//
// Read-only instances reject WriteFile and Remove with cask.ErrReadOnly.
type Dir struct {
	base     string
	writable bool
}

// NewDir creates a backend rooted at base. Writable backends create the
// base directory if missing; read-only backends require it to exist.
func NewDir(base string, writable bool) (*Dir, error) {
	if writable {
		if err := os.MkdirAll(base, 0o750); err != nil {
			return nil, fmt.Errorf("create base directory: %w", err)
		}
		return &Dir{base: base, writable: true}, nil
	}

	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("stat base directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", cask.ErrNotADirectory, base)
	}
	return &Dir{base: base}, nil
}

// fullPath resolves a backend-relative path to a filesystem path.
func (d *Dir) fullPath(path string) string {
	return filepath.Join(d.base, filepath.FromSlash(pathutil.Normalize(path)))
}

// ReadFile returns the content of the file at path.
func (d *Dir) ReadFile(path string) ([]byte, error) {
	content, err := os.ReadFile(d.fullPath(path)) //nolint:gosec // Paths are rooted at the backend base
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", cask.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return content, nil
}

// WriteFile stores data at path, creating parent directories as needed.
// The write is atomic: data lands in a temp file that is renamed into
// place.
func (d *Dir) WriteFile(path string, data []byte) error {
	if !d.writable {
		return fmt.Errorf("%w: cannot write %s", cask.ErrReadOnly, path)
	}
	full := d.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := fileutil.WriteAtomic(full, data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Remove deletes the file at path.
func (d *Dir) Remove(path string) error {
	if !d.writable {
		return fmt.Errorf("%w: cannot remove %s", cask.ErrReadOnly, path)
	}
	err := os.Remove(d.fullPath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", cask.ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// List returns the immediate children of dir.
func (d *Dir) List(dir string) ([]cask.EntryInfo, error) {
	norm := pathutil.Normalize(dir)
	dirents, err := os.ReadDir(d.fullPath(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", cask.ErrNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	prefix := pathutil.DirPrefix(norm)
	infos := make([]cask.EntryInfo, 0, len(dirents))
	for _, de := range dirents {
		info, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", de.Name(), err)
		}
		entry := cask.EntryInfo{
			Name:  de.Name(),
			Path:  prefix + de.Name(),
			IsDir: de.IsDir(),
		}
		if !de.IsDir() {
			entry.Size = uint64(info.Size()) //nolint:gosec // File sizes are non-negative
		}
		infos = append(infos, entry)
	}
	return infos, nil
}
