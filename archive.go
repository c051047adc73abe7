package cask

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/caskfs/cask/internal/codec"
	"github.com/caskfs/cask/internal/crypt"
	"github.com/caskfs/cask/internal/pathutil"
)

// Interface compliance.
var _ FS = (*Archive)(nil)

// Archive provides random access to the files sealed inside a container.
//
// The handle keeps the parsed header and entry index in memory but holds
// no open file descriptor between reads: every read opens the container,
// reads one payload, and closes it again. Concurrent reads through one
// handle are therefore safe as long as the underlying storage allows
// independent opens of the same file.
type Archive struct {
	path    string
	header  codec.Header
	entries map[string]codec.Entry
	paths   []string // sorted, for deterministic listings
	engine  *crypt.Engine
	logger  *slog.Logger
}

// Option configures an Archive handle.
type Option func(*Archive)

// WithLogger attaches a logger for debug output during reads.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return a.logger
}

// Open reads and validates the container at path and builds the in-memory
// entry index.
//
// The key must be exactly KeySize bytes; key and version mismatches are
// construction errors, never partial opens. Containers whose entry table
// holds two records with the same relative path are rejected with
// ErrDuplicatePath.
func Open(path string, key []byte, opts ...Option) (*Archive, error) {
	engine, err := crypt.New(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat container: %w", err)
	}

	hdrBuf := make([]byte, codec.HeaderSize)
	if _, err := io.ReadFull(f, hdrBuf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: container shorter than header", ErrMalformedRecord)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header, err := codec.DecodeHeader(hdrBuf)
	if err != nil {
		return nil, err
	}
	if err := validateHeader(header, info.Size()); err != nil {
		return nil, err
	}

	entries := make(map[string]codec.Entry, header.FileCount)
	paths := make([]string, 0, header.FileCount)
	entryBuf := make([]byte, codec.EntrySize)
	for i := uint32(0); i < header.FileCount; i++ {
		if _, err := io.ReadFull(f, entryBuf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: entry %d truncated", ErrMalformedRecord, i)
			}
			return nil, fmt.Errorf("read entry %d: %w", i, err)
		}
		entry, err := codec.DecodeEntry(entryBuf)
		if err != nil {
			return nil, err
		}
		// Checked without addition so a huge Size cannot wrap past the bound.
		if entry.Size > header.TotalSize || entry.Offset > header.TotalSize-entry.Size {
			return nil, fmt.Errorf("%w: entry %q extends past container end", ErrInvalidHeader, entry.Path)
		}
		if _, ok := entries[entry.Path]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePath, entry.Path)
		}
		entries[entry.Path] = entry
		paths = append(paths, entry.Path)
	}
	slices.Sort(paths)

	a := &Archive{
		path:    path,
		header:  header,
		entries: entries,
		paths:   paths,
		engine:  engine,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// validateHeader checks header fields against each other and against the
// container's actual byte size.
func validateHeader(h codec.Header, actualSize int64) error {
	if h.Version != codec.Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.FileCount == 0 {
		return ErrEmptyArchive
	}
	tableEnd := h.TableEnd()
	if h.TotalSize < tableEnd {
		return fmt.Errorf("%w: total size %d smaller than header and entry table (%d bytes)", ErrInvalidHeader, h.TotalSize, tableEnd)
	}
	if h.DataOffset < tableEnd {
		return fmt.Errorf("%w: data offset %d overlaps entry table ending at %d", ErrInvalidHeader, h.DataOffset, tableEnd)
	}
	if h.TotalSize < h.DataOffset {
		return fmt.Errorf("%w: total size %d smaller than data offset %d", ErrInvalidHeader, h.TotalSize, h.DataOffset)
	}
	if h.TotalSize > uint64(actualSize) { //nolint:gosec // actualSize is a non-negative file size
		return fmt.Errorf("%w: total size %d exceeds container size %d", ErrInvalidHeader, h.TotalSize, actualSize)
	}
	return nil
}

// Len returns the number of files in the container.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Entry returns the index record for an exact relative path.
func (a *Archive) Entry(path string) (EntryInfo, bool) {
	entry, ok := a.entries[path]
	if !ok {
		return EntryInfo{}, false
	}
	return EntryInfo{Name: entry.Name, Path: entry.Path, Size: entry.Size}, true
}

// ReadFile returns the decrypted content of the file at the exact relative
// path. The container file is opened fresh for the read and closed before
// returning.
func (a *Archive) ReadFile(path string) ([]byte, error) {
	entry, ok := a.entries[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	sealed, err := a.readSealed(entry)
	if err != nil {
		return nil, err
	}
	plaintext, err := a.engine.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w", path, err)
	}
	a.log().Debug("read file", "path", path, "bytes", len(plaintext))
	return plaintext, nil
}

// readSealed reads one entry's payload bytes with a fresh file handle.
func (a *Archive) readSealed(entry codec.Entry) ([]byte, error) {
	f, err := os.Open(a.path) //nolint:gosec // Path was validated at Open
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	defer f.Close()

	buf := make([]byte, entry.Size)
	if _, err := f.ReadAt(buf, int64(entry.Offset)); err != nil { //nolint:gosec // Offset bounds checked at Open
		return nil, fmt.Errorf("read payload at offset %d: %w", entry.Offset, err)
	}
	return buf, nil
}

// WriteFile implements FS. Containers are immutable once sealed, so this
// always fails with ErrReadOnly.
func (a *Archive) WriteFile(path string, _ []byte) error {
	return fmt.Errorf("%w: cannot write %s", ErrReadOnly, path)
}

// Remove implements FS. Containers are immutable once sealed, so this
// always fails with ErrReadOnly.
func (a *Archive) Remove(path string) error {
	return fmt.Errorf("%w: cannot remove %s", ErrReadOnly, path)
}

// List returns every entry under dir plus synthesized pseudo-directory
// entries for the immediate subdirectories that contain them. Passing ""
// or "." lists from the container root.
//
// Directory names are derived from the path relative to dir, so nested
// subdirectories group under their first segment below dir rather than
// below the container root. Listing a path that names a file returns just
// that file. A dir with no matches returns an empty slice.
func (a *Archive) List(dir string) ([]EntryInfo, error) {
	norm := pathutil.Normalize(dir)
	prefix := pathutil.DirPrefix(norm)

	infos := make([]EntryInfo, 0)
	seen := make(map[string]struct{})
	for _, p := range a.paths {
		entry := a.entries[p]
		if p == norm {
			infos = append(infos, EntryInfo{Name: entry.Name, Path: entry.Path, Size: entry.Size})
			continue
		}
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		infos = append(infos, EntryInfo{Name: entry.Name, Path: entry.Path, Size: entry.Size})

		child, isSubDir := pathutil.Child(p, prefix)
		if !isSubDir {
			continue
		}
		dirPath := prefix + child
		if _, dup := seen[dirPath]; dup {
			continue
		}
		seen[dirPath] = struct{}{}
		if _, isFile := a.entries[dirPath]; isFile {
			continue
		}
		infos = append(infos, EntryInfo{Name: child, Path: dirPath, IsDir: true})
	}
	return infos, nil
}
