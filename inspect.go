package cask

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"

	"github.com/caskfs/cask/internal/codec"
)

// Info summarizes a container without decrypting any payload.
type Info struct {
	// Version is the container format version.
	Version uint8

	// FileCount is the number of entries in the table.
	FileCount uint32

	// TotalSize is the container's total byte length as recorded in the
	// header.
	TotalSize uint64

	// DataOffset is the byte offset where encrypted payloads begin.
	DataOffset uint64

	// Digest is the canonical digest of the container bytes, usable as a
	// stable identity for the sealed archive.
	Digest digest.Digest
}

// Inspect reads and validates the header of the container at path. No key
// is required; payloads are hashed but never decrypted.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return Info{}, fmt.Errorf("open container: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return Info{}, fmt.Errorf("stat container: %w", err)
	}

	buf := make([]byte, codec.HeaderSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Info{}, fmt.Errorf("%w: container shorter than header", ErrMalformedRecord)
		}
		return Info{}, fmt.Errorf("read header: %w", err)
	}
	header, err := codec.DecodeHeader(buf)
	if err != nil {
		return Info{}, err
	}
	if err := validateHeader(header, stat.Size()); err != nil {
		return Info{}, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("seek container: %w", err)
	}
	dgst, err := digest.Canonical.FromReader(f)
	if err != nil {
		return Info{}, fmt.Errorf("digest container: %w", err)
	}

	return Info{
		Version:    header.Version,
		FileCount:  header.FileCount,
		TotalSize:  header.TotalSize,
		DataOffset: header.DataOffset,
		Digest:     dgst,
	}, nil
}
