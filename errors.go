package cask

import (
	"errors"

	"github.com/caskfs/cask/internal/codec"
	"github.com/caskfs/cask/internal/crypt"
)

// Errors re-exported from internal/codec.
var (
	// ErrMalformedRecord is returned when a header or entry record is
	// shorter than its fixed width.
	ErrMalformedRecord = codec.ErrMalformedRecord

	// ErrNameTooLong is returned when a file's display name exceeds its
	// 16-byte slot.
	ErrNameTooLong = codec.ErrNameTooLong

	// ErrPathTooLong is returned when an archive-relative path exceeds its
	// 255-byte slot.
	ErrPathTooLong = codec.ErrPathTooLong
)

// Errors re-exported from internal/crypt.
var (
	// ErrInvalidKeySize is returned when a key is not exactly 32 bytes.
	ErrInvalidKeySize = crypt.ErrInvalidKeySize

	// ErrAuthentication is returned when a payload fails to decrypt:
	// wrong key, tampered bytes, or a corrupted nonce.
	ErrAuthentication = crypt.ErrAuthentication

	// ErrTruncatedCiphertext is returned when a stored payload is too
	// short to contain its nonce.
	ErrTruncatedCiphertext = crypt.ErrTruncatedCiphertext
)

// Sentinel errors for the container surface.
var (
	// ErrUnsupportedVersion is returned when a container's format version
	// is not understood by this package.
	ErrUnsupportedVersion = errors.New("cask: unsupported container version")

	// ErrInvalidHeader is returned when header fields are inconsistent
	// with each other or with the container's actual size.
	ErrInvalidHeader = errors.New("cask: invalid container header")

	// ErrEmptyArchive is returned when a source directory holds no regular
	// files, or when a container reports a zero file count.
	ErrEmptyArchive = errors.New("cask: archive contains no files")

	// ErrDuplicatePath is returned when two entries in one container share
	// a relative path.
	ErrDuplicatePath = errors.New("cask: duplicate path in entry table")

	// ErrNotFound is returned when a path is absent from the entry index.
	ErrNotFound = errors.New("cask: file not found")

	// ErrReadOnly is returned when a write or delete is attempted against
	// a sealed container or a read-only backend.
	ErrReadOnly = errors.New("cask: read-only medium")

	// ErrNotADirectory is returned when an archive source path is not a
	// directory.
	ErrNotADirectory = errors.New("cask: not a directory")

	// ErrDestinationExists is returned when a destination file exists and
	// overwriting was not requested.
	ErrDestinationExists = errors.New("cask: destination already exists")
)
