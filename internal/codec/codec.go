// Package codec implements the fixed-width binary layout of the cask
// container header and entry table.
//
// All integers are little-endian. The header and every entry occupy a
// fixed number of bytes so the entry table can be rewritten in place
// after payload offsets are known. String slots are zero-padded on
// encode; decoding trims trailing NUL bytes and repairs invalid UTF-8.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Layout constants.
const (
	// Version is the container format version written by this package.
	Version = 1

	// HeaderSize is the fixed byte width of the container header:
	// version:u8 | file_count:u32 | total_size:u64 | data_offset:u64.
	HeaderSize = 1 + 4 + 8 + 8

	// MaxNameLen is the byte capacity of an entry's display-name slot.
	MaxNameLen = 16

	// MaxPathLen is the byte capacity of an entry's path slot.
	MaxPathLen = 255

	// EntrySize is the fixed byte width of one entry record:
	// name:[u8;16] | path:[u8;255] | size:u64 | offset:u64.
	EntrySize = MaxNameLen + MaxPathLen + 8 + 8
)

// Sentinel errors.
var (
	// ErrMalformedRecord is returned when a header or entry buffer is
	// shorter than its fixed width. Container bytes are untrusted input;
	// short buffers are reported, never panicked on.
	ErrMalformedRecord = errors.New("cask: malformed record")

	// ErrNameTooLong is returned when a display name does not fit its slot.
	ErrNameTooLong = errors.New("cask: name too long")

	// ErrPathTooLong is returned when an archive path does not fit its slot.
	ErrPathTooLong = errors.New("cask: path too long")
)

// Header is the fixed container preamble.
type Header struct {
	Version    uint8
	FileCount  uint32
	TotalSize  uint64
	DataOffset uint64
}

// TableEnd returns the first byte offset past the entry table.
func (h Header) TableEnd() uint64 {
	return HeaderSize + uint64(h.FileCount)*EntrySize
}

// EncodeHeader serializes h into a fixed HeaderSize-byte buffer.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = h.Version
	binary.LittleEndian.PutUint32(buf[1:5], h.FileCount)
	binary.LittleEndian.PutUint64(buf[5:13], h.TotalSize)
	binary.LittleEndian.PutUint64(buf[13:21], h.DataOffset)
	return buf
}

// DecodeHeader parses a fixed-width header buffer.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header is %d bytes, want %d", ErrMalformedRecord, len(buf), HeaderSize)
	}
	return Header{
		Version:    buf[0],
		FileCount:  binary.LittleEndian.Uint32(buf[1:5]),
		TotalSize:  binary.LittleEndian.Uint64(buf[5:13]),
		DataOffset: binary.LittleEndian.Uint64(buf[13:21]),
	}, nil
}

// Entry describes one packaged file: display name, archive-relative path,
// stored payload length, and absolute byte offset within the container.
type Entry struct {
	Name   string
	Path   string
	Size   uint64
	Offset uint64
}

// EncodeEntry serializes e into a fixed EntrySize-byte buffer.
//
// Names and paths that exceed their slot capacity are rejected, never
// silently truncated.
func EncodeEntry(e Entry) ([]byte, error) {
	if len(e.Name) > MaxNameLen {
		return nil, fmt.Errorf("%w: %q is %d bytes, limit %d", ErrNameTooLong, e.Name, len(e.Name), MaxNameLen)
	}
	if len(e.Path) > MaxPathLen {
		return nil, fmt.Errorf("%w: %q is %d bytes, limit %d", ErrPathTooLong, e.Path, len(e.Path), MaxPathLen)
	}
	buf := make([]byte, EntrySize)
	copy(buf[:MaxNameLen], e.Name)
	copy(buf[MaxNameLen:MaxNameLen+MaxPathLen], e.Path)
	binary.LittleEndian.PutUint64(buf[MaxNameLen+MaxPathLen:], e.Size)
	binary.LittleEndian.PutUint64(buf[MaxNameLen+MaxPathLen+8:], e.Offset)
	return buf, nil
}

// DecodeEntry parses a fixed-width entry buffer.
func DecodeEntry(buf []byte) (Entry, error) {
	if len(buf) < EntrySize {
		return Entry{}, fmt.Errorf("%w: entry is %d bytes, want %d", ErrMalformedRecord, len(buf), EntrySize)
	}
	return Entry{
		Name:   decodeString(buf[:MaxNameLen]),
		Path:   decodeString(buf[MaxNameLen : MaxNameLen+MaxPathLen]),
		Size:   binary.LittleEndian.Uint64(buf[MaxNameLen+MaxPathLen:]),
		Offset: binary.LittleEndian.Uint64(buf[MaxNameLen+MaxPathLen+8:]),
	}, nil
}

// decodeString trims trailing zero padding and repairs invalid UTF-8.
func decodeString(b []byte) string {
	s := strings.TrimRight(string(b), "\x00")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, string(utf8.RuneError))
	}
	return s
}
