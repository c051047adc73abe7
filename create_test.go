package cask

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caskfs/cask/internal/codec"
	"github.com/caskfs/cask/internal/crypt"
)

func TestCreateSourceNotADirectory(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	dest := filepath.Join(t.TempDir(), "out.cask")

	err := Create(context.Background(), file, dest, testKey(t))
	require.ErrorIs(t, err, ErrNotADirectory)
}

func TestCreateSourceMissing(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "out.cask")
	err := Create(context.Background(), filepath.Join(t.TempDir(), "nope"), dest, testKey(t))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCreateEmptySource(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "out.cask")
	err := Create(context.Background(), t.TempDir(), dest, testKey(t))
	require.ErrorIs(t, err, ErrEmptyArchive)

	_, statErr := os.Stat(dest)
	assert.ErrorIs(t, statErr, os.ErrNotExist, "no destination created on failure")
}

func TestCreateDestinationExists(t *testing.T) {
	t.Parallel()

	src := writeTree(t, map[string][]byte{"a.txt": []byte("a")})
	dest := filepath.Join(t.TempDir(), "out.cask")
	require.NoError(t, os.WriteFile(dest, []byte("already here"), 0o644))

	err := Create(context.Background(), src, dest, testKey(t))
	require.ErrorIs(t, err, ErrDestinationExists)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("already here"), got, "existing destination untouched")
}

func TestCreateWithOverwrite(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	src := writeTree(t, map[string][]byte{"a.txt": []byte("fresh")})
	dest := filepath.Join(t.TempDir(), "out.cask")
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0o644))

	require.NoError(t, Create(context.Background(), src, dest, key, WithOverwrite()))

	archive, err := Open(dest, key)
	require.NoError(t, err)
	got, err := archive.ReadFile("a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), got)
}

func TestCreateInvalidKey(t *testing.T) {
	t.Parallel()

	src := writeTree(t, map[string][]byte{"a.txt": []byte("a")})
	dest := filepath.Join(t.TempDir(), "out.cask")

	err := Create(context.Background(), src, dest, []byte("short"))
	require.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestCreateRejectsLongName(t *testing.T) {
	t.Parallel()

	name := strings.Repeat("n", codec.MaxNameLen+1)
	src := writeTree(t, map[string][]byte{name: []byte("a")})
	destDir := t.TempDir()
	dest := filepath.Join(destDir, "out.cask")

	err := Create(context.Background(), src, dest, testKey(t))
	require.ErrorIs(t, err, ErrNameTooLong)

	leftovers, readErr := os.ReadDir(destDir)
	require.NoError(t, readErr)
	assert.Empty(t, leftovers, "no destination or temp file left behind")
}

func TestCreateRejectsLongPath(t *testing.T) {
	t.Parallel()

	// Each segment fits the name slot but the joined path exceeds its slot.
	segments := make([]string, 0, 24)
	for i := 0; i < 24; i++ {
		segments = append(segments, strings.Repeat("d", 12))
	}
	rel := strings.Join(segments, "/") + "/f.txt"
	require.Greater(t, len(rel), codec.MaxPathLen)

	src := writeTree(t, map[string][]byte{rel: []byte("a")})
	dest := filepath.Join(t.TempDir(), "out.cask")

	err := Create(context.Background(), src, dest, testKey(t))
	require.ErrorIs(t, err, ErrPathTooLong)
}

func TestCreateCancelledContext(t *testing.T) {
	t.Parallel()

	src := writeTree(t, map[string][]byte{"a.txt": []byte("a")})
	destDir := t.TempDir()
	dest := filepath.Join(destDir, "out.cask")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Create(ctx, src, dest, testKey(t))
	require.ErrorIs(t, err, context.Canceled)

	leftovers, readErr := os.ReadDir(destDir)
	require.NoError(t, readErr)
	assert.Empty(t, leftovers, "cancellation cleans up the temp file")
}

func TestCreateSkipsSymlinks(t *testing.T) {
	t.Parallel()

	src := writeTree(t, map[string][]byte{"a.txt": []byte("real")})
	if err := os.Symlink(filepath.Join(src, "a.txt"), filepath.Join(src, "link.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	key := testKey(t)
	dest := filepath.Join(t.TempDir(), "out.cask")
	require.NoError(t, Create(context.Background(), src, dest, key))

	archive, err := Open(dest, key)
	require.NoError(t, err)
	assert.Equal(t, 1, archive.Len())
	_, err = archive.ReadFile("link.txt")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateZeroLengthFile(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	dest := createContainer(t, map[string][]byte{"empty.bin": {}}, key)

	archive, err := Open(dest, key)
	require.NoError(t, err)

	got, err := archive.ReadFile("empty.bin")
	require.NoError(t, err)
	assert.Empty(t, got)

	info, ok := archive.Entry("empty.bin")
	require.True(t, ok)
	assert.Equal(t, uint64(crypt.Overhead), info.Size, "empty plaintext still pays nonce and tag")
}

func TestCreateContainerLayout(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	contents := map[string][]byte{
		"a.txt":     []byte("12345"),
		"sub/b.txt": []byte("abc"),
	}
	dest := createContainer(t, contents, key)

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(raw), codec.HeaderSize)
	assert.Equal(t, byte(codec.Version), raw[0])
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(raw[1:5]))

	totalSize := binary.LittleEndian.Uint64(raw[5:13])
	dataOffset := binary.LittleEndian.Uint64(raw[13:21])
	assert.Equal(t, uint64(len(raw)), totalSize, "total size covers the whole container")
	assert.Equal(t, uint64(codec.HeaderSize+2*codec.EntrySize), dataOffset, "payloads start right after the entry table")

	// Every plaintext byte must be sealed: the payload region is exactly
	// the sum of the per-file ciphertexts and holds none of the inputs.
	payloadLen := 0
	for _, content := range contents {
		payloadLen += len(content) + crypt.Overhead
	}
	assert.Equal(t, uint64(codec.HeaderSize+2*codec.EntrySize+payloadLen), totalSize)
	assert.NotContains(t, string(raw[dataOffset:]), "12345")
}

func TestCreatedEntriesCarryFinalOffsets(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	dest := createContainer(t, map[string][]byte{
		"a.txt": []byte("aaaa"),
		"b.txt": []byte("bb"),
	}, key)

	archive, err := Open(dest, key)
	require.NoError(t, err)

	end := archive.header.DataOffset
	for _, p := range archive.paths {
		entry := archive.entries[p]
		assert.GreaterOrEqual(t, entry.Offset, archive.header.DataOffset)
		assert.LessOrEqual(t, entry.Offset+entry.Size, archive.header.TotalSize)
		if entry.Offset+entry.Size > end {
			end = entry.Offset + entry.Size
		}
	}
	assert.Equal(t, archive.header.TotalSize, end, "payload region is densely packed")
}
