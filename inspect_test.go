package cask

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caskfs/cask/internal/codec"
)

func TestInspect(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	dest := createContainer(t, map[string][]byte{
		"a.txt":     []byte("12345"),
		"sub/b.txt": []byte("abc"),
	}, key)

	info, err := Inspect(dest)
	require.NoError(t, err)

	stat, err := os.Stat(dest)
	require.NoError(t, err)

	assert.Equal(t, uint8(codec.Version), info.Version)
	assert.Equal(t, uint32(2), info.FileCount)
	assert.Equal(t, uint64(stat.Size()), info.TotalSize)
	assert.Equal(t, uint64(codec.HeaderSize+2*codec.EntrySize), info.DataOffset)
	require.NoError(t, info.Digest.Validate())
}

func TestInspectNeedsNoKey(t *testing.T) {
	t.Parallel()

	dest := createContainer(t, map[string][]byte{"a.txt": []byte("sealed")}, testKey(t))

	// Inspect never touches payload plaintext, so it works with the key
	// long gone.
	info, err := Inspect(dest)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), info.FileCount)
}

func TestInspectDigestIsStable(t *testing.T) {
	t.Parallel()

	dest := createContainer(t, map[string][]byte{"a.txt": []byte("x")}, testKey(t))

	first, err := Inspect(dest)
	require.NoError(t, err)
	second, err := Inspect(dest)
	require.NoError(t, err)
	assert.Equal(t, first.Digest, second.Digest)
}

func TestInspectMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Inspect(filepath.Join(t.TempDir(), "nope.cask"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestInspectRejectsInvalidHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.cask")
	header := codec.Header{Version: 9, FileCount: 1, TotalSize: codec.HeaderSize, DataOffset: codec.HeaderSize}
	require.NoError(t, os.WriteFile(path, codec.EncodeHeader(header), 0o644))

	_, err := Inspect(path)
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}
