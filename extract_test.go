package cask

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caskfs/cask/internal/codec"
	"github.com/caskfs/cask/internal/crypt"
)

func TestExtractAll(t *testing.T) {
	t.Parallel()

	files := map[string][]byte{
		"a.txt":            []byte("alpha"),
		"sub/b.txt":        []byte("beta"),
		"sub/nested/c.txt": []byte("gamma"),
	}
	key := testKey(t)
	dest := createContainer(t, files, key)

	archive, err := Open(dest, key)
	require.NoError(t, err)

	out := t.TempDir()
	require.NoError(t, archive.Extract(context.Background(), out, ""))

	for path, want := range files {
		got, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(path)))
		require.NoError(t, err, "extracted %s", path)
		assert.Equal(t, want, got)
	}
}

func TestExtractPrefix(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	dest := createContainer(t, map[string][]byte{
		"a.txt":     []byte("alpha"),
		"sub/b.txt": []byte("beta"),
	}, key)

	archive, err := Open(dest, key)
	require.NoError(t, err)

	out := t.TempDir()
	require.NoError(t, archive.Extract(context.Background(), out, "sub"))

	got, err := os.ReadFile(filepath.Join(out, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("beta"), got)

	_, err = os.Stat(filepath.Join(out, "a.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist, "entries outside the prefix stay out")
}

func TestExtractSingleFile(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	dest := createContainer(t, map[string][]byte{
		"a.txt":     []byte("alpha"),
		"sub/b.txt": []byte("beta"),
	}, key)

	archive, err := Open(dest, key)
	require.NoError(t, err)

	out := t.TempDir()
	require.NoError(t, archive.Extract(context.Background(), out, "sub/b.txt"))

	got, err := os.ReadFile(filepath.Join(out, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("beta"), got)

	_, err = os.Stat(filepath.Join(out, "a.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtractPrefixNotFound(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	dest := createContainer(t, map[string][]byte{"a.txt": []byte("a")}, key)

	archive, err := Open(dest, key)
	require.NoError(t, err)

	err = archive.Extract(context.Background(), t.TempDir(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestExtractExistingDestination(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	dest := createContainer(t, map[string][]byte{"a.txt": []byte("new")}, key)

	archive, err := Open(dest, key)
	require.NoError(t, err)

	out := t.TempDir()
	existing := filepath.Join(out, "a.txt")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	err = archive.Extract(context.Background(), out, "")
	require.ErrorIs(t, err, ErrDestinationExists)

	got, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), got, "existing file untouched without overwrite")

	require.NoError(t, archive.Extract(context.Background(), out, "", ExtractWithOverwrite()))
	got, err = os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestExtractCancelledContext(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	dest := createContainer(t, map[string][]byte{"a.txt": []byte("a")}, key)

	archive, err := Open(dest, key)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = archive.Extract(ctx, t.TempDir(), "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtractRejectsUnsafePaths(t *testing.T) {
	t.Parallel()

	// A container whose entry names a parent-relative path must never be
	// allowed to write outside the destination directory.
	key := testKey(t)
	engine, err := crypt.New(key)
	require.NoError(t, err)
	sealed, err := engine.Seal([]byte("owned"))
	require.NoError(t, err)

	header := codec.Header{
		Version:    codec.Version,
		FileCount:  1,
		TotalSize:  codec.HeaderSize + codec.EntrySize + uint64(len(sealed)),
		DataOffset: codec.HeaderSize + codec.EntrySize,
	}
	entry := codec.Entry{
		Name:   "evil.txt",
		Path:   "../evil.txt",
		Size:   uint64(len(sealed)),
		Offset: header.DataOffset,
	}
	path := buildRawContainer(t, header, []codec.Entry{entry}, sealed)

	archive, err := Open(path, key)
	require.NoError(t, err)

	parent := t.TempDir()
	out := filepath.Join(parent, "inner")
	require.NoError(t, os.MkdirAll(out, 0o750))

	err = archive.Extract(context.Background(), out, "")
	require.ErrorIs(t, err, ErrInvalidHeader)

	_, statErr := os.Stat(filepath.Join(parent, "evil.txt"))
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestExtractWorkerCounts(t *testing.T) {
	t.Parallel()

	files := make(map[string][]byte, 12)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		files[name+".txt"] = []byte("content of " + name)
	}
	key := testKey(t)
	dest := createContainer(t, files, key)

	archive, err := Open(dest, key)
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 8} {
		out := t.TempDir()
		require.NoError(t, archive.Extract(context.Background(), out, "", ExtractWithWorkers(workers)))
		for path, want := range files {
			got, err := os.ReadFile(filepath.Join(out, path))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}
}
