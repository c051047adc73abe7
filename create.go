package cask

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caskfs/cask/internal/codec"
	"github.com/caskfs/cask/internal/crypt"
	"github.com/caskfs/cask/internal/pathutil"
)

// pendingFile is one regular file discovered during enumeration. The
// entry's size and offset are filled in once its ciphertext has been
// streamed to the container.
type pendingFile struct {
	absPath string
	entry   codec.Entry
}

// Create packages every regular file under srcDir into a single encrypted
// container at destPath.
//
// srcDir must be an existing directory and destPath must not exist unless
// WithOverwrite is given. The container is assembled in a temporary file
// next to destPath and renamed into place on success, so a failure
// mid-write never leaves a partial container at destPath.
//
// The writer makes two passes: payloads are encrypted with a fresh nonce
// and streamed in enumeration order (never holding more than one file's
// ciphertext in memory), then the entry table and header are rewritten
// with the final offsets and sizes. Oversized names and paths are rejected
// before any container bytes are written. Symbolic links and other
// irregular files are skipped. The context is checked between files.
func Create(ctx context.Context, srcDir, destPath string, key []byte, opts ...CreateOption) error {
	cfg := createConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	engine, err := crypt.New(key)
	if err != nil {
		return err
	}

	info, err := os.Stat(srcDir)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, srcDir)
	}

	if _, err := os.Stat(destPath); err == nil {
		if !cfg.overwrite {
			return fmt.Errorf("%w: %s", ErrDestinationExists, destPath)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat destination: %w", err)
	}

	files, err := scanDir(srcDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyArchive, srcDir)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".cask-*")
	if err != nil {
		return fmt.Errorf("create temp container: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	header, err := writeContainer(ctx, tmp, engine, files, &cfg)
	if err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close container: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename container: %w", err)
	}
	success = true

	cfg.log().Debug("container sealed",
		"dest", destPath,
		"files", header.FileCount,
		"bytes", header.TotalSize,
	)
	return nil
}

// scanDir enumerates every regular file under root in walk order,
// validating that each display name and archive-relative path fits its
// fixed slot.
func scanDir(root string) ([]pendingFile, error) {
	var files []pendingFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		name := pathutil.Base(rel)
		if len(name) > codec.MaxNameLen {
			return fmt.Errorf("%w: %q is %d bytes, limit %d", ErrNameTooLong, name, len(name), codec.MaxNameLen)
		}
		if len(rel) > codec.MaxPathLen {
			return fmt.Errorf("%w: %q is %d bytes, limit %d", ErrPathTooLong, rel, len(rel), codec.MaxPathLen)
		}

		files = append(files, pendingFile{
			absPath: path,
			entry:   codec.Entry{Name: name, Path: rel},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// writeContainer performs the two-pass write into f: placeholder header
// and zeroed entry table, streamed payloads, then both backfilled with
// final sizes and offsets. It returns the final header.
func writeContainer(ctx context.Context, f *os.File, engine *crypt.Engine, files []pendingFile, cfg *createConfig) (codec.Header, error) {
	header := codec.Header{
		Version:    codec.Version,
		FileCount:  uint32(len(files)), //nolint:gosec // Entry counts are far below uint32 range
		DataOffset: codec.HeaderSize + uint64(len(files))*codec.EntrySize,
	}

	if _, err := f.Write(codec.EncodeHeader(header)); err != nil {
		return codec.Header{}, fmt.Errorf("write header: %w", err)
	}
	if _, err := f.Write(make([]byte, len(files)*codec.EntrySize)); err != nil {
		return codec.Header{}, fmt.Errorf("write entry table: %w", err)
	}

	offset := header.DataOffset
	for i := range files {
		if err := ctx.Err(); err != nil {
			return codec.Header{}, err
		}

		plaintext, err := os.ReadFile(files[i].absPath) //nolint:gosec // Paths come from the walked source tree
		if err != nil {
			return codec.Header{}, fmt.Errorf("read %s: %w", files[i].absPath, err)
		}
		sealed, err := engine.Seal(plaintext)
		if err != nil {
			return codec.Header{}, fmt.Errorf("encrypt %s: %w", files[i].entry.Path, err)
		}
		if _, err := f.Write(sealed); err != nil {
			return codec.Header{}, fmt.Errorf("write payload for %s: %w", files[i].entry.Path, err)
		}

		files[i].entry.Offset = offset
		files[i].entry.Size = uint64(len(sealed))
		offset += uint64(len(sealed))

		cfg.log().Debug("sealed file", "path", files[i].entry.Path, "bytes", len(sealed))
	}
	header.TotalSize = offset

	if _, err := f.Seek(codec.HeaderSize, io.SeekStart); err != nil {
		return codec.Header{}, fmt.Errorf("seek entry table: %w", err)
	}
	for i := range files {
		buf, err := codec.EncodeEntry(files[i].entry)
		if err != nil {
			return codec.Header{}, err
		}
		if _, err := f.Write(buf); err != nil {
			return codec.Header{}, fmt.Errorf("write entry for %s: %w", files[i].entry.Path, err)
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return codec.Header{}, fmt.Errorf("seek header: %w", err)
	}
	if _, err := f.Write(codec.EncodeHeader(header)); err != nil {
		return codec.Header{}, fmt.Errorf("rewrite header: %w", err)
	}
	return header, nil
}

// CreateOption configures Create.
type CreateOption func(*createConfig)

type createConfig struct {
	overwrite bool
	logger    *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (c *createConfig) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.logger
}

// WithOverwrite allows Create to replace an existing container at the
// destination path.
func WithOverwrite() CreateOption {
	return func(cfg *createConfig) {
		cfg.overwrite = true
	}
}

// CreateWithLogger attaches a logger for debug output during creation.
func CreateWithLogger(logger *slog.Logger) CreateOption {
	return func(cfg *createConfig) {
		cfg.logger = logger
	}
}
