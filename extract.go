package cask

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/caskfs/cask/internal/fileutil"
	"github.com/caskfs/cask/internal/pathutil"
)

const defaultExtractWorkers = 4

// Extract decrypts every entry under prefix into destDir, preserving the
// archive-relative layout. Pass "" or "." to extract the whole container;
// a prefix naming a single file extracts just that file.
//
// Entries are read by a bounded pool of workers; each read uses its own
// container file handle, so no mutable state is shared between workers.
// Files are written via a temp file and rename, so an interrupted
// extraction never leaves a partially written file. Existing destination
// files fail with ErrDestinationExists unless ExtractWithOverwrite is
// given.
func (a *Archive) Extract(ctx context.Context, destDir, prefix string, opts ...ExtractOption) error {
	cfg := extractConfig{workers: defaultExtractWorkers}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}

	norm := pathutil.Normalize(prefix)
	dirPrefix := pathutil.DirPrefix(norm)
	selected := make([]string, 0)
	for _, p := range a.paths {
		if p == norm || strings.HasPrefix(p, dirPrefix) {
			selected = append(selected, p)
		}
	}
	if len(selected) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}

	// Entry paths come from the container and are untrusted; refuse
	// anything that could escape destDir.
	for _, p := range selected {
		if !fs.ValidPath(p) {
			return fmt.Errorf("%w: unsafe entry path %q", ErrInvalidHeader, p)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for _, p := range selected {
		p := p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return a.extractOne(p, destDir, &cfg)
		})
	}
	return g.Wait()
}

// extractOne decrypts a single entry and writes it below destDir.
func (a *Archive) extractOne(path, destDir string, cfg *extractConfig) error {
	content, err := a.ReadFile(path)
	if err != nil {
		return err
	}

	dest := filepath.Join(destDir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if !cfg.overwrite {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dest)
		}
	}
	if err := fileutil.WriteAtomic(dest, content); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	a.log().Debug("extracted file", "path", path, "dest", dest)
	return nil
}

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	overwrite bool
	workers   int
}

// ExtractWithOverwrite replaces existing destination files.
func ExtractWithOverwrite() ExtractOption {
	return func(cfg *extractConfig) {
		cfg.overwrite = true
	}
}

// ExtractWithWorkers sets the number of concurrent entry readers.
func ExtractWithWorkers(n int) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.workers = n
	}
}
