// Package walker enumerates candidate source files under a target tree.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// ErrDirectoryUnreadable is returned when the root, or a subdirectory in a strict walk, cannot be read.
var ErrDirectoryUnreadable = errors.New("directory unreadable")

// DefaultExtensions lists the file extensions walked when none are configured.
var DefaultExtensions = []string{"php"}

// Walker visits regular files with matching extensions in lexical order.
type Walker struct {
	// Extensions without the leading dot, compared case-insensitively.
	Extensions []string
	// SkipUnreadableDirs skips a subtree that cannot be read instead of aborting the walk.
	SkipUnreadableDirs bool
	Logger             hclog.Logger
}

// New returns a Walker for the given extensions, falling back to DefaultExtensions.
func New(extensions []string, skipUnreadableDirs bool, logger hclog.Logger) *Walker {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Walker{
		Extensions:         extensions,
		SkipUnreadableDirs: skipUnreadableDirs,
		Logger:             logger,
	}
}

// Walk calls fn for each matching file under root. The context is checked before each file.
// An error returned from fn stops the walk and is returned unchanged.
func (w *Walker) Walk(ctx context.Context, root string, fn func(path string) error) error {
	logger := w.logger()

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrDirectoryUnreadable, root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %q is not a directory", ErrDirectoryUnreadable, root)
	}
	if linfo, err := os.Lstat(root); err == nil && linfo.Mode()&fs.ModeSymlink != 0 {
		// a trailing separator makes WalkDir descend into a symlinked root
		root += string(filepath.Separator)
	}

	exts := w.extensionSet()
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("%w: %q: %v", ErrDirectoryUnreadable, path, err)
			}
			if d != nil && d.IsDir() && w.SkipUnreadableDirs {
				logger.Warn("skipping unreadable directory", "path", path, "error", err)
				return filepath.SkipDir
			}
			if d != nil && !d.IsDir() {
				logger.Debug("skipping unreadable entry", "path", path, "error", err)
				return nil
			}
			return fmt.Errorf("%w: %q: %v", ErrDirectoryUnreadable, path, err)
		}
		if d.IsDir() {
			return nil
		}
		if !exts[strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))] {
			return nil
		}
		if !isRegularFile(path, d) {
			return nil
		}
		if !readable(path) {
			logger.Debug("skipping unreadable file", "path", path)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(path)
	})
}

// Collect returns every matching file under root in walk order.
func (w *Walker) Collect(ctx context.Context, root string) ([]string, error) {
	var paths []string
	err := w.Walk(ctx, root, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (w *Walker) logger() hclog.Logger {
	if w.Logger == nil {
		return hclog.NewNullLogger()
	}
	return w.Logger
}

func (w *Walker) extensionSet() map[string]bool {
	exts := w.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		set[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return set
}

// isRegularFile follows symlinks one level: links to regular files count, links to directories do not.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
