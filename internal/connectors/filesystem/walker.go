// Package filesystem discovers ingestible files under a local root and
// watches the tree for changes.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docsift/internal/logger"
)

// SkippedDirs are dependency-cache directories never descended into.
var SkippedDirs = map[string]bool{
	"node_modules": true,
	"__pycache__":  true,
}

// WalkOptions narrows which files Walk returns.
type WalkOptions struct {
	// IncludeHidden disables skipping of dot files and dot directories.
	IncludeHidden bool

	// Exclude holds glob patterns matched against each entry's base name.
	// A matching directory is pruned.
	Exclude []string

	// Accept reports whether a regular file is actionable. Nil accepts all.
	Accept func(path string) bool
}

// skip reports whether a directory entry named name is filtered out.
func (o WalkOptions) skip(name string, isDir bool) bool {
	if !o.IncludeHidden && isHidden(name) {
		return true
	}
	if isDir && SkippedDirs[name] {
		return true
	}
	for _, pattern := range o.Exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Walk returns every accepted file below root in lexical order.
// Unreadable subdirectories are logged and skipped; an unreadable root fails.
func Walk(ctx context.Context, root string, opts WalkOptions) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("skipping unreadable path %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		if opts.skip(d.Name(), d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if opts.Accept == nil || opts.Accept(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// isHidden reports whether a base name is a dot entry. "." and ".." are not.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
