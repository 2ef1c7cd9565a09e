package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/archon-search/archon/internal/core/domain"
	"github.com/archon-search/archon/internal/logger"
)

// FileScanner expands a data source into the concrete set of files it
// currently contains. Results are normalised absolute paths,
// deduplicated across patterns and sorted.
type FileScanner struct{}

// NewFileScanner creates a new file scanner.
func NewFileScanner() *FileScanner {
	return &FileScanner{}
}

// Scan walks the source root and returns every file matching any of
// the source's patterns. A missing root is not fatal: the source is
// treated as currently empty so the remaining sources still sync.
func (s *FileScanner) Scan(ctx context.Context, src domain.DataSource) ([]string, error) {
	root, err := filepath.Abs(src.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve root for source %s: %w", src.Name, err)
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		logger.Warn("Source %s root %s unavailable, treating as empty", src.Name, root)
		return nil, nil
	}

	seen := make(map[string]struct{})
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: skip it, keep scanning the rest.
			logger.Warn("Skipping unreadable path %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if matchesAny(src.Patterns, root, path) {
			seen[filepath.Clean(path)] = struct{}{}
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scan source %s: %w", src.Name, walkErr)
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	logger.Debug("Source %s: %d files matched", src.Name, len(paths))
	return paths, nil
}

// matchesAny reports whether the file matches at least one pattern.
// A pattern without a separator matches against the base name at any
// depth; a pattern with separators matches against the path relative
// to the source root.
func matchesAny(patterns []string, root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	base := filepath.Base(path)

	for _, pattern := range patterns {
		var ok bool
		if strings.ContainsRune(pattern, filepath.Separator) || strings.ContainsRune(pattern, '/') {
			ok, err = filepath.Match(filepath.FromSlash(pattern), rel)
		} else {
			ok, err = filepath.Match(pattern, base)
		}
		if err != nil {
			logger.Warn("Invalid pattern %q: %v", pattern, err)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
