// Package loader reads source file content from the local filesystem.
package loader

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/archon-search/archon/internal/core/domain"
	"github.com/archon-search/archon/internal/core/ports/driven"
)

// Ensure FileLoader implements the interface.
var _ driven.ContentLoader = (*FileLoader)(nil)

// FileLoader loads UTF-8 text files. Binary or undecodable content is
// a per-file FileUnreadable failure, never a run failure.
type FileLoader struct {
	// MaxBytes caps the file size; zero means no cap. An oversized
	// file is rejected as unreadable rather than truncated.
	MaxBytes int64
}

// NewFileLoader creates a loader with no size cap.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load returns the file's text content.
func (l *FileLoader) Load(_ context.Context, path string) (string, error) {
	if l.MaxBytes > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("%w: stat %s: %v", domain.ErrFileUnreadable, path, err)
		}
		if info.Size() > l.MaxBytes {
			return "", fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrFileUnreadable, path, l.MaxBytes)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", domain.ErrFileUnreadable, path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrFileUnreadable, path)
	}
	return string(data), nil
}
