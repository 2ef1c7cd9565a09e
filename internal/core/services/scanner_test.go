package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archon-search/archon/internal/core/domain"
)

func scanSource(dir string, patterns ...string) domain.DataSource {
	return domain.DataSource{
		Name:     "scan",
		Path:     dir,
		Patterns: patterns,
		Enabled:  true,
	}
}

func TestFileScanner_Scan_MatchesPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "x")
	writeFile(t, dir, "b.md", "x")
	writeFile(t, dir, "c.txt", "x")

	paths, err := NewFileScanner().Scan(context.Background(), scanSource(dir, "*.txt"))
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "a.txt"), paths[0])
	assert.Equal(t, filepath.Join(dir, "c.txt"), paths[1])
}

func TestFileScanner_Scan_Recursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested", "deep")
	require.NoError(t, os.MkdirAll(sub, 0700))
	writeFile(t, dir, "top.txt", "x")
	writeFile(t, sub, "inner.txt", "x")

	// A bare pattern matches the base name at any depth.
	paths, err := NewFileScanner().Scan(context.Background(), scanSource(dir, "*.txt"))
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestFileScanner_Scan_RelativePattern(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(sub, 0700))
	writeFile(t, dir, "top.txt", "x")
	writeFile(t, sub, "inner.txt", "x")

	// A pattern with separators matches against the root-relative path.
	paths, err := NewFileScanner().Scan(context.Background(), scanSource(dir, "docs/*.txt"))
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(sub, "inner.txt"), paths[0])
}

func TestFileScanner_Scan_DeduplicatesAcrossPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "x")

	paths, err := NewFileScanner().Scan(context.Background(), scanSource(dir, "*.txt", "a.*"))
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestFileScanner_Scan_MissingRootIsEmpty(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	paths, err := NewFileScanner().Scan(context.Background(), scanSource(missing, "*.txt"))
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestFileScanner_Scan_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "looks-like.txt"), 0700))
	writeFile(t, dir, "real.txt", "x")

	paths, err := NewFileScanner().Scan(context.Background(), scanSource(dir, "*.txt"))
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "real.txt"), paths[0])
}

func TestFileScanner_Scan_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileScanner().Scan(ctx, scanSource(dir, "*.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
