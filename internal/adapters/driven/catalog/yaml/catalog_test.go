package yaml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archon-search/archon/internal/core/domain"
)

func TestCatalog_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	catalog, err := New(path)
	require.NoError(t, err)
	ctx := context.Background()

	sources := []domain.DataSource{
		{
			Name:     "docs",
			Path:     "/data/docs",
			Category: "notes",
			Priority: 10,
			Patterns: []string{"*.txt", "*.md"},
			Enabled:  true,
		},
		{
			Name:     "archive",
			Path:     "/data/archive",
			Patterns: []string{"*.txt"},
			Enabled:  false,
		},
	}
	require.NoError(t, catalog.Save(ctx, sources))

	loaded, err := catalog.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sources, loaded)
}

func TestCatalog_Load_MissingFileIsEmpty(t *testing.T) {
	catalog, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	sources, err := catalog.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestCatalog_Load_HandWrittenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	content := `sources:
  - name: wiki
    path: /srv/wiki
    category: reference
    patterns:
      - "*.md"
    enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	catalog, err := New(path)
	require.NoError(t, err)

	sources, err := catalog.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "wiki", sources[0].Name)
	assert.Equal(t, "/srv/wiki", sources[0].Path)
	assert.Equal(t, "reference", sources[0].Category)
	assert.Equal(t, []string{"*.md"}, sources[0].Patterns)
	assert.True(t, sources[0].Enabled)
}

func TestCatalog_Load_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources: [not: valid: yaml"), 0600))

	catalog, err := New(path)
	require.NoError(t, err)

	_, err = catalog.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidSource)
}

func TestCatalog_Save_Replaces(t *testing.T) {
	catalog, err := New(filepath.Join(t.TempDir(), "sources.yaml"))
	require.NoError(t, err)
	ctx := context.Background()

	first := []domain.DataSource{{Name: "one", Path: "/one", Patterns: []string{"*"}, Enabled: true}}
	second := []domain.DataSource{{Name: "two", Path: "/two", Patterns: []string{"*"}, Enabled: true}}

	require.NoError(t, catalog.Save(ctx, first))
	require.NoError(t, catalog.Save(ctx, second))

	loaded, err := catalog.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "two", loaded[0].Name)
}
