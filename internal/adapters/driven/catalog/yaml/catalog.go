// Package yaml stores data source definitions in a YAML file,
// editable both by hand and through the sources CLI.
package yaml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/archon-search/archon/internal/core/domain"
	"github.com/archon-search/archon/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.SourceCatalog = (*Catalog)(nil)

// catalogFile is the on-disk document shape.
type catalogFile struct {
	Sources []domain.DataSource `yaml:"sources"`
}

// Catalog is a YAML-file implementation of driven.SourceCatalog.
type Catalog struct {
	mu   sync.Mutex
	path string
}

// New creates a catalog backed by the given file. If path is empty,
// defaults to ~/.archon/sources.yaml.
func New(path string) (*Catalog, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".archon", "sources.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}
	return &Catalog{path: path}, nil
}

// Path returns the catalog file path.
func (c *Catalog) Path() string {
	return c.path
}

// Load returns all configured sources. A missing file is an empty
// catalog, not an error.
func (c *Catalog) Load(_ context.Context) ([]domain.DataSource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing catalog %s: %v", domain.ErrInvalidSource, c.path, err)
	}
	return doc.Sources, nil
}

// Save replaces the stored source definitions.
func (c *Catalog) Save(_ context.Context, sources []domain.DataSource) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := yaml.Marshal(catalogFile{Sources: sources})
	if err != nil {
		return fmt.Errorf("marshalling catalog: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}
