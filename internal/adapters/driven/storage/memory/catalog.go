package memory

import (
	"context"
	"sync"

	"github.com/archon-search/archon/internal/core/domain"
	"github.com/archon-search/archon/internal/core/ports/driven"
)

// Ensure SourceCatalog implements the interface.
var _ driven.SourceCatalog = (*SourceCatalog)(nil)

// SourceCatalog is an in-memory implementation of driven.SourceCatalog.
type SourceCatalog struct {
	mu      sync.RWMutex
	sources []domain.DataSource
}

// NewSourceCatalog creates a catalog pre-populated with the given sources.
func NewSourceCatalog(sources ...domain.DataSource) *SourceCatalog {
	return &SourceCatalog{sources: sources}
}

// Load returns all configured sources.
func (c *SourceCatalog) Load(_ context.Context) ([]domain.DataSource, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.DataSource, len(c.sources))
	copy(out, c.sources)
	return out, nil
}

// Save replaces the stored source definitions.
func (c *SourceCatalog) Save(_ context.Context, sources []domain.DataSource) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = make([]domain.DataSource, len(sources))
	copy(c.sources, sources)
	return nil
}
