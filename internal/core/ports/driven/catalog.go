package driven

import (
	"context"

	"github.com/archon-search/archon/internal/core/domain"
)

// SourceCatalog stores the configured data source descriptors.
// Backed by a YAML file edited via the sources CLI.
type SourceCatalog interface {
	// Load returns all configured sources, including disabled ones.
	Load(ctx context.Context) ([]domain.DataSource, error)

	// Save replaces the stored source definitions.
	Save(ctx context.Context, sources []domain.DataSource) error
}
