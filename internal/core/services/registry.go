package services

import (
	"context"
	"fmt"

	"github.com/archon-search/archon/internal/core/domain"
	"github.com/archon-search/archon/internal/core/ports/driven"
	"github.com/archon-search/archon/internal/logger"
)

// Config keys consumed by the registry.
const (
	// KeyDataPath is the legacy single-directory root, used when no
	// sources are configured in the catalog.
	KeyDataPath = "data_path"
)

// defaultLegacyPatterns selects files in legacy single-directory mode.
var defaultLegacyPatterns = []string{"*.txt"}

// SourceRegistry resolves the configured data sources for a sync run.
// Callers never special-case legacy versus multi-source mode: when the
// catalog is empty, the legacy data path is wrapped in a single
// synthetic descriptor.
type SourceRegistry struct {
	catalog driven.SourceCatalog
	config  driven.ConfigStore
}

// NewSourceRegistry creates a new source registry.
func NewSourceRegistry(catalog driven.SourceCatalog, config driven.ConfigStore) *SourceRegistry {
	return &SourceRegistry{
		catalog: catalog,
		config:  config,
	}
}

// ListSources returns the enabled sources for this run, with defaults
// applied. A malformed descriptor is a fatal configuration error.
func (r *SourceRegistry) ListSources(ctx context.Context) ([]domain.DataSource, error) {
	var configured []domain.DataSource
	if r.catalog != nil {
		var err error
		configured, err = r.catalog.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load source catalog: %w", err)
		}
	}

	if len(configured) == 0 {
		return r.legacySource()
	}

	sources := make([]domain.DataSource, 0, len(configured))
	for _, src := range configured {
		if err := src.Validate(); err != nil {
			return nil, err
		}
		if !src.Enabled {
			logger.Debug("Source %s disabled, skipping", src.Name)
			continue
		}
		sources = append(sources, src.WithDefaults())
	}

	logger.Info("Resolved %d enabled sources", len(sources))
	return sources, nil
}

// legacySource wraps the single-directory configuration in one
// synthetic descriptor.
func (r *SourceRegistry) legacySource() ([]domain.DataSource, error) {
	dataPath := ""
	if r.config != nil {
		dataPath = r.config.GetString(KeyDataPath)
	}
	if dataPath == "" {
		return nil, fmt.Errorf("%w: no sources configured and %s is unset",
			domain.ErrInvalidSource, KeyDataPath)
	}

	src := domain.DataSource{
		Name:     "default",
		Path:     dataPath,
		Patterns: defaultLegacyPatterns,
		Enabled:  true,
	}.WithDefaults()

	logger.Debug("No catalog entries, using legacy data path %s", dataPath)
	return []domain.DataSource{src}, nil
}
