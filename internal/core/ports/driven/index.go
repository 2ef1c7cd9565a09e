package driven

import (
	"context"

	"github.com/archon-search/archon/internal/core/domain"
)

// DocumentIndex persists chunks and their metadata.
// Backed by SQLite for local storage.
//
// The index is the only shared mutable resource during a sync run. It
// must tolerate concurrent Add/Delete calls targeting disjoint source
// paths; the reconciler performs no locking of its own.
type DocumentIndex interface {
	// GetBySource returns metadata for every chunk whose source path
	// matches. An empty result is not an error.
	GetBySource(ctx context.Context, sourcePath string) ([]domain.ChunkMeta, error)

	// ListSourceMeta returns one representative metadata row per
	// indexed source path. Lets the change detector read the full
	// index state in a single call.
	ListSourceMeta(ctx context.Context) (map[string]domain.ChunkMeta, error)

	// Add inserts or replaces chunks. Chunk IDs are deterministic, so
	// re-adding identical content is an idempotent upsert.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// Delete removes chunks by ID. Unknown IDs are ignored.
	Delete(ctx context.Context, chunkIDs []string) error

	// IsEmpty reports whether the index holds no chunks.
	IsEmpty(ctx context.Context) (bool, error)

	// AllChunks returns every stored chunk. Used by downstream
	// consumers rebuilding derived state after a changed run.
	AllChunks(ctx context.Context) ([]domain.Chunk, error)
}
