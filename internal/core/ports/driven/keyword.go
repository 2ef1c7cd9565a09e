package driven

import (
	"context"

	"github.com/archon-search/archon/internal/core/domain"
)

// KeywordIndex provides full-text scoring over the current chunk set.
// It derives its state from the document index and is rebuilt in full
// after any sync run that changed the index.
type KeywordIndex interface {
	// Rebuild replaces the index content with the given chunks.
	Rebuild(ctx context.Context, chunks []domain.Chunk) error

	// Search returns the best-matching chunk IDs with scores.
	Search(ctx context.Context, query string, limit int) ([]KeywordHit, error)
}

// KeywordHit is a keyword search result.
type KeywordHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the relevance score (BM25).
	Score float64
}

// RebuildHook is notified once per sync run when any change occurred,
// telling a downstream consumer to re-derive its in-memory state from
// the full current chunk set.
type RebuildHook func(ctx context.Context) error
