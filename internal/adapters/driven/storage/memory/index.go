// Package memory provides in-memory implementations of the storage
// ports, used in tests and as a lightweight fallback.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/archon-search/archon/internal/core/domain"
	"github.com/archon-search/archon/internal/core/ports/driven"
)

// Ensure DocumentIndex implements the interface.
var _ driven.DocumentIndex = (*DocumentIndex)(nil)

// DocumentIndex is an in-memory implementation of driven.DocumentIndex.
type DocumentIndex struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk
}

// NewDocumentIndex creates a new in-memory document index.
func NewDocumentIndex() *DocumentIndex {
	return &DocumentIndex{
		chunks: make(map[string]domain.Chunk),
	}
}

// GetBySource returns metadata for chunks with a matching source path.
func (s *DocumentIndex) GetBySource(_ context.Context, sourcePath string) ([]domain.ChunkMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var metas []domain.ChunkMeta
	for _, c := range s.chunks {
		if c.Meta.SourcePath == sourcePath {
			metas = append(metas, c.Meta)
		}
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].ChunkID < metas[j].ChunkID })
	return metas, nil
}

// ListSourceMeta returns one representative metadata row per source path.
func (s *DocumentIndex) ListSourceMeta(_ context.Context) (map[string]domain.ChunkMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.ChunkMeta)
	for _, c := range s.chunks {
		if _, ok := out[c.Meta.SourcePath]; !ok {
			out[c.Meta.SourcePath] = c.Meta
		}
	}
	return out, nil
}

// Add inserts or replaces chunks.
func (s *DocumentIndex) Add(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		s.chunks[c.Meta.ChunkID] = c
	}
	return nil
}

// Delete removes chunks by ID. Unknown IDs are ignored.
func (s *DocumentIndex) Delete(_ context.Context, chunkIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range chunkIDs {
		delete(s.chunks, id)
	}
	return nil
}

// IsEmpty reports whether the index holds no chunks.
func (s *DocumentIndex) IsEmpty(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks) == 0, nil
}

// AllChunks returns every stored chunk, ordered by source path and
// position for stable iteration.
func (s *DocumentIndex) AllChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Chunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Meta.SourcePath != out[j].Meta.SourcePath {
			return out[i].Meta.SourcePath < out[j].Meta.SourcePath
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}
