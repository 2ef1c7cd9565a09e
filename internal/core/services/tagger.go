package services

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/archon-search/archon/internal/core/domain"
)

// chunkIDPrefix namespaces chunk identifiers in the index.
const chunkIDPrefix = "chunk-"

// ChunkTagger attaches deterministic identifiers and source metadata
// to derived chunks. Pure: no I/O, no side effects.
type ChunkTagger struct{}

// NewChunkTagger creates a new chunk tagger.
func NewChunkTagger() *ChunkTagger {
	return &ChunkTagger{}
}

// Tag builds the indexed chunks for one file. Every chunk carries the
// file-level fingerprint fields and the owning source's category,
// priority and name. Identical chunk content at the same path yields
// the same ID, so duplicates within a file collapse to one chunk.
func (t *ChunkTagger) Tag(src domain.DataSource, fp domain.FileFingerprint, pieces []string) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(pieces))
	seen := make(map[string]struct{}, len(pieces))

	for i, content := range pieces {
		id := ChunkID(fp.Path, content)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		chunks = append(chunks, domain.Chunk{
			Meta: domain.ChunkMeta{
				ChunkID:        id,
				SourcePath:     fp.Path,
				ContentHash:    fp.ContentHash,
				MTime:          fp.MTime,
				ByteSize:       fp.ByteSize,
				Category:       src.Category,
				DataSourceName: src.Name,
				Priority:       src.Priority,
			},
			Content:  content,
			Position: i,
		})
	}
	return chunks
}

// ChunkID derives the deterministic identifier for a chunk from its
// source path and content. Re-deriving the same chunk from the same
// file content always yields the same ID, which makes re-indexing
// idempotent.
func ChunkID(sourcePath, content string) string {
	h := sha256.New()
	h.Write([]byte(sourcePath))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return chunkIDPrefix + hex.EncodeToString(h.Sum(nil))
}
