package domain

import "time"

// ChunkMeta is the metadata record attached to every indexed chunk.
// It is the wire contract with the document index: the change detector
// depends on these fields being persisted verbatim across runs.
//
// ContentHash, MTime and ByteSize describe the source file, not the
// chunk; every chunk derived from the same file carries identical
// values for them, while ChunkID is unique per chunk.
type ChunkMeta struct {
	// ChunkID is a deterministic function of (SourcePath, chunk
	// content), so re-deriving the same chunk from the same file
	// content always yields the same ID.
	ChunkID string

	// SourcePath is the normalised absolute path of the originating file.
	SourcePath string

	// ContentHash is the SHA-256 of the originating file's bytes.
	ContentHash string

	// MTime is the originating file's modification time.
	MTime time.Time

	// ByteSize is the originating file's size in bytes.
	ByteSize int64

	// Category is the owning data source's category label.
	Category string

	// DataSourceName is the owning data source's name.
	DataSourceName string

	// Priority is the owning data source's priority. Inert metadata.
	Priority int
}

// Chunk is a bounded-size slice of a source file's text, the unit
// stored and retrieved by the document index.
type Chunk struct {
	// Meta carries the indexed metadata for this chunk.
	Meta ChunkMeta

	// Content is the chunk text.
	Content string

	// Position is the ordinal position within the source file.
	Position int

	// Embedding is the optional vector representation for semantic
	// retrieval. Nil when no embedding service is configured.
	Embedding []float32
}
