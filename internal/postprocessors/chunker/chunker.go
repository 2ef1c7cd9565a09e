// Package chunker provides a fixed-size text chunker with overlap.
package chunker

import (
	"github.com/archon-search/archon/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// DefaultChunkSize is the default number of bytes per chunk.
const DefaultChunkSize = 500

// DefaultOverlap is the default number of overlapping bytes between
// adjacent chunks, preserving continuity across boundaries.
const DefaultOverlap = 150

// Chunker splits text into fixed-size pieces with overlap.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room for the window to advance
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}
	return c
}

// Split returns the chunk texts for the given content, in order.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}

	total := len(text)
	step := c.chunkSize - c.overlap
	pieces := make([]string, 0, total/step+1)

	for start := 0; start < total; start += step {
		end := start + c.chunkSize
		if end >= total {
			pieces = append(pieces, text[start:])
			break
		}
		pieces = append(pieces, text[start:end])
	}
	return pieces
}
