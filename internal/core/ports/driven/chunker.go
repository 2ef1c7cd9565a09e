package driven

// Chunker splits raw text into bounded-size pieces.
// Chunk size and overlap are configuration of the implementation, not
// part of this contract.
type Chunker interface {
	// Split returns the chunk texts for the given content, in order.
	// Empty content yields no chunks.
	Split(text string) []string
}
