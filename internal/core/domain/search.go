package domain

// SearchOptions configures a retrieval request.
type SearchOptions struct {
	// Limit is the maximum number of results to return.
	Limit int

	// Category restricts results to chunks from sources with a
	// matching category label. Empty means no filter.
	Category string
}

// SearchResult is one retrieved chunk with its relevance score.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the combined relevance score. Higher is better.
	Score float64
}

// Answer is the output of a retrieval-augmented question.
type Answer struct {
	// Text is the generated answer, empty when no LLM is configured.
	Text string

	// Sources are the chunks the answer was grounded on.
	Sources []SearchResult

	// Model is the LLM model that produced the answer, if any.
	Model string
}
