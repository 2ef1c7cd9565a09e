package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidSource indicates a malformed data source descriptor.
	// Fatal: a run aborts before any scanning begins.
	ErrInvalidSource = errors.New("invalid data source")

	// ErrSourceUnavailable indicates a configured source root does not
	// exist. Recoverable: the source is treated as empty and the run
	// continues with the remaining sources.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrFileUnreadable indicates a file's content could not be loaded
	// or hashed. Recoverable per file: the file is skipped and recorded
	// as a failure without affecting other files.
	ErrFileUnreadable = errors.New("file unreadable")

	// ErrIndexOp marks a failed add/delete call against the document
	// index. Recoverable per file, but a streak of consecutive index
	// failures escalates to ErrIndexUnavailable.
	ErrIndexOp = errors.New("index operation failed")

	// ErrIndexUnavailable indicates the document index itself appears
	// unreachable. Fatal: the run aborts rather than silently failing
	// every subsequent file.
	ErrIndexUnavailable = errors.New("document index unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Vector/semantic retrieval is disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answer generation degrades to plain retrieval.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
