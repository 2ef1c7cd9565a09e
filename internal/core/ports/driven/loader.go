package driven

import "context"

// ContentLoader reads a source file's text content.
// Content is expected to be valid UTF-8; a load failure surfaces as a
// per-file error and never aborts the run.
type ContentLoader interface {
	// Load returns the file's text content.
	Load(ctx context.Context, path string) (string, error)
}
