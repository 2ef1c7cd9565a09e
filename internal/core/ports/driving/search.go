package driving

import (
	"context"

	"github.com/archon-search/archon/internal/core/domain"
)

// SearchService retrieves chunks relevant to a query.
type SearchService interface {
	// Search performs hybrid retrieval across all indexed chunks.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}

// AskService answers questions grounded on retrieved chunks.
type AskService interface {
	// Ask retrieves relevant chunks and generates an answer.
	Ask(ctx context.Context, question string, opts domain.SearchOptions) (*domain.Answer, error)
}
