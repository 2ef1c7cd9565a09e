package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/archon-search/archon/internal/core/domain"
	"github.com/archon-search/archon/internal/core/ports/driven"
	"github.com/archon-search/archon/internal/core/ports/driving"
	"github.com/archon-search/archon/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.SearchService = (*RetrievalService)(nil)

// Relative weights when merging keyword and vector scores.
const (
	keywordWeight = 0.5
	vectorWeight  = 0.5
)

// RetrievalService provides hybrid retrieval over the indexed chunks:
// BM25 keyword scores merged with cosine similarity over stored
// embeddings. Either side degrades gracefully when unavailable.
type RetrievalService struct {
	index    driven.DocumentIndex
	keyword  driven.KeywordIndex     // optional
	embedder driven.EmbeddingService // optional
}

// NewRetrievalService creates a retrieval service. The keyword index
// and embedder are optional; at least one should be present for
// useful results.
func NewRetrievalService(
	index driven.DocumentIndex,
	keyword driven.KeywordIndex,
	embedder driven.EmbeddingService,
) *RetrievalService {
	return &RetrievalService{
		index:    index,
		keyword:  keyword,
		embedder: embedder,
	}
}

// Search performs hybrid retrieval with an optional category filter.
func (s *RetrievalService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	chunks, err := s.index.AllChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	byID := make(map[string]domain.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.Meta.ChunkID] = c
	}
	logger.Debug("Query %q over %d chunks (category=%q)", query, len(chunks), opts.Category)

	scores := make(map[string]float64)

	if s.keyword != nil {
		// Over-fetch so category filtering still fills the limit.
		hits, err := s.keyword.Search(ctx, query, limit*3)
		if err != nil {
			return nil, fmt.Errorf("keyword search: %w", err)
		}
		normalizeKeyword(hits)
		for _, h := range hits {
			scores[h.ChunkID] += keywordWeight * h.Score
		}
		logger.Debug("Keyword search: %d hits", len(hits))
	}

	if s.embedder != nil {
		qvec, err := s.embedder.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		matched := 0
		for _, c := range chunks {
			if len(c.Embedding) == 0 {
				continue
			}
			if sim := cosine(qvec, c.Embedding); sim > 0 {
				scores[c.Meta.ChunkID] += vectorWeight * sim
				matched++
			}
		}
		logger.Debug("Vector search: %d scored chunks", matched)
	}

	results := make([]domain.SearchResult, 0, len(scores))
	for id, score := range scores {
		chunk, ok := byID[id]
		if !ok {
			continue
		}
		if opts.Category != "" && chunk.Meta.Category != opts.Category {
			continue
		}
		results = append(results, domain.SearchResult{Chunk: chunk, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Meta.ChunkID < results[j].Chunk.Meta.ChunkID
	})
	if len(results) > limit {
		results = results[:limit]
	}

	logger.Info("Search returned %d results", len(results))
	return results, nil
}

// normalizeKeyword scales BM25 scores into [0, 1] so they can be
// merged with cosine similarities.
func normalizeKeyword(hits []driven.KeywordHit) {
	var max float64
	for _, h := range hits {
		if h.Score > max {
			max = h.Score
		}
	}
	if max <= 0 {
		return
	}
	for i := range hits {
		hits[i].Score /= max
	}
}

// cosine returns the cosine similarity of two vectors, 0 when the
// dimensions differ or either vector is zero.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
