package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archon-search/archon/internal/adapters/driven/storage/memory"
	"github.com/archon-search/archon/internal/core/domain"
	"github.com/archon-search/archon/internal/core/ports/driven"
)

// --- Mock implementations for search testing ---

// searchMockKeyword returns canned hits.
type searchMockKeyword struct {
	hits []driven.KeywordHit
	err  error
}

func (k *searchMockKeyword) Rebuild(_ context.Context, _ []domain.Chunk) error { return nil }

func (k *searchMockKeyword) Search(_ context.Context, _ string, _ int) ([]driven.KeywordHit, error) {
	if k.err != nil {
		return nil, k.err
	}
	// Copy so normalisation does not mutate the fixture.
	out := make([]driven.KeywordHit, len(k.hits))
	copy(out, k.hits)
	return out, nil
}

// searchMockEmbedder returns a fixed query vector.
type searchMockEmbedder struct {
	vector []float32
	err    error
}

func (e *searchMockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vector, nil
}

func (e *searchMockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		vec, err := e.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *searchMockEmbedder) Dimensions() int              { return len(e.vector) }
func (e *searchMockEmbedder) ModelName() string            { return "mock" }
func (e *searchMockEmbedder) Ping(_ context.Context) error { return nil }
func (e *searchMockEmbedder) Close() error                 { return nil }

func seedIndex(t *testing.T, chunks ...domain.Chunk) *memory.DocumentIndex {
	t.Helper()
	index := memory.NewDocumentIndex()
	require.NoError(t, index.Add(context.Background(), chunks))
	return index
}

func chunkFixture(id, content, category string, embedding []float32) domain.Chunk {
	return domain.Chunk{
		Meta: domain.ChunkMeta{
			ChunkID:    id,
			SourcePath: "/data/" + id + ".txt",
			Category:   category,
		},
		Content:   content,
		Embedding: embedding,
	}
}

// --- Tests ---

func TestRetrievalService_Search_KeywordOnly(t *testing.T) {
	index := seedIndex(t,
		chunkFixture("chunk-1", "alpha text", "general", nil),
		chunkFixture("chunk-2", "beta text", "general", nil),
	)
	keyword := &searchMockKeyword{hits: []driven.KeywordHit{
		{ChunkID: "chunk-2", Score: 4.0},
		{ChunkID: "chunk-1", Score: 2.0},
	}}

	svc := NewRetrievalService(index, keyword, nil)
	results, err := svc.Search(context.Background(), "text", domain.SearchOptions{})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "chunk-2", results[0].Chunk.Meta.ChunkID)
	assert.Equal(t, "chunk-1", results[1].Chunk.Meta.ChunkID)

	// BM25 scores normalise to [0,1] before weighting.
	assert.InDelta(t, 0.5, results[0].Score, 1e-9)
	assert.InDelta(t, 0.25, results[1].Score, 1e-9)
}

func TestRetrievalService_Search_VectorOnly(t *testing.T) {
	index := seedIndex(t,
		chunkFixture("chunk-1", "near", "general", []float32{1, 0}),
		chunkFixture("chunk-2", "far", "general", []float32{0, 1}),
		chunkFixture("chunk-3", "no vector", "general", nil),
	)
	embedder := &searchMockEmbedder{vector: []float32{1, 0}}

	svc := NewRetrievalService(index, nil, embedder)
	results, err := svc.Search(context.Background(), "near", domain.SearchOptions{})
	require.NoError(t, err)

	// Orthogonal and unembedded chunks score zero and drop out.
	require.Len(t, results, 1)
	assert.Equal(t, "chunk-1", results[0].Chunk.Meta.ChunkID)
	assert.InDelta(t, 0.5, results[0].Score, 1e-9)
}

func TestRetrievalService_Search_Hybrid(t *testing.T) {
	index := seedIndex(t,
		chunkFixture("chunk-1", "both signals", "general", []float32{1, 0}),
		chunkFixture("chunk-2", "keyword only", "general", nil),
	)
	keyword := &searchMockKeyword{hits: []driven.KeywordHit{
		{ChunkID: "chunk-1", Score: 3.0},
		{ChunkID: "chunk-2", Score: 3.0},
	}}
	embedder := &searchMockEmbedder{vector: []float32{1, 0}}

	svc := NewRetrievalService(index, keyword, embedder)
	results, err := svc.Search(context.Background(), "signals", domain.SearchOptions{})
	require.NoError(t, err)

	require.Len(t, results, 2)
	// Equal keyword scores; the vector match breaks the tie.
	assert.Equal(t, "chunk-1", results[0].Chunk.Meta.ChunkID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.InDelta(t, 0.5, results[1].Score, 1e-9)
}

func TestRetrievalService_Search_CategoryFilter(t *testing.T) {
	index := seedIndex(t,
		chunkFixture("chunk-1", "notes text", "notes", nil),
		chunkFixture("chunk-2", "general text", "general", nil),
	)
	keyword := &searchMockKeyword{hits: []driven.KeywordHit{
		{ChunkID: "chunk-1", Score: 1.0},
		{ChunkID: "chunk-2", Score: 2.0},
	}}

	svc := NewRetrievalService(index, keyword, nil)
	results, err := svc.Search(context.Background(), "text", domain.SearchOptions{Category: "notes"})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "notes", results[0].Chunk.Meta.Category)
}

func TestRetrievalService_Search_Limit(t *testing.T) {
	chunks := make([]domain.Chunk, 5)
	hits := make([]driven.KeywordHit, 5)
	for i := range chunks {
		id := string(rune('a' + i))
		chunks[i] = chunkFixture("chunk-"+id, "content "+id, "general", nil)
		hits[i] = driven.KeywordHit{ChunkID: "chunk-" + id, Score: float64(i + 1)}
	}
	index := seedIndex(t, chunks...)
	keyword := &searchMockKeyword{hits: hits}

	svc := NewRetrievalService(index, keyword, nil)
	results, err := svc.Search(context.Background(), "content", domain.SearchOptions{Limit: 2})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "chunk-e", results[0].Chunk.Meta.ChunkID)
	assert.Equal(t, "chunk-d", results[1].Chunk.Meta.ChunkID)
}

func TestRetrievalService_Search_EmptyQuery(t *testing.T) {
	svc := NewRetrievalService(memory.NewDocumentIndex(), nil, nil)
	results, err := svc.Search(context.Background(), "   ", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrievalService_Search_KeywordError(t *testing.T) {
	index := seedIndex(t, chunkFixture("chunk-1", "text", "general", nil))
	keyword := &searchMockKeyword{err: errors.New("index gone")}

	svc := NewRetrievalService(index, keyword, nil)
	_, err := svc.Search(context.Background(), "text", domain.SearchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyword search")
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Mismatched or degenerate inputs score zero.
	assert.Zero(t, cosine([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Zero(t, cosine(nil, nil))
	assert.Zero(t, cosine([]float32{0, 0}, []float32{1, 1}))
}

func TestNormalizeKeyword(t *testing.T) {
	hits := []driven.KeywordHit{
		{ChunkID: "a", Score: 10},
		{ChunkID: "b", Score: 5},
		{ChunkID: "c", Score: 0},
	}
	normalizeKeyword(hits)

	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.InDelta(t, 0.5, hits[1].Score, 1e-9)
	assert.Zero(t, hits[2].Score)

	// All-zero scores stay untouched instead of dividing by zero.
	zeros := []driven.KeywordHit{{ChunkID: "a", Score: 0}}
	normalizeKeyword(zeros)
	assert.True(t, !math.IsNaN(zeros[0].Score))
	assert.Zero(t, zeros[0].Score)
}
