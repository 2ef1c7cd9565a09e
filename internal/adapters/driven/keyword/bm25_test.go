package keyword

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archon-search/archon/internal/core/domain"
)

func chunk(id, content string) domain.Chunk {
	return domain.Chunk{
		Meta:    domain.ChunkMeta{ChunkID: id},
		Content: content,
	}
}

func TestBM25Index_Search(t *testing.T) {
	x := New()
	ctx := context.Background()

	require.NoError(t, x.Rebuild(ctx, []domain.Chunk{
		chunk("chunk-1", "the quick brown fox jumps over the lazy dog"),
		chunk("chunk-2", "a fast brown fox outpaces a slow hound"),
		chunk("chunk-3", "completely unrelated text about databases"),
	}))

	hits, err := x.Search(ctx, "brown fox", 10)
	require.NoError(t, err)

	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.Positive(t, h.Score)
		assert.NotEqual(t, "chunk-3", h.ChunkID)
	}
}

func TestBM25Index_Search_RareTermScoresHigher(t *testing.T) {
	x := New()
	ctx := context.Background()

	require.NoError(t, x.Rebuild(ctx, []domain.Chunk{
		chunk("chunk-common", "apple apple apple"),
		chunk("chunk-rare", "apple zeppelin"),
		chunk("chunk-other", "apple banana"),
	}))

	hits, err := x.Search(ctx, "zeppelin", 10)
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, "chunk-rare", hits[0].ChunkID)
}

func TestBM25Index_Search_Limit(t *testing.T) {
	x := New()
	ctx := context.Background()

	require.NoError(t, x.Rebuild(ctx, []domain.Chunk{
		chunk("chunk-1", "term"),
		chunk("chunk-2", "term"),
		chunk("chunk-3", "term"),
	}))

	hits, err := x.Search(ctx, "term", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestBM25Index_Search_EmptyIndex(t *testing.T) {
	hits, err := New().Search(context.Background(), "anything", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestBM25Index_Search_EmptyQuery(t *testing.T) {
	x := New()
	require.NoError(t, x.Rebuild(context.Background(), []domain.Chunk{chunk("chunk-1", "text")}))

	hits, err := x.Search(context.Background(), "  ... ", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestBM25Index_Rebuild_Replaces(t *testing.T) {
	x := New()
	ctx := context.Background()

	require.NoError(t, x.Rebuild(ctx, []domain.Chunk{chunk("chunk-old", "legacy term")}))
	require.NoError(t, x.Rebuild(ctx, []domain.Chunk{chunk("chunk-new", "fresh term")}))

	hits, err := x.Search(ctx, "legacy", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = x.Search(ctx, "fresh", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "chunk-new", hits[0].ChunkID)
}

func TestBM25Index_Search_CaseInsensitive(t *testing.T) {
	x := New()
	ctx := context.Background()
	require.NoError(t, x.Rebuild(ctx, []domain.Chunk{chunk("chunk-1", "Mixed CASE Content")}))

	hits, err := x.Search(ctx, "mixed case", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"hello", "world", "42"},
		tokenize("Hello, World! 42"))
	assert.Empty(t, tokenize("!!! ..."))
}
