// Package keyword provides an in-memory BM25 index over the current
// chunk set. It is derived state: rebuilt in full after every sync run
// that changed the document index.
package keyword

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/archon-search/archon/internal/core/domain"
	"github.com/archon-search/archon/internal/core/ports/driven"
)

// Ensure BM25Index implements the interface.
var _ driven.KeywordIndex = (*BM25Index)(nil)

// BM25 parameters, standard values.
const (
	k1 = 1.2
	b  = 0.75
)

type indexedDoc struct {
	chunkID string
	length  int
	terms   map[string]int
}

// BM25Index scores chunks against queries with Okapi BM25.
type BM25Index struct {
	mu        sync.RWMutex
	docs      []indexedDoc
	docFreq   map[string]int
	avgLength float64
}

// New creates an empty BM25 index.
func New() *BM25Index {
	return &BM25Index{
		docFreq: make(map[string]int),
	}
}

// Rebuild replaces the index content with the given chunks.
func (x *BM25Index) Rebuild(_ context.Context, chunks []domain.Chunk) error {
	docs := make([]indexedDoc, 0, len(chunks))
	docFreq := make(map[string]int)
	totalLength := 0

	for _, c := range chunks {
		tokens := tokenize(c.Content)
		terms := make(map[string]int, len(tokens))
		for _, t := range tokens {
			terms[t]++
		}
		for t := range terms {
			docFreq[t]++
		}
		totalLength += len(tokens)
		docs = append(docs, indexedDoc{
			chunkID: c.Meta.ChunkID,
			length:  len(tokens),
			terms:   terms,
		})
	}

	avg := 0.0
	if len(docs) > 0 {
		avg = float64(totalLength) / float64(len(docs))
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.docs = docs
	x.docFreq = docFreq
	x.avgLength = avg
	return nil
}

// Search returns the best-matching chunk IDs with BM25 scores.
func (x *BM25Index) Search(_ context.Context, query string, limit int) ([]driven.KeywordHit, error) {
	terms := tokenize(query)
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	n := float64(len(x.docs))
	if n == 0 {
		return nil, nil
	}

	var hits []driven.KeywordHit
	for _, doc := range x.docs {
		var score float64
		for _, term := range terms {
			tf := float64(doc.terms[term])
			if tf == 0 {
				continue
			}
			df := float64(x.docFreq[term])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			norm := 1 - b + b*float64(doc.length)/x.avgLength
			score += idf * tf * (k1 + 1) / (tf + k1*norm)
		}
		if score > 0 {
			hits = append(hits, driven.KeywordHit{ChunkID: doc.chunkID, Score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// tokenize lowercases and splits on non-letter, non-digit runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
