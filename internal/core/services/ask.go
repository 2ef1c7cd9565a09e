package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/archon-search/archon/internal/core/domain"
	"github.com/archon-search/archon/internal/core/ports/driven"
	"github.com/archon-search/archon/internal/core/ports/driving"
	"github.com/archon-search/archon/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AskService = (*AnswerService)(nil)

// DefaultContextChunks is how many retrieved chunks are handed to the
// LLM as grounding context.
const DefaultContextChunks = 3

const answerPrompt = `You are a helpful assistant. Answer the question using only the
provided context. If the context does not contain the answer, say so.

Context:
%s

Question: %s

Answer:`

// AnswerService answers questions grounded on retrieved chunks.
// Without an LLM it still returns the retrieved sources.
type AnswerService struct {
	search driving.SearchService
	llm    driven.LLMService // optional
	topN   int
}

// NewAnswerService creates an answer service. The llm is optional.
func NewAnswerService(search driving.SearchService, llm driven.LLMService, topN int) *AnswerService {
	if topN <= 0 {
		topN = DefaultContextChunks
	}
	return &AnswerService{
		search: search,
		llm:    llm,
		topN:   topN,
	}
}

// Ask retrieves relevant chunks and generates an answer from them.
func (s *AnswerService) Ask(
	ctx context.Context, question string, opts domain.SearchOptions,
) (*domain.Answer, error) {
	if opts.Limit <= 0 {
		opts.Limit = s.topN
	}

	results, err := s.search.Search(ctx, question, opts)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	answer := &domain.Answer{Sources: results}
	if s.llm == nil {
		logger.Debug("No LLM configured, returning sources only")
		return answer, nil
	}
	if len(results) == 0 {
		return answer, nil
	}

	var sb strings.Builder
	for i, res := range results {
		fmt.Fprintf(&sb, "[%d] (%s) %s\n", i+1, res.Chunk.Meta.Category, res.Chunk.Content)
	}

	prompt := fmt.Sprintf(answerPrompt, sb.String(), question)
	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   1024,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	answer.Text = strings.TrimSpace(text)
	answer.Model = s.llm.ModelName()
	return answer, nil
}
