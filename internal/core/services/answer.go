package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
	"github.com/aletheia-labs/medsearch-cli/internal/core/ports/driven"
	"github.com/aletheia-labs/medsearch-cli/internal/core/ports/driving"
	"github.com/aletheia-labs/medsearch-cli/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// Context formatting limits keep generation latency reasonable on
// small local models.
const (
	maxContextChunks = 3
	maxChunkChars    = 600
	maxContextChars  = 2000
	maxTitleChars    = 50
)

// answerPromptTemplate grounds the model in retrieved passages and
// asks for inline citations.
const answerPromptTemplate = `Answer based on the context. Cite sources as [Title, Year].

Context:
%s

Question: %s

Answer:`

// AnswerService produces grounded, cited answers on top of hybrid
// retrieval. Retrieval itself never depends on this service.
type AnswerService struct {
	retriever driving.RetrievalService
	llm       driven.LLMService
	topK      int
}

// NewAnswerService creates an answer service. topK bounds the number
// of chunks retrieved as context.
func NewAnswerService(retriever driving.RetrievalService, llm driven.LLMService, topK int) *AnswerService {
	if topK <= 0 {
		topK = 5
	}
	return &AnswerService{retriever: retriever, llm: llm, topK: topK}
}

// Ask retrieves context for the question and generates an answer.
func (s *AnswerService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrInvalidInput
	}

	results, retrievalTime, err := s.retriever.Search(ctx, question, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	if len(results) == 0 {
		return nil, domain.ErrEmptyLibrary
	}

	prompt := fmt.Sprintf(answerPromptTemplate, formatContext(results), question)

	genStart := time.Now()
	text, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	generationTime := time.Since(genStart)

	logger.Info("Answer generated in %s (retrieval %s)", generationTime, retrievalTime)

	return &domain.Answer{
		Text:           strings.TrimSpace(text),
		Citations:      extractCitations(results),
		RetrievalTime:  retrievalTime,
		GenerationTime: generationTime,
	}, nil
}

// formatContext renders up to maxContextChunks passages with their
// citation labels, respecting the overall context budget.
func formatContext(results []domain.FusedResult) string {
	var parts []string
	total := 0

	for i, r := range results {
		if i == maxContextChunks {
			break
		}

		title := r.Chunk.Title
		if title == "" {
			title = "Unknown"
		}
		title = truncateRunes(title, maxTitleChars)
		year := "N/A"
		if r.Chunk.Year > 0 {
			year = fmt.Sprintf("%d", r.Chunk.Year)
		}
		text := truncateRunes(r.Chunk.Content, maxChunkChars)

		part := fmt.Sprintf("[%d] %s (%s): %s", i+1, title, year, text)
		if total+len(part) > maxContextChars {
			break
		}
		parts = append(parts, part)
		total += len(part)
	}

	return strings.Join(parts, "\n\n")
}

// truncateRunes cuts s to at most max bytes, backing off so the cut
// never splits a multi-byte rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// extractCitations deduplicates the cited articles by title and year.
func extractCitations(results []domain.FusedResult) []domain.Citation {
	seen := make(map[string]struct{})
	var citations []domain.Citation

	for i, r := range results {
		if i == maxContextChunks {
			break
		}
		key := fmt.Sprintf("%s|%d", r.Chunk.Title, r.Chunk.Year)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		citations = append(citations, domain.Citation{
			Title:   r.Chunk.Title,
			Authors: r.Chunk.Authors,
			Year:    r.Chunk.Year,
		})
	}

	return citations
}
