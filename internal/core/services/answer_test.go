package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
)

// mockRetriever returns canned retrieval results.
type mockRetriever struct {
	results []domain.FusedResult
	err     error
}

func (m *mockRetriever) Initialize(_ context.Context) error { return nil }
func (m *mockRetriever) Ready() bool                        { return true }

func (m *mockRetriever) Search(_ context.Context, _ string, _ int) ([]domain.FusedResult, time.Duration, error) {
	return m.results, 5 * time.Millisecond, m.err
}

// mockLLM captures the prompt it received.
type mockLLM struct {
	response string
	err      error
	prompt   string
}

func (m *mockLLM) Generate(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string              { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error   { return nil }
func (m *mockLLM) Close() error                   { return nil }

func fusedResult(id, title string, year int, content string) domain.FusedResult {
	return domain.FusedResult{
		Chunk: domain.Chunk{
			ID:      id,
			Title:   title,
			Year:    year,
			Content: content,
		},
		FusedScore: 0.8,
	}
}

func TestAsk(t *testing.T) {
	retriever := &mockRetriever{results: []domain.FusedResult{
		fusedResult("c1", "Hypertension Guidelines", 2021, "Target blood pressure below 130/80 for most adults."),
		fusedResult("c2", "Hypertension Guidelines", 2021, "Thiazides are first line in uncomplicated cases."),
		fusedResult("c3", "Diabetes and BP", 2019, "Comorbid diabetes lowers the treatment threshold."),
	}}
	llm := &mockLLM{response: "  Aim below 130/80 [Hypertension Guidelines, 2021].  "}
	svc := NewAnswerService(retriever, llm, 5)

	answer, err := svc.Ask(context.Background(), "What is the blood pressure target?")
	require.NoError(t, err)

	assert.Equal(t, "Aim below 130/80 [Hypertension Guidelines, 2021].", answer.Text)
	assert.Equal(t, 5*time.Millisecond, answer.RetrievalTime)

	// Same article cited once, distinct article cited separately.
	require.Len(t, answer.Citations, 2)
	assert.Equal(t, "Hypertension Guidelines", answer.Citations[0].Title)
	assert.Equal(t, 2021, answer.Citations[0].Year)
	assert.Equal(t, "Diabetes and BP", answer.Citations[1].Title)
}

func TestAskPromptContainsContext(t *testing.T) {
	retriever := &mockRetriever{results: []domain.FusedResult{
		fusedResult("c1", "Statin Safety Review", 2020, "Myopathy incidence is below one percent."),
	}}
	llm := &mockLLM{response: "Rare."}
	svc := NewAnswerService(retriever, llm, 5)

	_, err := svc.Ask(context.Background(), "How common is statin myopathy?")
	require.NoError(t, err)

	assert.Contains(t, llm.prompt, "Statin Safety Review (2020)")
	assert.Contains(t, llm.prompt, "Myopathy incidence is below one percent.")
	assert.Contains(t, llm.prompt, "Question: How common is statin myopathy?")
	assert.Contains(t, llm.prompt, "Cite sources as [Title, Year].")
}

func TestAskValidation(t *testing.T) {
	svc := NewAnswerService(&mockRetriever{}, &mockLLM{response: "x"}, 5)

	_, err := svc.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAskNoLLMConfigured(t *testing.T) {
	svc := NewAnswerService(&mockRetriever{}, nil, 5)

	_, err := svc.Ask(context.Background(), "anything")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAskEmptyLibrary(t *testing.T) {
	svc := NewAnswerService(&mockRetriever{}, &mockLLM{response: "x"}, 5)

	_, err := svc.Ask(context.Background(), "anything")
	assert.ErrorIs(t, err, domain.ErrEmptyLibrary)
}

func TestAskRetrievalFailure(t *testing.T) {
	retriever := &mockRetriever{err: domain.ErrEmbeddingUnavailable}
	svc := NewAnswerService(retriever, &mockLLM{response: "x"}, 5)

	_, err := svc.Ask(context.Background(), "anything")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestAskGenerationFailure(t *testing.T) {
	retriever := &mockRetriever{results: []domain.FusedResult{
		fusedResult("c1", "T", 2020, "content"),
	}}
	svc := NewAnswerService(retriever, &mockLLM{err: errors.New("model crashed")}, 5)

	_, err := svc.Ask(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate answer")
}

func TestFormatContextLimits(t *testing.T) {
	long := strings.Repeat("x", 900)
	results := []domain.FusedResult{
		fusedResult("c1", "One", 2020, long),
		fusedResult("c2", "Two", 2020, long),
		fusedResult("c3", "Three", 2020, long),
		fusedResult("c4", "Four", 2020, long),
	}

	got := formatContext(results)

	assert.NotContains(t, got, "Four", "capped at three passages")
	assert.LessOrEqual(t, len(got), maxContextChars+maxChunkChars,
		"per-chunk truncation bounds the context")
	assert.Contains(t, got, "[1] One (2020)")
}

func TestFormatContextMissingMetadata(t *testing.T) {
	results := []domain.FusedResult{
		fusedResult("c1", "", 0, "Orphan passage."),
	}

	got := formatContext(results)
	assert.Contains(t, got, "Unknown (N/A)")
}

func TestFormatContextPreservesUTF8(t *testing.T) {
	// Multi-byte content offset so the byte caps land mid-rune.
	title := "x" + strings.Repeat("é", maxTitleChars)
	content := "x" + strings.Repeat("µ", maxChunkChars)
	results := []domain.FusedResult{
		fusedResult("c1", title, 2020, content),
	}

	got := formatContext(results)
	assert.True(t, utf8.ValidString(got))
}
