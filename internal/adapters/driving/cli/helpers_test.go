package cli

import (
	"context"
	"errors"
	"time"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
	"github.com/aletheia-labs/medsearch-cli/internal/core/ports/driving"
)

// mockRetrieval returns canned search results.
type mockRetrieval struct {
	results []domain.FusedResult
	err     error
	ready   bool
}

func (m *mockRetrieval) Initialize(_ context.Context) error { return m.err }
func (m *mockRetrieval) Ready() bool                        { return m.ready }

func (m *mockRetrieval) Search(_ context.Context, _ string, _ int) ([]domain.FusedResult, time.Duration, error) {
	return m.results, 3 * time.Millisecond, m.err
}

// mockLibrary returns canned library data.
type mockLibrary struct {
	articles []domain.Article
	stats    domain.LibraryStats
	err      error
}

func (m *mockLibrary) IngestFile(_ context.Context, path string) (*domain.Article, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Article{ID: "article-1", Title: "Ingested Article", SourcePath: path}, nil
}

func (m *mockLibrary) IngestDirectory(_ context.Context, _ string) (driving.IngestReport, error) {
	if m.err != nil {
		return driving.IngestReport{}, m.err
	}
	return driving.IngestReport{Ingested: 2, Skipped: 1}, nil
}

func (m *mockLibrary) List(_ context.Context) ([]domain.Article, error) {
	return m.articles, m.err
}

func (m *mockLibrary) Delete(_ context.Context, _ string) error { return m.err }

func (m *mockLibrary) Stats(_ context.Context) (domain.LibraryStats, error) {
	return m.stats, m.err
}

// mockAnswer returns a canned answer.
type mockAnswer struct {
	answer *domain.Answer
	err    error
}

func (m *mockAnswer) Ask(_ context.Context, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

var errMock = errors.New("mock failure")

// setupTestServices installs mock services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	oldLibrary := libraryService
	oldRetrieval := retrievalService
	oldAnswer := answerService

	libraryService = &mockLibrary{
		articles: []domain.Article{
			{ID: "a1", Title: "Hypertension Outcomes", Authors: "Smith J", Year: 2021},
		},
		stats: domain.LibraryStats{Articles: 1, Chunks: 4},
	}
	retrievalService = &mockRetrieval{
		ready: true,
		results: []domain.FusedResult{
			{
				Chunk: domain.Chunk{
					ID:      "c1",
					Title:   "Hypertension Outcomes",
					Year:    2021,
					Content: "Blood pressure control reduces cardiovascular events.",
				},
				FusedScore:  0.91,
				VectorScore: 1.0,
			},
		},
	}
	answerService = &mockAnswer{
		answer: &domain.Answer{
			Text: "Control reduces events [Hypertension Outcomes, 2021].",
			Citations: []domain.Citation{
				{Title: "Hypertension Outcomes", Authors: "Smith J", Year: 2021},
			},
			RetrievalTime:  3 * time.Millisecond,
			GenerationTime: 40 * time.Millisecond,
		},
	}

	return func() {
		libraryService = oldLibrary
		retrievalService = oldRetrieval
		answerService = oldAnswer
	}
}
