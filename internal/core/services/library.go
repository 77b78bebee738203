package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aletheia-labs/medsearch-cli/internal/chunker"
	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
	"github.com/aletheia-labs/medsearch-cli/internal/core/ports/driven"
	"github.com/aletheia-labs/medsearch-cli/internal/core/ports/driving"
	"github.com/aletheia-labs/medsearch-cli/internal/ingest"
	"github.com/aletheia-labs/medsearch-cli/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// embedBatchSize is the number of chunk texts embedded per batch call.
const embedBatchSize = 10

// Reindexer rebuilds a retrieval index after the library changes.
type Reindexer interface {
	Initialize(ctx context.Context) error
}

// LibraryService manages article ingestion and lifecycle.
type LibraryService struct {
	store     driven.ArticleStore
	embedding driven.EmbeddingService
	chunker   *chunker.Chunker
	reindexer Reindexer
}

// NewLibraryService creates a library service. The reindexer is
// optional; when set, successful ingestion and deletion trigger an
// index rebuild.
func NewLibraryService(
	store driven.ArticleStore,
	embedding driven.EmbeddingService,
	ch *chunker.Chunker,
	reindexer Reindexer,
) *LibraryService {
	if ch == nil {
		ch = chunker.New(chunker.DefaultConfig())
	}
	return &LibraryService{
		store:     store,
		embedding: embedding,
		chunker:   ch,
		reindexer: reindexer,
	}
}

// IngestFile extracts text and metadata from a file, chunks it,
// embeds the chunks in batches, and persists the article.
func (s *LibraryService) IngestFile(ctx context.Context, path string) (*domain.Article, error) {
	logger.Section("Ingestion")
	logger.Debug("File: %s", path)

	text, err := ingest.LoadText(path)
	if err != nil {
		return nil, err
	}

	meta := ingest.ExtractMetadata(filepath.Base(path), text)
	article := &domain.Article{
		ID:         uuid.New().String(),
		Title:      meta.Title,
		Authors:    meta.Authors,
		Journal:    meta.Journal,
		Year:       meta.Year,
		SourcePath: path,
		FullText:   text,
		CreatedAt:  time.Now().UTC(),
	}

	chunks := s.chunker.Split(text, article.ID)
	logger.Info("Article %q: %d chunks", article.Title, len(chunks))

	if len(chunks) > 0 {
		if s.embedding == nil {
			return nil, domain.ErrEmbeddingUnavailable
		}
		if err := s.embedChunks(ctx, chunks); err != nil {
			return nil, err
		}
	}

	// Denormalise article metadata onto chunks for display.
	for i := range chunks {
		chunks[i].ID = uuid.New().String()
		chunks[i].Title = article.Title
		chunks[i].Authors = article.Authors
		chunks[i].Year = article.Year
	}

	if err := s.store.SaveArticle(ctx, article); err != nil {
		return nil, fmt.Errorf("save article: %w", err)
	}
	if len(chunks) > 0 {
		if err := s.store.SaveChunks(ctx, chunks); err != nil {
			return nil, fmt.Errorf("save chunks: %w", err)
		}
	}

	s.reindex(ctx)
	return article, nil
}

// IngestDirectory ingests every supported file in a directory.
// Individual file failures are collected, not fatal.
func (s *LibraryService) IngestDirectory(ctx context.Context, dir string) (driving.IngestReport, error) {
	report := driving.IngestReport{Failed: make(map[string]error)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return report, fmt.Errorf("read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !ingest.Supported(path) {
			report.Skipped++
			continue
		}

		if _, err := s.IngestFile(ctx, path); err != nil {
			logger.Warn("Ingest %s failed: %v", path, err)
			report.Failed[path] = err
			continue
		}
		report.Ingested++
	}

	return report, nil
}

// List returns all ingested articles, newest first.
func (s *LibraryService) List(ctx context.Context) ([]domain.Article, error) {
	return s.store.ListArticles(ctx)
}

// Delete removes an article and its chunks, then reindexes.
func (s *LibraryService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrInvalidInput
	}
	if err := s.store.DeleteArticle(ctx, id); err != nil {
		return err
	}
	s.reindex(ctx)
	return nil
}

// Stats reports article and chunk counts.
func (s *LibraryService) Stats(ctx context.Context) (domain.LibraryStats, error) {
	return s.store.Stats(ctx)
}

// embedChunks fills in chunk embeddings batch by batch.
func (s *LibraryService) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, end-start)
		for i := start; i < end; i++ {
			texts[i-start] = chunks[i].Content
		}

		embeddings, err := s.embedding.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		for i := start; i < end; i++ {
			chunks[i].Embedding = embeddings[i-start]
		}

		logger.Debug("Embedded %d/%d chunks", end, len(chunks))
	}
	return nil
}

// reindex rebuilds the retrieval index if a reindexer is configured.
func (s *LibraryService) reindex(ctx context.Context) {
	if s.reindexer == nil {
		return
	}
	if err := s.reindexer.Initialize(ctx); err != nil {
		logger.Warn("Reindex failed: %v", err)
	}
}
