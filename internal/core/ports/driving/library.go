package driving

import (
	"context"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
)

// LibraryService manages the article library: ingestion, listing,
// and deletion.
type LibraryService interface {
	// IngestFile extracts text and metadata from a file, chunks it,
	// embeds the chunks, and persists the article.
	IngestFile(ctx context.Context, path string) (*domain.Article, error)

	// IngestDirectory ingests every supported file in a directory.
	// Files that fail are skipped and reported; the rest proceed.
	IngestDirectory(ctx context.Context, dir string) (IngestReport, error)

	// List returns all ingested articles, newest first.
	List(ctx context.Context) ([]domain.Article, error)

	// Delete removes an article and its chunks.
	Delete(ctx context.Context, id string) error

	// Stats reports article and chunk counts.
	Stats(ctx context.Context) (domain.LibraryStats, error)
}

// IngestReport summarises a directory ingestion run.
type IngestReport struct {
	// Ingested is the number of files successfully ingested.
	Ingested int

	// Skipped is the number of files skipped (unsupported or empty).
	Skipped int

	// Failed maps file paths to the error that stopped them.
	Failed map[string]error
}
