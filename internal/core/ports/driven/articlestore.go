package driven

import (
	"context"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
)

// ArticleStore persists articles and their chunks, and answers
// vector similarity queries over stored chunk embeddings.
// Backed by SQLite for local storage.
type ArticleStore interface {
	// SaveArticle stores an article and returns nothing; the caller
	// assigns the ID.
	SaveArticle(ctx context.Context, article *domain.Article) error

	// SaveChunks stores chunks with embeddings for an article.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetArticle retrieves an article by ID.
	GetArticle(ctx context.Context, id string) (*domain.Article, error)

	// ListArticles returns all articles, newest first.
	ListArticles(ctx context.Context) ([]domain.Article, error)

	// DeleteArticle removes an article and its chunks.
	DeleteArticle(ctx context.Context, id string) error

	// ListAllChunks returns every stored chunk in a stable order,
	// hydrated with article metadata. Used to build the lexical index.
	ListAllChunks(ctx context.Context) ([]domain.Chunk, error)

	// VectorSearch returns the k chunks whose embeddings are most
	// similar to the query embedding, best first.
	VectorSearch(ctx context.Context, embedding []float32, k int) ([]VectorHit, error)

	// Stats reports article and chunk counts.
	Stats(ctx context.Context) (domain.LibraryStats, error)

	// Close releases resources.
	Close() error
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// Chunk is the matched chunk, hydrated with article metadata.
	Chunk domain.Chunk

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
