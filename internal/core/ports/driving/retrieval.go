package driving

import (
	"context"
	"time"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
)

// RetrievalService provides hybrid retrieval over the article library.
type RetrievalService interface {
	// Initialize loads the current corpus from the store and builds
	// the lexical index. Idempotent; re-invoking rebuilds the index
	// against the store's current state.
	Initialize(ctx context.Context) error

	// Ready reports whether Initialize has succeeded. An empty
	// library is ready-but-empty, not an error.
	Ready() bool

	// Search returns the topK most relevant chunks for the query,
	// fusing keyword (BM25) and semantic (vector) signals, along
	// with the total retrieval time.
	Search(ctx context.Context, query string, topK int) ([]domain.FusedResult, time.Duration, error)
}
