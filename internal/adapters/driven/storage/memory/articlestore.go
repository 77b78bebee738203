// Package memory provides in-memory store implementations used in
// tests and as lightweight fallbacks.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
	"github.com/aletheia-labs/medsearch-cli/internal/core/ports/driven"
)

// Ensure ArticleStore implements the interface.
var _ driven.ArticleStore = (*ArticleStore)(nil)

// ArticleStore is an in-memory implementation of driven.ArticleStore.
type ArticleStore struct {
	mu       sync.RWMutex
	articles map[string]domain.Article
	chunks   map[string][]domain.Chunk // keyed by article ID
	order    []string                  // article insertion order
}

// NewArticleStore creates a new in-memory article store.
func NewArticleStore() *ArticleStore {
	return &ArticleStore{
		articles: make(map[string]domain.Article),
		chunks:   make(map[string][]domain.Chunk),
	}
}

// SaveArticle stores or updates an article.
func (s *ArticleStore) SaveArticle(_ context.Context, article *domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[article.ID]; !ok {
		s.order = append(s.order, article.ID)
	}
	s.articles[article.ID] = *article
	return nil
}

// SaveChunks stores chunks for an article.
func (s *ArticleStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[chunks[0].ArticleID] = append([]domain.Chunk(nil), chunks...)
	return nil
}

// GetArticle retrieves an article by ID.
func (s *ArticleStore) GetArticle(_ context.Context, id string) (*domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	article, ok := s.articles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &article, nil
}

// ListArticles returns all articles in reverse insertion order.
func (s *ArticleStore) ListArticles(_ context.Context) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	articles := make([]domain.Article, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		articles = append(articles, s.articles[s.order[i]])
	}
	return articles, nil
}

// DeleteArticle removes an article and its chunks.
func (s *ArticleStore) DeleteArticle(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.articles, id)
	delete(s.chunks, id)
	for i, orderID := range s.order {
		if orderID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListAllChunks returns every chunk in article insertion order.
func (s *ArticleStore) ListAllChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []domain.Chunk
	for _, id := range s.order {
		all = append(all, s.chunks[id]...)
	}
	return all, nil
}

// VectorSearch returns the k most cosine-similar chunks.
func (s *ArticleStore) VectorSearch(_ context.Context, embedding []float32, k int) ([]driven.VectorHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []driven.VectorHit
	for _, id := range s.order {
		for _, chunk := range s.chunks[id] {
			if len(chunk.Embedding) != len(embedding) {
				continue
			}
			hits = append(hits, driven.VectorHit{
				Chunk:      chunk,
				Similarity: cosine(embedding, chunk.Embedding),
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Stats reports article and chunk counts.
func (s *ArticleStore) Stats(_ context.Context) (domain.LibraryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.LibraryStats{Articles: len(s.articles)}
	for _, chunks := range s.chunks {
		stats.Chunks += len(chunks)
	}
	return stats, nil
}

// Close is a no-op for the in-memory store.
func (s *ArticleStore) Close() error {
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
