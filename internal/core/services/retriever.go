package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aletheia-labs/medsearch-cli/internal/bm25"
	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
	"github.com/aletheia-labs/medsearch-cli/internal/core/ports/driven"
	"github.com/aletheia-labs/medsearch-cli/internal/core/ports/driving"
	"github.com/aletheia-labs/medsearch-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalConfig holds the fusion parameters.
type RetrievalConfig struct {
	// VectorWeight is the fused-score weight of the semantic signal.
	VectorWeight float64

	// LexicalWeight is the fused-score weight of the BM25 signal.
	LexicalWeight float64

	// CandidateMultiplier scales topK when fetching candidates from
	// each signal before fusion.
	CandidateMultiplier int

	// DefaultTopK is used when the caller passes topK <= 0.
	DefaultTopK int
}

// DefaultRetrievalConfig favours the semantic signal: embeddings are
// the stronger general-purpose match for natural-language clinical
// queries, while BM25 recovers exact terminology and acronyms.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		VectorWeight:        0.7,
		LexicalWeight:       0.3,
		CandidateMultiplier: 2,
		DefaultTopK:         5,
	}
}

// RetrievalService fuses BM25 and vector search into one ranking.
//
// The lexical index is an immutable snapshot held behind an atomic
// pointer: searches read whichever snapshot is current while rebuilds
// construct a fresh index off to the side and swap it in whole.
type RetrievalService struct {
	store     driven.ArticleStore
	embedding driven.EmbeddingService
	cfg       RetrievalConfig

	index   atomic.Pointer[bm25.Index]
	initMu  sync.Mutex // serialises Initialize calls
	started atomic.Bool
}

// NewRetrievalService creates a retrieval service. Zero-valued config
// fields fall back to defaults.
func NewRetrievalService(
	store driven.ArticleStore,
	embedding driven.EmbeddingService,
	cfg RetrievalConfig,
) *RetrievalService {
	def := DefaultRetrievalConfig()
	if cfg.VectorWeight <= 0 && cfg.LexicalWeight <= 0 {
		cfg.VectorWeight = def.VectorWeight
		cfg.LexicalWeight = def.LexicalWeight
	}
	if cfg.CandidateMultiplier <= 0 {
		cfg.CandidateMultiplier = def.CandidateMultiplier
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = def.DefaultTopK
	}

	return &RetrievalService{
		store:     store,
		embedding: embedding,
		cfg:       cfg,
	}
}

// Initialize loads the full chunk corpus and builds a fresh lexical
// index. Idempotent: re-invoking replaces the index with one
// reflecting the store's current state. An empty library is not an
// error; the service becomes ready-but-empty.
func (s *RetrievalService) Initialize(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	logger.Section("Retriever Initialisation")

	chunks, err := s.store.ListAllChunks(ctx)
	if err != nil {
		return fmt.Errorf("list chunks: %w", err)
	}

	if len(chunks) == 0 {
		logger.Warn("No chunks in library; retriever ready but empty")
	}

	// Build off to the side, then swap. In-flight searches see either
	// the old snapshot or the new one, never a partial rebuild.
	idx := bm25.Build(chunks)
	s.index.Store(idx)
	s.started.Store(true)

	logger.Info("Lexical index built over %d chunks", idx.Size())
	return nil
}

// Ready reports whether Initialize has completed.
func (s *RetrievalService) Ready() bool {
	return s.started.Load()
}

// rawHit pairs a chunk with one signal's unnormalised score.
type rawHit struct {
	chunk domain.Chunk
	score float64
}

// Search performs hybrid retrieval: both signals fetch
// CandidateMultiplier*topK candidates concurrently, the score lists
// are min-max normalised independently, fused by chunk identity with
// the configured weights, sorted, and truncated to topK.
//
// Embedding or vector-store failure fails the whole call: losing the
// semantic signal silently would be an invisible quality regression.
// A missing lexical index only contributes an empty candidate list.
func (s *RetrievalService) Search(
	ctx context.Context, query string, topK int,
) ([]domain.FusedResult, time.Duration, error) {
	start := time.Now()

	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}

	// Lazy bootstrap on first use.
	if !s.Ready() {
		if err := s.Initialize(ctx); err != nil {
			return nil, time.Since(start), err
		}
	}

	logger.Section("Hybrid Search")
	logger.Debug("Query: %q, topK: %d", query, topK)

	fetchK := topK * s.cfg.CandidateMultiplier

	// The semantic fetch is a network round trip and the lexical
	// fetch is local computation; they have no ordering dependency,
	// so run them concurrently and join before fusing.
	var (
		wg          sync.WaitGroup
		vectorHits  []rawHit
		lexicalHits []rawHit
		vectorErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		vectorHits, vectorErr = s.vectorCandidates(ctx, query, fetchK)
	}()
	go func() {
		defer wg.Done()
		lexicalHits = s.lexicalCandidates(query, fetchK)
	}()
	wg.Wait()

	if vectorErr != nil {
		return nil, time.Since(start), vectorErr
	}

	logger.Debug("Candidates: %d vector, %d lexical", len(vectorHits), len(lexicalHits))

	results := s.fuse(vectorHits, lexicalHits, topK)
	elapsed := time.Since(start)

	logger.Info("Search returned %d results", len(results))
	logger.Timing("hybrid search", elapsed)
	return results, elapsed, nil
}

// vectorCandidates embeds the query and asks the store for the
// nearest chunks.
func (s *RetrievalService) vectorCandidates(ctx context.Context, query string, k int) ([]rawHit, error) {
	if s.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	embedding, err := s.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", errors.Join(domain.ErrEmbeddingUnavailable, err))
	}

	hits, err := s.store.VectorSearch(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	raw := make([]rawHit, len(hits))
	for i, hit := range hits {
		raw[i] = rawHit{chunk: hit.Chunk, score: hit.Similarity}
	}
	return raw, nil
}

// lexicalCandidates queries the current index snapshot. A nil or
// empty snapshot degrades to zero candidates rather than an error;
// the keyword signal is the weaker of the two.
func (s *RetrievalService) lexicalCandidates(query string, k int) []rawHit {
	idx := s.index.Load()
	if !idx.Ready() {
		logger.Warn("Lexical index not ready; keyword signal skipped")
		return nil
	}

	hits := idx.Search(query, k)
	raw := make([]rawHit, len(hits))
	for i, hit := range hits {
		raw[i] = rawHit{chunk: hit.Chunk, score: hit.Score}
	}
	return raw
}

// fuse merges the two candidate lists by chunk identity with a
// weighted sum of the normalised scores.
func (s *RetrievalService) fuse(vectorHits, lexicalHits []rawHit, topK int) []domain.FusedResult {
	vectorScores := normalizeScores(vectorHits)
	lexicalScores := normalizeScores(lexicalHits)

	type entry struct {
		chunk   domain.Chunk
		vector  float64
		lexical float64
	}

	merged := make(map[string]*entry, len(vectorHits)+len(lexicalHits))
	order := make([]string, 0, len(vectorHits)+len(lexicalHits))

	for i, hit := range vectorHits {
		merged[hit.chunk.ID] = &entry{chunk: hit.chunk, vector: vectorScores[i]}
		order = append(order, hit.chunk.ID)
	}
	for i, hit := range lexicalHits {
		if e, ok := merged[hit.chunk.ID]; ok {
			e.lexical = lexicalScores[i]
			continue
		}
		merged[hit.chunk.ID] = &entry{chunk: hit.chunk, lexical: lexicalScores[i]}
		order = append(order, hit.chunk.ID)
	}

	results := make([]domain.FusedResult, 0, len(order))
	for _, id := range order {
		e := merged[id]
		results = append(results, domain.FusedResult{
			Chunk:        e.chunk,
			FusedScore:   s.cfg.VectorWeight*e.vector + s.cfg.LexicalWeight*e.lexical,
			VectorScore:  e.vector,
			LexicalScore: e.lexical,
		})
	}

	// Stable sort over the insertion order keeps the ranking
	// deterministic when fused scores tie.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FusedScore > results[j].FusedScore
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// normalizeScores min-max normalises the hit scores into [0, 1].
// A list with a single distinct value maps every member to 1.0,
// avoiding division by zero without arbitrarily zeroing a uniform
// list.
func normalizeScores(hits []rawHit) []float64 {
	if len(hits) == 0 {
		return nil
	}

	minScore, maxScore := hits[0].score, hits[0].score
	for _, h := range hits[1:] {
		if h.score < minScore {
			minScore = h.score
		}
		if h.score > maxScore {
			maxScore = h.score
		}
	}

	normalized := make([]float64, len(hits))
	if maxScore == minScore {
		for i := range normalized {
			normalized[i] = 1.0
		}
		return normalized
	}

	for i, h := range hits {
		normalized[i] = (h.score - minScore) / (maxScore - minScore)
	}
	return normalized
}
