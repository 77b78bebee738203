package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aletheia-labs/medsearch-cli/internal/adapters/driven/storage/memory"
	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
	"github.com/aletheia-labs/medsearch-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int    { return len(m.embedding) }
func (m *mockEmbeddingService) ModelName() string  { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error       { return nil }

// failingVectorStore wraps a store and fails vector searches.
type failingVectorStore struct {
	driven.ArticleStore
}

func (s *failingVectorStore) VectorSearch(_ context.Context, _ []float32, _ int) ([]driven.VectorHit, error) {
	return nil, errors.New("database gone")
}

// --- Fixtures ---

// seedLibrary stores one article with the given chunk contents, all
// sharing a fixed embedding direction unless overridden.
func seedLibrary(t *testing.T, store *memory.ArticleStore, contents []string, embeddings [][]float32) {
	t.Helper()
	ctx := context.Background()

	article := &domain.Article{ID: "article-1", Title: "Seed Article", Year: 2022}
	require.NoError(t, store.SaveArticle(ctx, article))

	chunks := make([]domain.Chunk, len(contents))
	for i, content := range contents {
		chunks[i] = domain.Chunk{
			ID:        fmt.Sprintf("chunk-%d", i),
			ArticleID: article.ID,
			Position:  i,
			Content:   content,
			Title:     article.Title,
			Year:      article.Year,
		}
		if embeddings != nil {
			chunks[i].Embedding = embeddings[i]
		}
	}
	require.NoError(t, store.SaveChunks(ctx, chunks))
}

func TestInitializeEmptyLibrary(t *testing.T) {
	store := memory.NewArticleStore()
	svc := NewRetrievalService(store, &mockEmbeddingService{embedding: []float32{1, 0}}, RetrievalConfig{})

	require.NoError(t, svc.Initialize(context.Background()))
	assert.True(t, svc.Ready(), "empty library is ready-but-empty")

	results, _, err := svc.Search(context.Background(), "hypertension", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchLazyBootstrap(t *testing.T) {
	store := memory.NewArticleStore()
	seedLibrary(t, store,
		[]string{"Hypertension treatment guidelines for adults over sixty."},
		[][]float32{{1, 0}},
	)
	svc := NewRetrievalService(store, &mockEmbeddingService{embedding: []float32{1, 0}}, RetrievalConfig{})
	assert.False(t, svc.Ready())

	results, elapsed, err := svc.Search(context.Background(), "hypertension", 5)
	require.NoError(t, err)
	assert.True(t, svc.Ready(), "search initialises on first use")
	require.Len(t, results, 1)
	assert.Positive(t, elapsed)
}

func TestSearchFusesBothSignals(t *testing.T) {
	// A is the strongest semantic match but never mentions the query
	// term; C mentions it but is semantically unrelated. B is strong
	// on both signals and must rank first after fusion.
	store := memory.NewArticleStore()
	seedLibrary(t, store,
		[]string{
			"Cardiac output and vascular resistance in elderly patients.",                // A
			"Hypertension outcomes: amlodipine lowers hypertension in trial arms.",       // B
			"Prevalence estimates for hypertension drawn from the registry cohort data.", // C
		},
		[][]float32{
			{0.9, 0.43589}, // cos with query (1,0) = 0.9
			{0.8, 0.6},     // cos = 0.8
			{0, 1},         // cos = 0
		},
	)

	svc := NewRetrievalService(store, &mockEmbeddingService{embedding: []float32{1, 0}}, RetrievalConfig{})
	require.NoError(t, svc.Initialize(context.Background()))

	results, _, err := svc.Search(context.Background(), "hypertension", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "chunk-1", results[0].Chunk.ID, "chunk matched by both signals wins")
	assert.Positive(t, results[0].VectorScore)
	assert.Positive(t, results[0].LexicalScore)
}

func TestSearchDeterministic(t *testing.T) {
	store := memory.NewArticleStore()
	seedLibrary(t, store,
		[]string{
			"Hypertension and stroke risk in population studies.",
			"Hypertension management with diuretics and lifestyle change.",
			"Diabetes comorbidity influences blood pressure control.",
		},
		[][]float32{{1, 0}, {0.8, 0.6}, {0.6, 0.8}},
	)
	svc := NewRetrievalService(store, &mockEmbeddingService{embedding: []float32{1, 0}}, RetrievalConfig{})
	require.NoError(t, svc.Initialize(context.Background()))

	first, _, err := svc.Search(context.Background(), "hypertension blood pressure", 3)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, _, err := svc.Search(context.Background(), "hypertension blood pressure", 3)
		require.NoError(t, err)
		require.Len(t, again, len(first))
		for j := range first {
			assert.Equal(t, first[j].Chunk.ID, again[j].Chunk.ID)
			assert.InDelta(t, first[j].FusedScore, again[j].FusedScore, 1e-12)
		}
	}
}

func TestSearchMissingSignalScoresZero(t *testing.T) {
	// One chunk is a semantic candidate only: its content shares no
	// token with the query.
	store := memory.NewArticleStore()
	seedLibrary(t, store,
		[]string{"Renal denervation outcomes in resistant cases."},
		[][]float32{{1, 0}},
	)
	svc := NewRetrievalService(store, &mockEmbeddingService{embedding: []float32{1, 0}}, RetrievalConfig{})
	require.NoError(t, svc.Initialize(context.Background()))

	results, _, err := svc.Search(context.Background(), "hypertension", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Zero(t, results[0].LexicalScore)
	assert.Equal(t, 1.0, results[0].VectorScore, "single-member list normalises to 1")
	assert.InDelta(t, 0.7, results[0].FusedScore, 1e-9)
}

func TestSearchEmbeddingFailureFailsCall(t *testing.T) {
	store := memory.NewArticleStore()
	seedLibrary(t, store,
		[]string{"Hypertension treatment efficacy in randomised trials."},
		[][]float32{{1, 0}},
	)
	svc := NewRetrievalService(store, &mockEmbeddingService{embedErr: errors.New("connection refused")}, RetrievalConfig{})
	require.NoError(t, svc.Initialize(context.Background()))

	_, _, err := svc.Search(context.Background(), "hypertension", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestSearchVectorStoreFailureFailsCall(t *testing.T) {
	store := memory.NewArticleStore()
	seedLibrary(t, store,
		[]string{"Hypertension treatment efficacy in randomised trials."},
		[][]float32{{1, 0}},
	)

	svc := NewRetrievalService(
		&failingVectorStore{ArticleStore: store},
		&mockEmbeddingService{embedding: []float32{1, 0}},
		RetrievalConfig{},
	)
	require.NoError(t, svc.Initialize(context.Background()))

	_, _, err := svc.Search(context.Background(), "hypertension", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector search")
}

func TestSearchNilEmbeddingService(t *testing.T) {
	store := memory.NewArticleStore()
	svc := NewRetrievalService(store, nil, RetrievalConfig{})
	require.NoError(t, svc.Initialize(context.Background()))

	_, _, err := svc.Search(context.Background(), "anything", 5)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestInitializeReplacesIndex(t *testing.T) {
	ctx := context.Background()
	store := memory.NewArticleStore()
	svc := NewRetrievalService(store, &mockEmbeddingService{embedding: []float32{1, 0}}, RetrievalConfig{})

	require.NoError(t, svc.Initialize(ctx))
	results, _, err := svc.Search(ctx, "apixaban", 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	// New content arrives; re-initialising must expose it.
	seedLibrary(t, store,
		[]string{"Apixaban versus warfarin for stroke prevention outcomes."},
		[][]float32{{1, 0}},
	)
	require.NoError(t, svc.Initialize(ctx))

	results, _, err = svc.Search(ctx, "apixaban", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestConcurrentSearchesDuringReindex(t *testing.T) {
	ctx := context.Background()
	store := memory.NewArticleStore()
	seedLibrary(t, store,
		[]string{
			"Hypertension cohort follow-up results over ten years.",
			"Lipid lowering therapy and cardiovascular outcomes.",
		},
		[][]float32{{1, 0}, {0, 1}},
	)
	svc := NewRetrievalService(store, &mockEmbeddingService{embedding: []float32{1, 0}}, RetrievalConfig{})
	require.NoError(t, svc.Initialize(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _, err := svc.Search(ctx, "hypertension", 2)
				assert.NoError(t, err)
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				assert.NoError(t, svc.Initialize(ctx))
			}
		}()
	}
	wg.Wait()
}

func TestNormalizeScores(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   []float64
	}{
		{
			name:   "spread maps to unit interval",
			scores: []float64{2, 6, 10},
			want:   []float64{0, 0.5, 1},
		},
		{
			name:   "uniform list maps to ones",
			scores: []float64{3.3, 3.3, 3.3},
			want:   []float64{1, 1, 1},
		},
		{
			name:   "single element maps to one",
			scores: []float64{42},
			want:   []float64{1},
		},
		{
			name:   "empty list",
			scores: nil,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := make([]rawHit, len(tt.scores))
			for i, s := range tt.scores {
				hits[i] = rawHit{score: s}
			}
			got := normalizeScores(hits)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestNormalizeScoresIdempotent(t *testing.T) {
	hits := []rawHit{{score: 0}, {score: 0.25}, {score: 0.5}, {score: 1}}
	once := normalizeScores(hits)

	again := make([]rawHit, len(once))
	for i, s := range once {
		again[i] = rawHit{score: s}
	}
	twice := normalizeScores(again)

	for i := range once {
		assert.InDelta(t, once[i], twice[i], 1e-9)
	}
}

func TestFuseWeightedScenario(t *testing.T) {
	// Vector: A=0.9, B=0.7, D=0.1 normalises to A=1, B=0.75, D=0.
	// Lexical: B=10, C=2, D=1 normalises to B=1, C=1/9, D=0.
	// Fused at 0.7/0.3: A=0.7, B=0.825, so B overtakes the best
	// vector-only candidate by carrying both signals.
	svc := NewRetrievalService(memory.NewArticleStore(), nil, RetrievalConfig{})

	chunk := func(id string) domain.Chunk { return domain.Chunk{ID: id} }

	vector := []rawHit{
		{chunk: chunk("A"), score: 0.9},
		{chunk: chunk("B"), score: 0.7},
		{chunk: chunk("D"), score: 0.1},
	}
	lexical := []rawHit{
		{chunk: chunk("B"), score: 10.0},
		{chunk: chunk("C"), score: 2.0},
		{chunk: chunk("D"), score: 1.0},
	}

	results := svc.fuse(vector, lexical, 4)
	require.Len(t, results, 4)

	rank := make(map[string]int)
	for i, r := range results {
		rank[r.Chunk.ID] = i
	}

	assert.Less(t, rank["B"], rank["A"], "B benefits from both signals")
	assert.Less(t, rank["B"], rank["C"])
	assert.Less(t, rank["B"], rank["D"])

	b := results[rank["B"]]
	assert.InDelta(t, 0.7*0.75+0.3*1.0, b.FusedScore, 1e-9)
}

func TestFuseTruncatesToTopK(t *testing.T) {
	svc := NewRetrievalService(memory.NewArticleStore(), nil, RetrievalConfig{})

	var vector []rawHit
	for i := 0; i < 10; i++ {
		vector = append(vector, rawHit{
			chunk: domain.Chunk{ID: fmt.Sprintf("v-%d", i)},
			score: float64(10 - i),
		})
	}

	results := svc.fuse(vector, nil, 3)
	assert.Len(t, results, 3)
	assert.Equal(t, "v-0", results[0].Chunk.ID)
}
