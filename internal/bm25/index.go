// Package bm25 provides an in-memory BM25 lexical index over chunks.
//
// An Index is an immutable snapshot: Build computes all corpus
// statistics up front and the result is safe for concurrent readers.
// Corpus changes are handled by building a fresh Index and swapping
// it in, never by mutating an existing one.
package bm25

import (
	"math"
	"sort"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
)

// Okapi BM25 parameters.
const (
	// k1 controls term frequency saturation.
	k1 = 1.5

	// b controls document length normalisation.
	b = 0.75
)

// Hit is a scored lexical search result.
type Hit struct {
	// Chunk is the matched chunk.
	Chunk domain.Chunk

	// Score is the BM25 relevance score, always > 0.
	Score float64
}

// Index holds the corpus statistics required by BM25. It is read-only
// once built.
type Index struct {
	corpus    []domain.Chunk
	termFreqs []map[string]int // per-document term -> frequency
	docLens   []int            // per-document token count
	docFreqs  map[string]int   // term -> number of documents containing it
	avgDocLen float64
}

// Build constructs an index over the given corpus. The corpus order
// is preserved and used for deterministic tie-breaking. A nil or
// empty corpus yields an index that is not ready and returns no
// results.
func Build(corpus []domain.Chunk) *Index {
	idx := &Index{
		corpus:    corpus,
		termFreqs: make([]map[string]int, len(corpus)),
		docLens:   make([]int, len(corpus)),
		docFreqs:  make(map[string]int),
	}

	var totalLen int
	for i, chunk := range corpus {
		tokens := Tokenize(chunk.Content)
		freqs := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freqs[tok]++
		}
		for term := range freqs {
			idx.docFreqs[term]++
		}
		idx.termFreqs[i] = freqs
		idx.docLens[i] = len(tokens)
		totalLen += len(tokens)
	}

	if len(corpus) > 0 {
		idx.avgDocLen = float64(totalLen) / float64(len(corpus))
	}

	return idx
}

// Ready reports whether the index was built over a non-empty corpus.
func (idx *Index) Ready() bool {
	return idx != nil && len(idx.corpus) > 0
}

// Size returns the number of indexed chunks.
func (idx *Index) Size() int {
	if idx == nil {
		return 0
	}
	return len(idx.corpus)
}

// Search scores every indexed chunk against the query and returns the
// topK best in descending score order. Chunks with a non-positive
// score are excluded. Ties are broken by corpus order so repeated
// searches are reproducible. Searching an empty or nil index returns
// no results rather than an error.
func (idx *Index) Search(query string, topK int) []Hit {
	if !idx.Ready() || topK <= 0 {
		return nil
	}

	queryTerms := Tokenize(query)
	if len(queryTerms) == 0 {
		return nil
	}

	type scored struct {
		pos   int
		score float64
	}

	var candidates []scored
	for i := range idx.corpus {
		score := idx.scoreDocument(queryTerms, i)
		if score > 0 {
			candidates = append(candidates, scored{pos: i, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	hits := make([]Hit, len(candidates))
	for i, c := range candidates {
		hits[i] = Hit{Chunk: idx.corpus[c.pos], Score: c.score}
	}
	return hits
}

// scoreDocument computes the BM25 score of document i for the query
// token multiset. Terms are scored per occurrence, so a query that
// repeats a term weights it proportionally.
func (idx *Index) scoreDocument(terms []string, i int) float64 {
	freqs := idx.termFreqs[i]
	docLen := float64(idx.docLens[i])

	var score float64
	for _, term := range terms {
		tf := float64(freqs[term])
		if tf == 0 {
			continue
		}
		norm := 1 - b + b*(docLen/idx.avgDocLen)
		score += idx.idf(term) * (tf * (k1 + 1)) / (tf + k1*norm)
	}
	return score
}

// idf uses the Lucene variant log(1 + (N - df + 0.5) / (df + 0.5)),
// which is non-negative for every document frequency. The classic
// Robertson formula can go negative for terms present in more than
// half the corpus, which would break the score > 0 result contract.
func (idx *Index) idf(term string) float64 {
	df := float64(idx.docFreqs[term])
	if df == 0 {
		return 0
	}
	n := float64(len(idx.corpus))
	return math.Log(1 + (n-df+0.5)/(df+0.5))
}
