package domain

import "time"

// FusedResult is a single hybrid retrieval hit. It carries the fused
// score alongside both signal scores so callers can explain a ranking.
type FusedResult struct {
	// Chunk is the matched chunk, hydrated with article metadata.
	Chunk Chunk

	// FusedScore is the weighted combination of the normalised
	// vector and lexical scores.
	FusedScore float64

	// VectorScore is the min-max normalised semantic similarity,
	// 0 if the chunk was not a semantic candidate.
	VectorScore float64

	// LexicalScore is the min-max normalised BM25 score,
	// 0 if the chunk was not a lexical candidate.
	LexicalScore float64
}

// Answer is a generated response grounded in retrieved chunks.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Citations lists the chunks the answer was grounded in.
	Citations []Citation

	// RetrievalTime is how long hybrid retrieval took.
	RetrievalTime time.Duration

	// GenerationTime is how long answer generation took.
	GenerationTime time.Duration
}

// Citation identifies a source article used to ground an answer.
type Citation struct {
	// Title is the article title.
	Title string

	// Authors is the article author list, empty if unknown.
	Authors string

	// Year is the publication year, 0 if unknown.
	Year int
}
