package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyLibrary indicates no articles have been ingested yet.
	// Retrieval over an empty library returns empty results, not this
	// error; it is reserved for operations that require content, such
	// as answer generation.
	ErrEmptyLibrary = errors.New("library is empty")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable. Semantic search cannot proceed
	// without it, so retrieval fails rather than silently degrading.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answer generation is disabled; retrieval is unaffected.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrUnsupportedFile indicates an ingest file type medsearch
	// cannot extract text from.
	ErrUnsupportedFile = errors.New("unsupported file type")
)
