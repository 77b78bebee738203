package driven

import "context"

// LLMService generates natural-language text from a prompt.
// This is an optional service - when nil, answer generation is
// disabled and medsearch is retrieval-only.
type LLMService interface {
	// Generate produces a completion for the given prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the generation model.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
