package driving

import (
	"context"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
)

// AnswerService generates grounded answers from retrieved chunks.
type AnswerService interface {
	// Ask retrieves context for the question and generates a cited
	// answer from it.
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}
