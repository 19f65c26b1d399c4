package driving

import (
	"context"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// AnswerService answers questions grounded on retrieved document content.
type AnswerService interface {
	// Answer retrieves context for query and generates an answer.
	// A no-context answer is not an error. A generation failure returns
	// the labelled answer together with an error wrapping domain.ErrGenerationService.
	Answer(ctx context.Context, query string) (domain.Answer, error)
}
