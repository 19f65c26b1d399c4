package driving

import (
	"context"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// RetrievalService finds the chunks most relevant to a query.
type RetrievalService interface {
	// Retrieve returns up to topK results, most relevant first.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error)
}
