package driving

import (
	"context"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// IndexService builds and inspects the vector index.
type IndexService interface {
	// Build processes the corpus and replaces the index wholesale.
	Build(ctx context.Context) (domain.BuildReport, error)

	// Status loads the persisted index and describes it.
	Status(ctx context.Context) (domain.IndexInfo, error)
}
