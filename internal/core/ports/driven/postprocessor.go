package driven

import (
	"context"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// PostProcessor turns an extracted document into chunks.
type PostProcessor interface {
	// Name returns the processor name for logging.
	Name() string

	// Process returns the document's chunks in page order.
	Process(ctx context.Context, doc domain.Document) ([]domain.Chunk, error)
}
