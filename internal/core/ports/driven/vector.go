package driven

import (
	"context"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// VectorIndex provides exact nearest-neighbour search over chunk vectors.
// Position i in the index holds vector i and chunk i.
type VectorIndex interface {
	// Build replaces the index wholesale and persists it.
	// chunks and vectors must have equal non-zero length.
	Build(ctx context.Context, chunks []domain.Chunk, vectors [][]float32, info domain.IndexInfo) error

	// Load reads the persisted index into memory.
	Load(ctx context.Context) error

	// Search returns up to k neighbours of query, nearest first.
	Search(ctx context.Context, query []float32, k int) ([]domain.Neighbor, error)

	// Info returns the loaded build's description.
	// The boolean is false when nothing is loaded.
	Info() (domain.IndexInfo, bool)

	// Close releases resources.
	Close() error
}
