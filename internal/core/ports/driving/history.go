package driving

import (
	"context"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// HistoryService reads the audit log and runs evaluations.
type HistoryService interface {
	// RecentInteractions returns up to limit interactions, newest first.
	RecentInteractions(ctx context.Context, limit int) ([]domain.Interaction, error)

	// Metrics returns up to limit metrics named name, newest first.
	Metrics(ctx context.Context, name string, limit int) ([]domain.Metric, error)

	// TestQueries returns recorded evaluation outcomes.
	TestQueries(ctx context.Context) ([]domain.TestQuery, error)

	// Evaluate answers every case and records the outcomes.
	Evaluate(ctx context.Context, cases []domain.EvalCase) ([]domain.TestQuery, error)
}
