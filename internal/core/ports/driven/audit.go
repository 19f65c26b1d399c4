package driven

import (
	"context"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// AuditLog is the append-only record of interactions, metrics and evaluations.
// Records are written once and never updated.
type AuditLog interface {
	// LogInteraction appends an answered question and returns its ID.
	LogInteraction(ctx context.Context, interaction domain.Interaction) (int64, error)

	// LogMetric appends a measurement.
	LogMetric(ctx context.Context, metric domain.Metric) error

	// LogTestQuery appends an evaluation outcome.
	LogTestQuery(ctx context.Context, query domain.TestQuery) error

	// RecentInteractions returns up to limit interactions, newest first.
	RecentInteractions(ctx context.Context, limit int) ([]domain.Interaction, error)

	// Metrics returns up to limit metrics, newest first.
	// An empty name matches every metric.
	Metrics(ctx context.Context, name string, limit int) ([]domain.Metric, error)

	// TestQueries returns every evaluation outcome, newest first.
	TestQueries(ctx context.Context) ([]domain.TestQuery, error)

	// Close releases resources.
	Close() error
}
