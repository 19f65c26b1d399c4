package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure AuditLog implements the interface.
var _ driven.AuditLog = (*AuditLog)(nil)

// AuditLog is an in-memory implementation of driven.AuditLog.
// It serves runs that should leave no database behind, and tests.
type AuditLog struct {
	mu           sync.RWMutex
	nextID       int64
	interactions []domain.Interaction
	metrics      []domain.Metric
	tests        []domain.TestQuery
}

// NewAuditLog creates an empty in-memory audit log.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (a *AuditLog) id() int64 {
	a.nextID++
	return a.nextID
}

// LogInteraction appends an interaction and returns its ID.
func (a *AuditLog) LogInteraction(_ context.Context, in domain.Interaction) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	in.ID = a.id()
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}
	a.interactions = append(a.interactions, in)
	return in.ID, nil
}

// LogMetric appends a measurement.
func (a *AuditLog) LogMetric(_ context.Context, m domain.Metric) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	m.ID = a.id()
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	a.metrics = append(a.metrics, m)
	return nil
}

// LogTestQuery appends an evaluation result.
func (a *AuditLog) LogTestQuery(_ context.Context, q domain.TestQuery) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	q.ID = a.id()
	if q.Timestamp.IsZero() {
		q.Timestamp = time.Now()
	}
	a.tests = append(a.tests, q)
	return nil
}

// RecentInteractions returns up to limit interactions, newest first.
func (a *AuditLog) RecentInteractions(_ context.Context, limit int) ([]domain.Interaction, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []domain.Interaction
	for i := len(a.interactions) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, a.interactions[i])
	}
	return out, nil
}

// Metrics returns up to limit measurements named name, newest first.
// An empty name matches every metric.
func (a *AuditLog) Metrics(_ context.Context, name string, limit int) ([]domain.Metric, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []domain.Metric
	for i := len(a.metrics) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if name == "" || a.metrics[i].Name == name {
			out = append(out, a.metrics[i])
		}
	}
	return out, nil
}

// TestQueries returns every evaluation result in insertion order.
func (a *AuditLog) TestQueries(context.Context) ([]domain.TestQuery, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return append([]domain.TestQuery(nil), a.tests...), nil
}

// Close is a no-op.
func (a *AuditLog) Close() error {
	return nil
}
