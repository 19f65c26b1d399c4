package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
	"github.com/custodia-labs/docintel/internal/logger"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService reads the audit log and runs evaluation question sets.
type HistoryService struct {
	audit   driven.AuditLog
	answers driving.AnswerService
}

// NewHistoryService creates a history service.
// The answer service is only needed by Evaluate and may be nil.
func NewHistoryService(audit driven.AuditLog, answers driving.AnswerService) *HistoryService {
	return &HistoryService{
		audit:   audit,
		answers: answers,
	}
}

// RecentInteractions returns answered questions, newest first.
func (s *HistoryService) RecentInteractions(ctx context.Context, limit int) ([]domain.Interaction, error) {
	return s.audit.RecentInteractions(ctx, limit)
}

// Metrics returns recorded metrics, newest first. An empty name returns all.
func (s *HistoryService) Metrics(ctx context.Context, name string, limit int) ([]domain.Metric, error) {
	return s.audit.Metrics(ctx, name, limit)
}

// TestQueries returns recorded evaluation outcomes.
func (s *HistoryService) TestQueries(ctx context.Context) ([]domain.TestQuery, error) {
	return s.audit.TestQueries(ctx)
}

// Evaluate answers each case and records whether the answer covered the
// expected topic. Generation failures count as unsuccessful and do not stop
// the run; any other error does.
func (s *HistoryService) Evaluate(ctx context.Context, cases []domain.EvalCase) ([]domain.TestQuery, error) {
	if s.answers == nil {
		return nil, fmt.Errorf("%w: evaluation needs an answer service", domain.ErrLLMUnavailable)
	}
	logger.Section("Evaluation")

	outcomes := make([]domain.TestQuery, 0, len(cases))
	for i, c := range cases {
		if strings.TrimSpace(c.Query) == "" {
			return outcomes, fmt.Errorf("%w: case %d has an empty query", domain.ErrInvalidInput, i+1)
		}

		answer, err := s.answers.Answer(ctx, c.Query)
		if err != nil && !errors.Is(err, domain.ErrGenerationService) {
			return outcomes, err
		}

		outcome := domain.TestQuery{
			Query:         c.Query,
			ExpectedTopic: c.ExpectedTopic,
			Answer:        answer.Text,
			Citations:     answer.Results,
			Success:       CoversTopic(answer, c.ExpectedTopic),
		}
		if err := s.audit.LogTestQuery(context.WithoutCancel(ctx), outcome); err != nil {
			logger.Warn("Failed to record test query: %v", err)
		}
		logger.Debug("%q: success=%t", c.Query, outcome.Success)
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// CoversTopic reports whether a grounded answer mentions topic, either in
// its text or in one of its retrieved chunks. Matching ignores case.
// An empty topic only requires a grounded answer.
func CoversTopic(answer domain.Answer, topic string) bool {
	if !answer.Grounded() {
		return false
	}
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return true
	}
	if strings.Contains(strings.ToLower(answer.Text), topic) {
		return true
	}
	for _, r := range answer.Results {
		if strings.Contains(strings.ToLower(r.Text), topic) {
			return true
		}
	}
	return false
}
