package mcp

import (
	"context"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.RetrievalResult
	err     error
	topK    int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, topK int) ([]domain.RetrievalResult, error) {
	m.topK = topK
	return m.results, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer domain.Answer
	err    error
}

func (m *mockAnswerService) Answer(_ context.Context, _ string) (domain.Answer, error) {
	return m.answer, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	info domain.IndexInfo
	err  error
}

func (m *mockIndexService) Build(_ context.Context) (domain.BuildReport, error) {
	return domain.BuildReport{Info: m.info}, m.err
}

func (m *mockIndexService) Status(_ context.Context) (domain.IndexInfo, error) {
	return m.info, m.err
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	interactions []domain.Interaction
	err          error
}

func (m *mockHistoryService) RecentInteractions(_ context.Context, limit int) ([]domain.Interaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.interactions[:min(limit, len(m.interactions))], nil
}

func (m *mockHistoryService) Metrics(_ context.Context, _ string, _ int) ([]domain.Metric, error) {
	return nil, m.err
}

func (m *mockHistoryService) TestQueries(_ context.Context) ([]domain.TestQuery, error) {
	return nil, m.err
}

func (m *mockHistoryService) Evaluate(_ context.Context, _ []domain.EvalCase) ([]domain.TestQuery, error) {
	return nil, m.err
}
