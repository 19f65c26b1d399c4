package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docintel/internal/core/domain"
)

func TestCoversTopic(t *testing.T) {
	grounded := domain.Answer{
		Text:    "The Eiffel Tower is in Paris.",
		Status:  domain.AnswerStatusAnswered,
		Results: []domain.RetrievalResult{{Chunk: domain.Chunk{Text: "Built for the 1889 World's Fair."}}},
	}

	tests := []struct {
		name   string
		answer domain.Answer
		topic  string
		want   bool
	}{
		{"topic in answer", grounded, "eiffel", true},
		{"topic in chunk", grounded, "WORLD'S FAIR", true},
		{"topic absent", grounded, "london", false},
		{"empty topic", grounded, "  ", true},
		{"no context", domain.Answer{Text: domain.NoContextAnswer, Status: domain.AnswerStatusNoContext}, "", false},
		{"generation failed", domain.Answer{Text: "[generation error] eiffel", Status: domain.AnswerStatusGenerationFailed}, "eiffel", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoversTopic(tt.answer, tt.topic))
		})
	}
}

func TestHistoryService_Evaluate(t *testing.T) {
	audit := memory.NewAuditLog()
	answers := &mockAnswers{
		answers: map[string]domain.Answer{
			"good": {Text: "about revenue", Status: domain.AnswerStatusAnswered},
			"miss": {Text: "about costs", Status: domain.AnswerStatusAnswered},
			"fail": {Text: "[generation error] timeout", Status: domain.AnswerStatusGenerationFailed},
		},
		errs: map[string]error{
			"fail": fmt.Errorf("%w: timeout", domain.ErrGenerationService),
		},
	}
	svc := NewHistoryService(audit, answers)

	outcomes, err := svc.Evaluate(context.Background(), []domain.EvalCase{
		{Query: "good", ExpectedTopic: "Revenue"},
		{Query: "miss", ExpectedTopic: "revenue"},
		{Query: "fail", ExpectedTopic: "timeout"},
	})
	require.NoError(t, err)

	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Success)
	assert.False(t, outcomes[1].Success)
	assert.False(t, outcomes[2].Success)

	recorded, err := svc.TestQueries(context.Background())
	require.NoError(t, err)
	require.Len(t, recorded, 3)
	assert.Equal(t, "good", recorded[0].Query)
	assert.Equal(t, "Revenue", recorded[0].ExpectedTopic)
	assert.Equal(t, "about revenue", recorded[0].Answer)
}

func TestHistoryService_EvaluateStopsOnHardErrors(t *testing.T) {
	answers := &mockAnswers{errs: map[string]error{"second": domain.ErrIndexCorrupt}}
	svc := NewHistoryService(memory.NewAuditLog(), answers)

	outcomes, err := svc.Evaluate(context.Background(), []domain.EvalCase{
		{Query: "first"}, {Query: "second"}, {Query: "third"},
	})
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
	assert.Len(t, outcomes, 1)
}

func TestHistoryService_EvaluateRejectsEmptyQuery(t *testing.T) {
	svc := NewHistoryService(memory.NewAuditLog(), &mockAnswers{})

	_, err := svc.Evaluate(context.Background(), []domain.EvalCase{{Query: " "}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistoryService_EvaluateWithoutAnswers(t *testing.T) {
	svc := NewHistoryService(memory.NewAuditLog(), nil)

	_, err := svc.Evaluate(context.Background(), []domain.EvalCase{{Query: "q"}})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestHistoryService_Readers(t *testing.T) {
	ctx := context.Background()
	audit := memory.NewAuditLog()
	_, err := audit.LogInteraction(ctx, domain.Interaction{Question: "first"})
	require.NoError(t, err)
	_, err = audit.LogInteraction(ctx, domain.Interaction{Question: "second"})
	require.NoError(t, err)
	require.NoError(t, audit.LogMetric(ctx, domain.Metric{Name: domain.MetricAnswerSeconds, Value: 1.5}))
	require.NoError(t, audit.LogMetric(ctx, domain.Metric{Name: domain.MetricIndexChunks, Value: 10}))

	svc := NewHistoryService(audit, nil)

	interactions, err := svc.RecentInteractions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, interactions, 1)
	assert.Equal(t, "second", interactions[0].Question)

	metrics, err := svc.Metrics(ctx, domain.MetricIndexChunks, 10)
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.InDelta(t, 10.0, metrics[0].Value, 1e-9)

	all, err := svc.Metrics(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
