package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
	"github.com/custodia-labs/docintel/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

const answerPrompt = `You are an AI assistant answering questions based on document content.
Context:
%s

Question: %s
Answer:`

// AnswerService answers questions from retrieved document chunks.
type AnswerService struct {
	retriever driving.RetrievalService
	generator driven.Generator
	audit     driven.AuditLog
	topK      int
}

// NewAnswerService creates an answer service. The generator may be nil,
// in which case every grounded question reports a generation failure.
func NewAnswerService(retriever driving.RetrievalService, generator driven.Generator, topK int) *AnswerService {
	if topK < 1 {
		topK = domain.DefaultTopK
	}
	return &AnswerService{
		retriever: retriever,
		generator: generator,
		topK:      topK,
	}
}

// SetAuditLog sets the audit log that records every answered question.
func (s *AnswerService) SetAuditLog(audit driven.AuditLog) {
	s.audit = audit
}

// BuildPrompt renders the generation prompt from the retrieved chunks.
func BuildPrompt(query string, results []domain.RetrievalResult) string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return fmt.Sprintf(answerPrompt, strings.Join(texts, "\n"), query)
}

// Answer retrieves context for query and asks the generator to answer it.
//
// A missing or empty index, or a retrieval with no hits, yields
// domain.NoContextAnswer with a nil error. A generation failure yields an
// answer labelled with domain.GenerationErrorPrefix together with an error
// wrapping domain.ErrGenerationService. Every outcome is recorded.
func (s *AnswerService) Answer(ctx context.Context, query string) (domain.Answer, error) {
	start := time.Now()

	results, err := s.retriever.Retrieve(ctx, query, s.topK)
	switch {
	case errors.Is(err, domain.ErrIndexMissing), errors.Is(err, domain.ErrEmptyCorpus):
		logger.Warn("No index available: %v", err)
		results = nil
	case err != nil:
		return domain.Answer{}, err
	}

	if len(results) == 0 {
		answer := domain.Answer{Text: domain.NoContextAnswer, Status: domain.AnswerStatusNoContext}
		s.record(ctx, query, answer, time.Since(start), "")
		return answer, nil
	}

	logger.Section("Generation")
	text, genErr := s.generate(ctx, BuildPrompt(query, results))
	if genErr != nil {
		logger.Error("Generation failed: %v", genErr)
		answer := domain.Answer{
			Text:    domain.GenerationErrorPrefix + genErr.Error(),
			Results: results,
			Status:  domain.AnswerStatusGenerationFailed,
		}
		s.record(ctx, query, answer, time.Since(start), genErr.Error())
		return answer, genErr
	}

	answer := domain.Answer{Text: text, Results: results, Status: domain.AnswerStatusAnswered}
	s.record(ctx, query, answer, time.Since(start), "")
	return answer, nil
}

func (s *AnswerService) generate(ctx context.Context, prompt string) (string, error) {
	if s.generator == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationService, domain.ErrLLMUnavailable)
	}
	logger.Debug("Model: %s, prompt: %d bytes", s.generator.ModelName(), len(prompt))

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationService) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationService, err)
	}
	return text, nil
}

// record writes the interaction and its timing. Audit failures never
// change the answer returned to the caller.
func (s *AnswerService) record(ctx context.Context, query string, answer domain.Answer, elapsed time.Duration, errMsg string) {
	if s.audit == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	id, err := s.audit.LogInteraction(ctx, domain.Interaction{
		Question:      query,
		Retrieved:     answer.Results,
		Answer:        answer.Text,
		Citations:     answer.Results,
		ExecutionTime: elapsed,
		Status:        answer.Status,
		Error:         errMsg,
	})
	if err != nil {
		logger.Warn("Failed to record interaction: %v", err)
	}

	err = s.audit.LogMetric(ctx, domain.Metric{
		Name:     domain.MetricAnswerSeconds,
		Value:    elapsed.Seconds(),
		Metadata: map[string]any{"interaction_id": id, "status": string(answer.Status)},
	})
	if err != nil {
		logger.Warn("Failed to record answer timing: %v", err)
	}
}
