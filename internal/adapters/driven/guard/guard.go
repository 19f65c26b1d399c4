// Package guard bounds calls to external AI services.
//
// The decorators apply a per-call deadline and an optional token-bucket rate
// limit around an EmbeddingService or Generator. A call that runs past its
// deadline fails with the service's domain error instead of hanging.
package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.Generator        = (*Generator)(nil)
)

// Config bounds a wrapped service.
type Config struct {
	// Timeout is the deadline for a single call. Zero disables it.
	Timeout time.Duration

	// RequestsPerSecond is the sustained call rate. Zero means unlimited.
	RequestsPerSecond float64
}

type limiter struct {
	timeout time.Duration
	bucket  *rate.Limiter
}

func newLimiter(cfg Config) limiter {
	l := limiter{timeout: cfg.Timeout}
	if cfg.RequestsPerSecond > 0 {
		l.bucket = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return l
}

// begin returns the bounded context for one call after waiting for a rate token.
func (l limiter) begin(ctx context.Context, kind error, name string) (context.Context, context.CancelFunc, error) {
	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if l.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, l.timeout)
	}
	if l.bucket != nil {
		if err := l.bucket.Wait(callCtx); err != nil {
			cancel()
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			return nil, nil, fmt.Errorf("%w: %s: rate limit: %w", kind, name, err)
		}
	}
	return callCtx, cancel, nil
}

// classify turns a deadline hit on the call context into a service error.
// Cancellation by the caller is returned unchanged.
func (l limiter) classify(parent, call context.Context, kind error, name string, err error) error {
	if err == nil || parent.Err() != nil {
		return err
	}
	if errors.Is(call.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s timed out after %s", kind, name, l.timeout)
	}
	return err
}

// EmbeddingService bounds an embedding service.
type EmbeddingService struct {
	next driven.EmbeddingService
	lim  limiter
}

// NewEmbeddingService wraps next with cfg's deadline and rate limit.
func NewEmbeddingService(next driven.EmbeddingService, cfg Config) *EmbeddingService {
	return &EmbeddingService{next: next, lim: newLimiter(cfg)}
}

// Embed implements driven.EmbeddingService.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	callCtx, cancel, err := s.lim.begin(ctx, domain.ErrEmbeddingService, s.next.ModelName())
	if err != nil {
		return nil, err
	}
	defer cancel()

	v, err := s.next.Embed(callCtx, text)
	return v, s.lim.classify(ctx, callCtx, domain.ErrEmbeddingService, s.next.ModelName(), err)
}

// EmbedBatch implements driven.EmbeddingService.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel, err := s.lim.begin(ctx, domain.ErrEmbeddingService, s.next.ModelName())
	if err != nil {
		return nil, err
	}
	defer cancel()

	v, err := s.next.EmbedBatch(callCtx, texts)
	return v, s.lim.classify(ctx, callCtx, domain.ErrEmbeddingService, s.next.ModelName(), err)
}

// Dimensions implements driven.EmbeddingService.
func (s *EmbeddingService) Dimensions() int { return s.next.Dimensions() }

// ModelName implements driven.EmbeddingService.
func (s *EmbeddingService) ModelName() string { return s.next.ModelName() }

// Ping implements driven.EmbeddingService. It is not rate limited.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close implements driven.EmbeddingService.
func (s *EmbeddingService) Close() error { return s.next.Close() }

// Generator bounds a generator.
type Generator struct {
	next driven.Generator
	lim  limiter
}

// NewGenerator wraps next with cfg's deadline and rate limit.
func NewGenerator(next driven.Generator, cfg Config) *Generator {
	return &Generator{next: next, lim: newLimiter(cfg)}
}

// Generate implements driven.Generator.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel, err := g.lim.begin(ctx, domain.ErrGenerationService, g.next.ModelName())
	if err != nil {
		return "", err
	}
	defer cancel()

	out, err := g.next.Generate(callCtx, prompt)
	return out, g.lim.classify(ctx, callCtx, domain.ErrGenerationService, g.next.ModelName(), err)
}

// ModelName implements driven.Generator.
func (g *Generator) ModelName() string { return g.next.ModelName() }

// Ping implements driven.Generator.
func (g *Generator) Ping(ctx context.Context) error { return g.next.Ping(ctx) }

// Close implements driven.Generator.
func (g *Generator) Close() error { return g.next.Close() }
