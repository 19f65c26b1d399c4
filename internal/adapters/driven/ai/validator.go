package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// DefaultValidationTimeout bounds each provider check.
const DefaultValidationTimeout = 5 * time.Second

// probeText is embedded to confirm the provider returns vectors of the advertised size.
const probeText = "docintel configuration check"

// ConfigValidator checks provider settings against the live services.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator using DefaultValidationTimeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: DefaultValidationTimeout}
}

// WithTimeout returns a copy of v bounded by timeout.
func (v *ConfigValidator) WithTimeout(timeout time.Duration) *ConfigValidator {
	return &ConfigValidator{timeout: timeout}
}

// ValidateEmbedding pings the provider and embeds a probe text. A vector
// whose length differs from the configured dimensions is ErrDimensionMismatch,
// since an index built from it could never be queried.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(config)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrEmbeddingService, config.Provider, err)
	}

	vec, err := svc.Embed(ctx, probeText)
	if err != nil {
		return fmt.Errorf("%w: probe embedding failed: %w", domain.ErrEmbeddingService, err)
	}
	if len(vec) != svc.Dimensions() {
		return fmt.Errorf("%w: %s returned %d dimensions, expected %d",
			domain.ErrDimensionMismatch, svc.ModelName(), len(vec), svc.Dimensions())
	}
	return nil
}

// ValidateLLM pings the generation provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	gen, err := CreateGenerator(config)
	if err != nil {
		return err
	}
	defer gen.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	if err := gen.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrGenerationService, config.Provider, err)
	}
	return nil
}
