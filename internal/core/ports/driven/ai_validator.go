package driven

import "github.com/custodia-labs/docintel/internal/core/domain"

// AIConfigValidator checks provider settings against the live services
// before they are saved or reported as healthy.
type AIConfigValidator interface {
	// ValidateEmbedding fails with domain.ErrEmbeddingUnavailable when the
	// provider cannot be created, domain.ErrEmbeddingService when it does not
	// answer, and domain.ErrDimensionMismatch when its vectors have the wrong size.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM fails with domain.ErrLLMUnavailable when the provider cannot
	// be created and domain.ErrGenerationService when it does not answer.
	ValidateLLM(config *domain.LLMSettings) error
}
