package driving

import "github.com/custodia-labs/docintel/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves the current settings from configuration, environment and defaults.
	Get() (domain.Settings, error)

	// Set validates and persists a single dotted key.
	Set(key, value string) error

	// Keys returns every recognised settings key in display order.
	Keys() []string

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the generation provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks the resolved settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
