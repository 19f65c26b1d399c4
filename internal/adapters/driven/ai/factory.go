// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"

	"github.com/custodia-labs/docintel/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/docintel/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docintel/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docintel/internal/adapters/driven/guard"
	anthropicllm "github.com/custodia-labs/docintel/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/docintel/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docintel/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// CreateEmbeddingService creates the embedding service selected by settings,
// bounded by its timeout and rate limit.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrEmbeddingUnavailable, providerOf(settings))
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderHashing:
		svc = hashing.NewEmbeddingService(dimensionsFor(settings, hashing.DefaultDimensions))

	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrEmbeddingUnavailable, settings.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	return guard.NewEmbeddingService(svc, guard.Config{
		Timeout:           settings.Timeout,
		RequestsPerSecond: settings.RequestsPerSecond,
	}), nil
}

// CreateGenerator creates the generator selected by settings,
// bounded by its timeout and rate limit.
func CreateGenerator(settings *domain.LLMSettings) (driven.Generator, error) {
	if settings == nil || !settings.IsConfigured() {
		hint := ""
		if settings != nil && settings.Provider.RequiresAPIKey() {
			hint = fmt.Sprintf(" (set %s or llm.api_key)", settings.Provider.APIKeyEnv())
		}
		return nil, fmt.Errorf("%w: LLM provider %q is not configured%s",
			domain.ErrLLMUnavailable, llmProviderOf(settings), hint)
	}

	var (
		gen driven.Generator
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		gen = ollamallm.NewGenerator(ollamallm.Config{
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			Temperature: settings.Temperature,
			MaxTokens:   settings.MaxTokens,
		})

	case domain.AIProviderOpenAI:
		gen, err = openaillm.NewGenerator(openAIConfig(settings))

	case domain.AIProviderGroq:
		gen, err = openaillm.NewGroqGenerator(openAIConfig(settings))

	case domain.AIProviderAnthropic:
		gen, err = anthropicllm.NewGenerator(anthropicllm.Config{
			APIKey:      settings.APIKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			Temperature: settings.Temperature,
			MaxTokens:   settings.MaxTokens,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrLLMUnavailable, settings.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	return guard.NewGenerator(gen, guard.Config{
		Timeout:           settings.Timeout,
		RequestsPerSecond: settings.RequestsPerSecond,
	}), nil
}

func providerOf(settings *domain.EmbeddingSettings) domain.AIProvider {
	if settings == nil {
		return ""
	}
	return settings.Provider
}

func llmProviderOf(settings *domain.LLMSettings) domain.AIProvider {
	if settings == nil {
		return ""
	}
	return settings.Provider
}

// dimensionsFor prefers an explicit override, then the known model size.
func dimensionsFor(settings *domain.EmbeddingSettings, fallback int) int {
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	if d := domain.EmbeddingDimensions()[settings.Model]; d > 0 {
		return d
	}
	return fallback
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensionsFor(settings, ollamaembed.DefaultDimensions),
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
}

func openAIConfig(settings *domain.LLMSettings) openaillm.Config {
	return openaillm.Config{
		APIKey:      settings.APIKey,
		BaseURL:     settings.BaseURL,
		Model:       settings.Model,
		Temperature: settings.Temperature,
		MaxTokens:   settings.MaxTokens,
	}
}
