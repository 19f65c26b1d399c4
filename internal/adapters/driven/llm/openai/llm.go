// Package openai provides a generator for OpenAI-compatible chat completion
// APIs, including OpenAI itself and Groq, using the official openai-go SDK.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	GroqBaseURL        = "https://api.groq.com/openai/v1"
	DefaultModel       = "gpt-4o-mini"
	DefaultGroqModel   = "llama-3.1-8b-instant"
	DefaultTimeout     = 120 * time.Second
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 512
)

// Config holds configuration for an OpenAI-compatible generator.
type Config struct {
	// APIKey is the provider API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Temperature controls randomness (default: 0.7).
	Temperature float64

	// MaxTokens caps the completion length (default: 512).
	MaxTokens int

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration
}

// Generator answers prompts with a single-turn chat completion.
type Generator struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewGenerator creates a generator for the OpenAI API or a compatible host.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"),
		option.WithRequestTimeout(cfg.Timeout),
	)

	return &Generator{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// NewGroqGenerator creates a generator for Groq's OpenAI-compatible endpoint.
func NewGroqGenerator(cfg Config) (*Generator, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GroqBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGroqModel
	}
	return NewGenerator(cfg)
}

// Generate sends prompt as a single user message and returns the reply text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(g.temperature),
		MaxTokens:   openai.Int(int64(g.maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrGenerationService, g.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s: no choices returned", domain.ErrGenerationService, g.model)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ModelName returns the name of the model being used.
func (g *Generator) ModelName() string {
	return g.model
}

// Ping validates the API key by listing models.
func (g *Generator) Ping(ctx context.Context) error {
	if _, err := g.client.Models.List(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (g *Generator) Close() error {
	return nil
}
