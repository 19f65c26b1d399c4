// Package openai embeds text through the OpenAI /embeddings API, or any host
// that speaks it, using the official openai-go SDK.
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

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultModel      = "text-embedding-3-small"
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 2

	fallbackDimensions = 1536
)

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// MaxRetries applies to 429 and 5xx responses. Negative disables retries.
	MaxRetries int

	// Dimensions shortens text-embedding-3-* vectors. Other models ignore it.
	Dimensions int
}

// EmbeddingService sends whole batches in one request.
type EmbeddingService struct {
	client     openai.Client
	model      string
	dimensions int
	shortens   bool
}

// NewEmbeddingService creates a new OpenAI embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	switch {
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = DefaultMaxRetries
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		var ok bool
		if dimensions, ok = domain.EmbeddingDimensions()[cfg.Model]; !ok {
			dimensions = fallbackDimensions
		}
	}

	return &EmbeddingService{
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"),
			option.WithRequestTimeout(cfg.Timeout),
			option.WithMaxRetries(cfg.MaxRetries),
		),
		model:      cfg.Model,
		dimensions: dimensions,
		shortens:   strings.HasPrefix(cfg.Model, "text-embedding-3-"),
	}, nil
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch returns one vector per text in input order, whatever order the
// API lists them in.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(s.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	}
	if s.shortens {
		params.Dimensions = openai.Int(int64(s.dimensions))
	}

	resp, err := s.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %s: %w", domain.ErrEmbeddingService, s.model, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: openai: %d embeddings for %d inputs", domain.ErrEmbeddingService, len(resp.Data), len(texts))
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range resp.Data {
		i := int(data.Index)
		if i < 0 || i >= len(texts) || embeddings[i] != nil {
			return nil, fmt.Errorf("%w: openai: unexpected embedding index %d", domain.ErrEmbeddingService, data.Index)
		}
		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		embeddings[i] = vec
	}

	return embeddings, nil
}

func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks the key by listing models, without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.List(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

func (s *EmbeddingService) Close() error {
	return nil
}
