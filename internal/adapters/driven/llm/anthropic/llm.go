// Package anthropic provides a generator using the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 512

	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic generator.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the LLM model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Temperature controls randomness. Zero leaves the API default.
	Temperature float64

	// MaxTokens is required by the API (default: 512).
	MaxTokens int

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Generator produces answers using Anthropic's /v1/messages endpoint.
type Generator struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature,omitempty"`
}

type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewGenerator creates a new Anthropic generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Generator{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Generate sends prompt as a single user message and concatenates the text blocks of the reply.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := messagesRequest{
		Model:       g.model,
		Messages:    []messagesMessage{{Role: "user", Content: prompt}},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic: send request: %w", domain.ErrGenerationService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic: read response: %w", domain.ErrGenerationService, err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("%w: anthropic: decode response (status %d): %w", domain.ErrGenerationService, resp.StatusCode, err)
	}
	if msgResp.Error != nil {
		return "", fmt.Errorf("%w: anthropic: %s", domain.ErrGenerationService, msgResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: anthropic: status %d: %s", domain.ErrGenerationService, resp.StatusCode, string(body))
	}

	var result strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	if result.Len() == 0 {
		return "", fmt.Errorf("%w: anthropic: no text content returned", domain.ErrGenerationService)
	}
	return strings.TrimSpace(result.String()), nil
}

func (g *Generator) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}

// ModelName returns the name of the LLM model being used.
func (g *Generator) ModelName() string {
	return g.model
}

// Ping validates the API key by listing models without running inference.
func (g *Generator) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: failed to create ping request: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("anthropic: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("anthropic: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (g *Generator) Close() error {
	return nil
}
