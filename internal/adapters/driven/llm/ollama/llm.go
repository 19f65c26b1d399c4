// Package ollama answers prompts with a model served by a local Ollama instance.
package ollama

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

var _ driven.Generator = (*Generator)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// Config holds configuration for the Ollama generator. Zero Temperature and
// MaxTokens leave the model defaults in place.
type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Generator sends each prompt as a single-turn /api/chat request.
type Generator struct {
	client  *http.Client
	baseURL string
	model   string
	options *options
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  *options  `json:"options,omitempty"`
}

type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type chatResponse struct {
	Message message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error,omitempty"`
}

// NewGenerator creates a new Ollama generator.
func NewGenerator(cfg Config) *Generator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	g := &Generator{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
	if cfg.MaxTokens > 0 || cfg.Temperature > 0 {
		g.options = &options{NumPredict: cfg.MaxTokens, Temperature: cfg.Temperature}
	}
	return g
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    g.model,
		Messages: []message{{Role: "user", Content: prompt}},
		Options:  g.options,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: ollama: %w", domain.ErrGenerationService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: ollama: status %d: %s", domain.ErrGenerationService, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: ollama: decode response: %w", domain.ErrGenerationService, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: ollama: %s", domain.ErrGenerationService, out.Error)
	}
	return strings.TrimSpace(out.Message.Content), nil
}

func (g *Generator) ModelName() string {
	return g.model
}

// Ping lists local models, which checks connectivity without loading one.
func (g *Generator) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: ping: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: ping: status %d", resp.StatusCode)
	}
	return nil
}

func (g *Generator) Close() error {
	return nil
}
