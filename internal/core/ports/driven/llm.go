// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// Generator produces an answer from a fully rendered prompt.
//
// Implementations may include:
//   - Groq and OpenAI (chat completions)
//   - Anthropic (messages API)
//   - Ollama (local models)
type Generator interface {
	// Generate returns the completion for prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

