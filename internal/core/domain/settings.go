package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderHashing is the built-in offline feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGroq is the Groq cloud API (OpenAI compatible).
	AIProviderGroq AIProvider = "groq"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHashing, AIProviderOllama, AIProviderOpenAI, AIProviderGroq, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGroq || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderHashing:
		return "Hashing (built-in, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGroq:
		return "Groq (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// APIKeyEnv returns the environment variable conventionally holding the provider's key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderGroq:
		return "GROQ_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// PathSettings holds filesystem locations.
type PathSettings struct {
	// Documents is the corpus directory.
	Documents string

	// Index is the directory holding the index artifacts.
	Index string

	// Database is the SQLite audit log file.
	Database string

	// Log is the log file; empty disables file logging.
	Log string
}

// ChunkingSettings controls how page text is split.
type ChunkingSettings struct {
	// ChunkSize is the window size in words.
	ChunkSize int

	// ChunkOverlap is the number of words shared by consecutive windows.
	ChunkOverlap int
}

// Validate checks the window parameters.
func (c ChunkingSettings) Validate() error {
	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return ErrInvalidInput
	}
	return nil
}

// RetrievalSettings controls query-time retrieval.
type RetrievalSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int

	// QueryCacheTTL keeps query embeddings for repeated questions. Zero disables the cache.
	QueryCacheTTL time.Duration
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible hosts).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's vector size where the provider allows it.
	Dimensions int

	// BatchSize is the number of texts sent per embedding call.
	BatchSize int

	// Timeout bounds a single embedding call.
	Timeout time.Duration

	// RequestsPerSecond limits the call rate; zero means unlimited.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic || e.Provider == AIProviderGroq {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible hosts).
	BaseURL string

	// APIKey is the API key (for OpenAI/Groq/Anthropic).
	APIKey string

	// Temperature controls sampling randomness.
	Temperature float64

	// MaxTokens caps the answer length.
	MaxTokens int

	// Timeout bounds a single generation call.
	Timeout time.Duration

	// RequestsPerSecond limits the call rate; zero means unlimited.
	RequestsPerSecond float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHashing {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// Settings is the explicit configuration value built once at startup
// and handed to each component's constructor.
type Settings struct {
	Paths     PathSettings
	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
}

// Default values.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
	DefaultTopK         = 3
	DefaultBatchSize    = 32
	DefaultTemperature  = 0.7
	DefaultMaxTokens    = 512
)

// DefaultSettings returns settings matching a fresh data/ layout.
// The built-in hashing embedder works offline; generation stays unconfigured
// until an API key or local provider is set.
func DefaultSettings() Settings {
	return Settings{
		Paths: PathSettings{
			Documents: "data/documents",
			Index:     "data/index",
			Database:  "data/docintel.db",
			Log:       "logs/docintel.log",
		},
		Chunking: ChunkingSettings{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK:          DefaultTopK,
			QueryCacheTTL: 10 * time.Minute,
		},
		Embedding: EmbeddingSettings{
			Provider:  AIProviderHashing,
			Model:     DefaultEmbeddingModels()[AIProviderHashing],
			BatchSize: DefaultBatchSize,
			Timeout:   60 * time.Second,
		},
		LLM: LLMSettings{
			Provider:    AIProviderGroq,
			Model:       DefaultLLMModels()[AIProviderGroq],
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
			Timeout:     120 * time.Second,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHashing,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGroq,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHashing: "hashing-384",
		AIProviderOllama:  "nomic-embed-text",
		AIProviderOpenAI:  "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGroq:      "llama-3.1-8b-instant",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Built-in
		"hashing-384": 384,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
