package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvPrefix prefixes environment variables that override config keys.
// "llm.max_tokens" is overridden by DOCINTEL_LLM_MAX_TOKENS.
const EnvPrefix = "DOCINTEL_"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDocuments       = "paths.documents"
	keyIndex           = "paths.index"
	keyDatabase        = "paths.database"
	keyLog             = "paths.log"
	keyChunkSize       = "chunking.chunk_size"
	keyChunkOverlap    = "chunking.chunk_overlap"
	keyTopK            = "retrieval.top_k"
	keyQueryCache      = "retrieval.query_cache_seconds"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedBatchSize  = "embedding.batch_size"
	keyEmbedDimensions = "embedding.dimensions"
	keyEmbedTimeout    = "embedding.timeout_seconds"
	keyEmbedRPS        = "embedding.requests_per_second"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMTemperature  = "llm.temperature"
	keyLLMMaxTokens    = "llm.max_tokens"
	keyLLMTimeout      = "llm.timeout_seconds"
	keyLLMRPS          = "llm.requests_per_second"
)

const defaultOllamaURL = "http://localhost:11434"

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindProvider
)

var keyKinds = map[string]valueKind{
	keyDocuments:       kindString,
	keyIndex:           kindString,
	keyDatabase:        kindString,
	keyLog:             kindString,
	keyChunkSize:       kindInt,
	keyChunkOverlap:    kindInt,
	keyTopK:            kindInt,
	keyQueryCache:      kindFloat,
	keyEmbedProvider:   kindProvider,
	keyEmbedModel:      kindString,
	keyEmbedBaseURL:    kindString,
	keyEmbedAPIKey:     kindString,
	keyEmbedBatchSize:  kindInt,
	keyEmbedDimensions: kindInt,
	keyEmbedTimeout:    kindFloat,
	keyEmbedRPS:        kindFloat,
	keyLLMProvider:     kindProvider,
	keyLLMModel:        kindString,
	keyLLMBaseURL:      kindString,
	keyLLMAPIKey:       kindString,
	keyLLMTemperature:  kindFloat,
	keyLLMMaxTokens:    kindInt,
	keyLLMTimeout:      kindFloat,
	keyLLMRPS:          kindFloat,
}

// EnvName returns the environment variable overriding key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// SettingsService resolves application settings from the environment,
// the config store and built-in defaults, in that order.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment lookup. Tests pass a map-backed function.
func (s *SettingsService) SetEnvLookup(fn func(string) (string, bool)) {
	s.lookupEnv = fn
}

// Get resolves the current settings. Malformed values are reported rather
// than silently replaced with defaults.
func (s *SettingsService) Get() (domain.Settings, error) {
	d := domain.DefaultSettings()
	r := resolver{s: s}

	settings := domain.Settings{
		Paths: domain.PathSettings{
			Documents: r.str(keyDocuments, d.Paths.Documents),
			Index:     r.str(keyIndex, d.Paths.Index),
			Database:  r.str(keyDatabase, d.Paths.Database),
			Log:       r.str(keyLog, d.Paths.Log),
		},
		Chunking: domain.ChunkingSettings{
			ChunkSize:    r.integer(keyChunkSize, d.Chunking.ChunkSize),
			ChunkOverlap: r.integer(keyChunkOverlap, d.Chunking.ChunkOverlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:          r.integer(keyTopK, d.Retrieval.TopK),
			QueryCacheTTL: r.seconds(keyQueryCache, d.Retrieval.QueryCacheTTL),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          r.provider(keyEmbedProvider, d.Embedding.Provider),
			BaseURL:           r.str(keyEmbedBaseURL, ""),
			APIKey:            r.str(keyEmbedAPIKey, ""),
			BatchSize:         r.integer(keyEmbedBatchSize, d.Embedding.BatchSize),
			Dimensions:        r.integer(keyEmbedDimensions, 0),
			Timeout:           r.seconds(keyEmbedTimeout, d.Embedding.Timeout),
			RequestsPerSecond: r.number(keyEmbedRPS, 0),
		},
		LLM: domain.LLMSettings{
			Provider:          r.provider(keyLLMProvider, d.LLM.Provider),
			BaseURL:           r.str(keyLLMBaseURL, ""),
			APIKey:            r.str(keyLLMAPIKey, ""),
			Temperature:       r.number(keyLLMTemperature, d.LLM.Temperature),
			MaxTokens:         r.integer(keyLLMMaxTokens, d.LLM.MaxTokens),
			Timeout:           r.seconds(keyLLMTimeout, d.LLM.Timeout),
			RequestsPerSecond: r.number(keyLLMRPS, 0),
		},
	}

	// Models default per provider so switching provider alone stays coherent.
	settings.Embedding.Model = r.str(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = r.str(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.providerKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.providerKey(settings.LLM.Provider)
	}

	if r.err != nil {
		return d, r.err
	}
	return settings, nil
}

func (s *SettingsService) providerKey(p domain.AIProvider) string {
	if env := p.APIKeyEnv(); env != "" {
		if v, ok := s.lookupEnv(env); ok {
			return v
		}
	}
	return ""
}

// Keys returns every settable key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(keyKinds))
	for k := range keyKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Set parses value according to key's type and persists it.
// Chunking changes are rejected if they would leave an invalid window.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := keyKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	if key == keyChunkSize || key == keyChunkOverlap {
		current, err := s.Get()
		if err != nil {
			return err
		}
		chunking := current.Chunking
		if key == keyChunkSize {
			chunking.ChunkSize = parsed.(int)
		} else {
			chunking.ChunkOverlap = parsed.(int)
		}
		if err := chunking.Validate(); err != nil {
			return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size) and chunk_size positive (size %d, overlap %d)",
				err, chunking.ChunkSize, chunking.ChunkOverlap)
		}
	}
	if (key == keyTopK || key == keyEmbedBatchSize) && parsed.(int) < 1 {
		return fmt.Errorf("%w: %s must be at least 1", domain.ErrInvalidInput, key)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func parseValue(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err == nil && f < 0 {
			return nil, fmt.Errorf("must not be negative")
		}
		return f, err
	case kindProvider:
		if !domain.AIProvider(value).IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return value, nil
	default:
		return value, nil
	}
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.providerKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}
	updates := map[string]any{
		keyEmbedProvider:   provider.String(),
		keyEmbedModel:      model,
		keyEmbedBaseURL:    s.baseURLFor(provider, keyEmbedBaseURL),
		keyEmbedDimensions: 0,
	}
	if apiKey != "" {
		updates[keyEmbedAPIKey] = apiKey
	}
	return s.apply(updates)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support generation", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.providerKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}
	updates := map[string]any{
		keyLLMProvider: provider.String(),
		keyLLMModel:    model,
		keyLLMBaseURL:  s.baseURLFor(provider, keyLLMBaseURL),
	}
	if apiKey != "" {
		updates[keyLLMAPIKey] = apiKey
	}
	return s.apply(updates)
}

// baseURLFor keeps a configured Ollama URL; other providers use their own endpoint.
func (s *SettingsService) baseURLFor(provider domain.AIProvider, key string) string {
	if provider != domain.AIProviderOllama {
		return ""
	}
	if current := s.configStore.GetString(key); current != "" {
		return current
	}
	return defaultOllamaURL
}

func (s *SettingsService) apply(updates map[string]any) error {
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := s.configStore.Set(k, updates[k]); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	return nil
}

// Validate checks that the settings can drive an index build and a query.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Chunking.Validate(); err != nil {
		return fmt.Errorf("%w: chunk_size %d, chunk_overlap %d",
			err, settings.Chunking.ChunkSize, settings.Chunking.ChunkOverlap)
	}
	if settings.Retrieval.TopK < 1 {
		return fmt.Errorf("%w: retrieval.top_k must be at least 1", domain.ErrInvalidInput)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		hint := ""
		if env := settings.LLM.Provider.APIKeyEnv(); env != "" {
			hint = " (set " + env + ")"
		}
		return fmt.Errorf("%w: LLM provider %q is not configured%s",
			domain.ErrLLMUnavailable, settings.LLM.Provider, hint)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// resolver reads one key at a time and keeps the first error.
type resolver struct {
	s   *SettingsService
	err error
}

// raw returns the environment override as a string, or the stored value.
func (r *resolver) raw(key string) (any, bool) {
	if v, ok := r.s.lookupEnv(EnvName(key)); ok {
		return v, true
	}
	return r.s.configStore.Get(key)
}

func (r *resolver) fail(key string, v any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s has invalid value %v", domain.ErrInvalidInput, key, v)
	}
}

func (r *resolver) str(key, def string) string {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	str, ok := v.(string)
	if !ok {
		r.fail(key, v)
		return def
	}
	if str == "" && key != keyLog {
		return def
	}
	return str
}

func (r *resolver) integer(key string, def int) int {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err == nil {
			return i
		}
	}
	r.fail(key, v)
	return def
}

func (r *resolver) number(key string, def float64) float64 {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err == nil {
			return f
		}
	}
	r.fail(key, v)
	return def
}

func (r *resolver) seconds(key string, def time.Duration) time.Duration {
	f := r.number(key, def.Seconds())
	return time.Duration(f * float64(time.Second))
}

func (r *resolver) provider(key string, def domain.AIProvider) domain.AIProvider {
	p := domain.AIProvider(r.str(key, def.String()))
	if !p.IsValid() {
		r.fail(key, p)
		return def
	}
	return p
}
