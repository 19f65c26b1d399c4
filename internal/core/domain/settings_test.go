package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected bool
	}{
		{AIProviderHashing, true},
		{AIProviderOllama, true},
		{AIProviderOpenAI, true},
		{AIProviderGroq, true},
		{AIProviderAnthropic, true},
		{AIProvider(""), false},
		{AIProvider("cohere"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderHashing.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderGroq.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
}

func TestAIProvider_APIKeyEnv(t *testing.T) {
	assert.Equal(t, "GROQ_API_KEY", AIProviderGroq.APIKeyEnv())
	assert.Equal(t, "OPENAI_API_KEY", AIProviderOpenAI.APIKeyEnv())
	assert.Equal(t, "ANTHROPIC_API_KEY", AIProviderAnthropic.APIKeyEnv())
	assert.Empty(t, AIProviderOllama.APIKeyEnv())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Groq (cloud)", AIProviderGroq.Description())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "data/documents", s.Paths.Documents)
	assert.Equal(t, "data/index", s.Paths.Index)
	assert.Equal(t, 500, s.Chunking.ChunkSize)
	assert.Equal(t, 50, s.Chunking.ChunkOverlap)
	assert.Equal(t, 3, s.Retrieval.TopK)
	assert.Equal(t, 32, s.Embedding.BatchSize)
	assert.Equal(t, AIProviderHashing, s.Embedding.Provider)
	assert.Equal(t, AIProviderGroq, s.LLM.Provider)
	assert.Equal(t, "llama-3.1-8b-instant", s.LLM.Model)
	assert.InDelta(t, 0.7, s.LLM.Temperature, 1e-9)
	assert.Equal(t, 512, s.LLM.MaxTokens)
	require.NoError(t, s.Chunking.Validate())

	assert.True(t, s.Embedding.IsConfigured())
	assert.False(t, s.LLM.IsConfigured(), "groq needs an API key")
}

func TestChunkingSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		c       ChunkingSettings
		wantErr bool
	}{
		{"defaults", ChunkingSettings{500, 50}, false},
		{"zero overlap", ChunkingSettings{10, 0}, false},
		{"overlap one less than size", ChunkingSettings{10, 9}, false},
		{"overlap equals size", ChunkingSettings{10, 10}, true},
		{"overlap exceeds size", ChunkingSettings{10, 20}, true},
		{"zero size", ChunkingSettings{0, 0}, true},
		{"negative overlap", ChunkingSettings{10, -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderGroq, APIKey: "k"}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderHashing}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderOpenAI}.IsConfigured())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.True(t, EmbeddingSettings{Provider: AIProviderHashing}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "k"}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderGroq, APIKey: "k"}.IsConfigured())
}

func TestEmbeddingDimensions(t *testing.T) {
	dims := EmbeddingDimensions()
	for p, model := range DefaultEmbeddingModels() {
		_, ok := dims[model]
		assert.True(t, ok, "missing dimension for %s default model", p)
	}
}
