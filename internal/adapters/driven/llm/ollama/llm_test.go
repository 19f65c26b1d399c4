package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, []message{{Role: "user", Content: "Capital of France?"}}, req.Messages)
		require.NotNil(t, req.Options)
		assert.Equal(t, 512, req.Options.NumPredict)

		_ = json.NewEncoder(w).Encode(chatResponse{Message: message{Role: "assistant", Content: " Paris.\n"}, Done: true})
	}))
	defer server.Close()

	g := NewGenerator(Config{BaseURL: server.URL + "/", MaxTokens: 512, Temperature: 0.7})
	answer, err := g.Generate(context.Background(), "Capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer)
	assert.Equal(t, DefaultLLMModel, g.ModelName())
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"model error", http.StatusOK, `{"error":"model 'x' not found"}`},
		{"bad json", http.StatusOK, `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewGenerator(Config{BaseURL: server.URL}).Generate(context.Background(), "q")
			assert.ErrorIs(t, err, domain.ErrGenerationService)
		})
	}
}

func TestGenerate_NoOptionsByDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotContains(t, req, "options")
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"ok"},"done":true}`))
	}))
	defer server.Close()

	answer, err := NewGenerator(Config{BaseURL: server.URL}).Generate(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	assert.NoError(t, NewGenerator(Config{BaseURL: server.URL}).Ping(context.Background()))
}
