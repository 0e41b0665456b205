package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-webinar/qna/config"
)

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, chatMessage{Role: "user", Content: "prompt"}, req.Messages[1])
		_ = json.NewEncoder(w).Encode(ollamaResponse{Message: chatMessage{Role: "assistant", Content: "1. A\n2. B\n3. C\n"}, Done: true})
	}))
	defer srv.Close()

	out, err := NewOllamaProvider(srv.URL+"/", "llama3", time.Second).Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "1. A\n2. B\n3. C", out)
}

func TestOllamaErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	_, err := NewOllamaProvider(srv.URL, "", 0).Generate(context.Background(), "prompt")
	assert.EqualError(t, err, "ollama: status 502")

	missing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"model \"nope\" not found"}`))
	}))
	defer missing.Close()
	_, err = NewOllamaProvider(missing.URL, "nope", 0).Generate(context.Background(), "prompt")
	assert.EqualError(t, err, `ollama: model "nope" not found`)
}

func TestOpenRouterGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.Equal(t, "qna", r.Header.Get("X-Title"))
		assert.Empty(t, r.Header.Get("HTTP-Referer"))
		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "some/model", req.Model)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" 1. Q "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p, err := NewOpenRouterProvider(OpenRouterOptions{BaseURL: srv.URL, APIKey: "key", Model: "some/model", AppName: "qna"})
	require.NoError(t, err)
	out, err := p.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "1. Q", out)
}

func TestOpenRouterRequiresKeyAndModel(t *testing.T) {
	_, err := NewOpenRouterProvider(OpenRouterOptions{Model: "m"})
	assert.Error(t, err)
	_, err = NewOpenRouterProvider(OpenRouterOptions{APIKey: "k"})
	assert.Error(t, err)
}

func TestOpenRouterErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error body", http.StatusOK, `{"error":{"message":"quota exceeded"}}`, "openrouter: quota exceeded"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "openrouter: no choices returned"},
		{"status", http.StatusUnauthorized, `bad key`, "openrouter: status 401: bad key"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			p, err := NewOpenRouterProvider(OpenRouterOptions{BaseURL: srv.URL, APIKey: "key", Model: "m"})
			require.NoError(t, err)
			_, err = p.Generate(context.Background(), "p")
			assert.EqualError(t, err, tc.want)
		})
	}
}

func TestFromConfig(t *testing.T) {
	p, err := FromConfig(context.Background(), config.AIConfig{Provider: "none"})
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = FromConfig(context.Background(), config.AIConfig{Provider: "Ollama", OllamaBaseURL: "http://x"})
	require.NoError(t, err)
	assert.IsType(t, &OllamaProvider{}, p)

	p, err = FromConfig(context.Background(), config.AIConfig{Provider: "openrouter", Model: "m"})
	assert.Error(t, err, "openrouter without key")
	assert.Nil(t, p)

	_, err = FromConfig(context.Background(), config.AIConfig{Provider: "gemini"})
	assert.Error(t, err, "gemini without key")

	_, err = FromConfig(context.Background(), config.AIConfig{Provider: "unknown"})
	assert.Error(t, err)
}
