package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3:latest"
)

// OllamaProvider talks to a local Ollama server. No key is needed.
type OllamaProvider struct {
	url    string
	model  string
	client *http.Client
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  struct {
		Temperature float64 `json:"temperature"`
	} `json:"options"`
}

type ollamaResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// NewOllamaProvider builds a provider for the server at baseURL, defaulting
// to localhost and llama3.
func NewOllamaProvider(baseURL, model string, timeout time.Duration) *OllamaProvider {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaProvider{url: endpoint(baseURL, "/api/chat"), model: model, client: httpClient(timeout)}
}

// Generate runs a non-streaming chat turn.
func (p *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	req := ollamaRequest{Model: p.model, Messages: promptMessages(prompt)}
	req.Options.Temperature = 0.2

	var resp ollamaResponse
	if err := postJSON(ctx, p.client, p.url, nil, req, &resp); err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama: %s", resp.Error)
	}
	text := strings.TrimSpace(resp.Message.Content)
	if text == "" {
		return "", errors.New("ollama: empty response")
	}
	return text, nil
}
