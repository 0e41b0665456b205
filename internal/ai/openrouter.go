package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1"

// OpenRouterOptions configure an OpenRouterProvider. SiteURL and AppName
// are optional attribution headers.
type OpenRouterOptions struct {
	BaseURL string
	APIKey  string
	Model   string
	SiteURL string
	AppName string
	Timeout time.Duration
}

// OpenRouterProvider calls the OpenRouter chat completions endpoint.
type OpenRouterProvider struct {
	url    string
	model  string
	header http.Header
	client *http.Client
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewOpenRouterProvider validates opts and builds the provider. The key and
// model are both required.
func NewOpenRouterProvider(opts OpenRouterOptions) (*OpenRouterProvider, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, errors.New("openrouter: OPENROUTER_API_KEY is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, errors.New("openrouter: AI_MODEL is required")
	}
	base := opts.BaseURL
	if base == "" {
		base = defaultOpenRouterURL
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+key)
	if opts.SiteURL != "" {
		header.Set("HTTP-Referer", opts.SiteURL)
	}
	if opts.AppName != "" {
		header.Set("X-Title", opts.AppName)
	}
	return &OpenRouterProvider{
		url:    endpoint(base, "/chat/completions"),
		model:  model,
		header: header,
		client: httpClient(opts.Timeout),
	}, nil
}

// Generate sends prompt as a single user turn and returns the first choice.
func (p *OpenRouterProvider) Generate(ctx context.Context, prompt string) (string, error) {
	var resp completionResponse
	err := postJSON(ctx, p.client, p.url, p.header, completionRequest{
		Model:       p.model,
		Messages:    promptMessages(prompt),
		Temperature: 0.2,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("openrouter: %w", err)
	}
	if resp.Error != nil && resp.Error.Message != "" {
		return "", fmt.Errorf("openrouter: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openrouter: no choices returned")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("openrouter: empty response")
	}
	return text, nil
}
