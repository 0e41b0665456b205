// Package ai provides text-generation backends for question synthesis.
package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aura-webinar/qna/config"
)

// Provider generates free text from a prompt.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderFactory builds a provider for a model name.
type ProviderFactory func(ctx context.Context, model string) (Provider, error)

// Registry maps provider names, matched case-insensitively, to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f ProviderFactory) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Get builds the named provider for model.
func (r *Registry) Get(ctx context.Context, name string, model string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown ai provider: %s", name)
	}
	return f(ctx, model)
}

// NewRegistryFromConfig registers gemini, openrouter and ollama with settings from cfg.
func NewRegistryFromConfig(cfg config.AIConfig) *Registry {
	r := NewRegistry()
	r.Register("gemini", func(ctx context.Context, model string) (Provider, error) {
		p, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey, model)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
	r.Register("openrouter", func(_ context.Context, model string) (Provider, error) {
		p, err := NewOpenRouterProvider(OpenRouterOptions{
			BaseURL: cfg.OpenRouterBaseURL,
			APIKey:  cfg.OpenRouterAPIKey,
			Model:   model,
			SiteURL: cfg.OpenRouterSiteURL,
			AppName: cfg.OpenRouterAppName,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	})
	r.Register("ollama", func(_ context.Context, model string) (Provider, error) {
		return NewOllamaProvider(cfg.OllamaBaseURL, model, cfg.Timeout), nil
	})
	return r
}

// FromConfig returns the configured provider, or nil when AI is disabled.
func FromConfig(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	return NewRegistryFromConfig(cfg).Get(ctx, cfg.Provider, cfg.Model)
}
