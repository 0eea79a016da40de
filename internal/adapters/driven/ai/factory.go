// Package ai wires chat providers into the analysis engine: it creates
// provider clients, renders analysis prompts and validates credentials.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/sheaf/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/sheaf/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/sheaf/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateLLMService creates the chat client for a provider.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.ProviderSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("%w: LLM provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateAndValidateLLMService creates a chat client and checks connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.ProviderSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'sheaf settings provider %s' to fix",
			domain.ErrLLMUnavailable, err, settings.Provider)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'sheaf settings provider %s' to fix",
			domain.ErrLLMUnavailable, err, settings.Provider)
	}

	return svc, nil
}

// ValidateProviderConfig creates a client for settings and pings it.
// Unconfigured providers are reported as not configured rather than pinged.
func ValidateProviderConfig(settings *domain.ProviderSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: no provider settings", domain.ErrInvalidInput)
	}
	if !settings.IsConfigured() {
		return &domain.ProviderNotConfiguredError{Provider: settings.Provider}
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return &domain.ProviderNotConfiguredError{Provider: settings.Provider}
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

func createOllamaLLM(settings *domain.ProviderSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createOpenAILLM(settings *domain.ProviderSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createAnthropicLLM(settings *domain.ProviderSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
