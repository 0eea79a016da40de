package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
	"github.com/custodia-labs/sheaf/internal/logger"
)

// Ensure Backend implements the interface.
var _ driven.AnalysisBackend = (*Backend)(nil)

// SettingsSource supplies the current provider configuration.
type SettingsSource interface {
	Get() (*domain.AppSettings, error)
}

// LLMFactory creates a chat client for one provider.
type LLMFactory func(settings *domain.ProviderSettings) (driven.LLMService, error)

// Backend routes analysis requests to the configured chat provider.
// A client is created per submission so settings changes apply immediately.
type Backend struct {
	settings SettingsSource
	renderer *PromptRenderer
	factory  LLMFactory
	now      func() time.Time
}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithLLMFactory replaces the provider client factory.
func WithLLMFactory(factory LLMFactory) BackendOption {
	return func(b *Backend) {
		b.factory = factory
	}
}

// WithPromptStore loads instructions from store instead of the built-in prompts.
func WithPromptStore(store driven.PromptStore) BackendOption {
	return func(b *Backend) {
		b.renderer.SetPromptStore(store)
	}
}

// WithClock sets the time source for result timestamps.
func WithClock(now func() time.Time) BackendOption {
	return func(b *Backend) {
		b.now = now
	}
}

// NewBackend creates an analysis backend reading provider settings from settings.
func NewBackend(settings SettingsSource, opts ...BackendOption) *Backend {
	b := &Backend{
		settings: settings,
		renderer: NewPromptRenderer(nil),
		factory:  CreateLLMService,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IsProviderConfigured returns true if the provider is valid and, for cloud
// providers, has a non-blank API key.
func (b *Backend) IsProviderConfigured(provider domain.AIProvider) bool {
	if b.settings == nil {
		return false
	}
	settings, err := b.settings.Get()
	if err != nil {
		return false
	}
	return settings.IsProviderConfigured(provider)
}

// Submit renders the request, sends it to the provider and wraps the reply.
func (b *Backend) Submit(ctx context.Context, req *domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	if req == nil || len(req.Sources) == 0 {
		return nil, domain.ErrEmptySourceSet
	}
	if b.settings == nil {
		return nil, &domain.ProviderNotConfiguredError{Provider: req.Provider}
	}

	settings, err := b.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if !settings.IsProviderConfigured(req.Provider) {
		return nil, &domain.ProviderNotConfiguredError{Provider: req.Provider}
	}
	provider := settings.Provider(req.Provider)

	llm, err := b.factory(&provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if llm == nil {
		return nil, fmt.Errorf("%w: no client for %s", domain.ErrLLMUnavailable, req.Provider)
	}
	defer llm.Close()

	messages := b.renderer.Render(req)
	logger.Debug("Rendered prompt for %d sources (%d chars)", len(req.Sources), len(messages[len(messages)-1].Content))

	resp, err := llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   settings.Analysis.MaxTokens,
		Temperature: analysisTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%s chat: %w", req.Provider, err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return nil, fmt.Errorf("%s returned an empty analysis", req.Provider)
	}

	model := resp.Model
	if model == "" {
		model = llm.ModelName()
	}
	logger.Info("Analysis complete: %s, %d input / %d output tokens", model, resp.InputTokens, resp.OutputTokens)

	return &domain.AnalysisResult{
		ID:           newResultID(),
		Provider:     req.Provider,
		Model:        model,
		AnalysisType: req.AnalysisType,
		Content:      strings.TrimSpace(resp.Content),
		Sources:      domain.ReferencesFor(req.Sources),
		Usage: domain.TokenUsage{
			InputTokens:  resp.InputTokens,
			OutputTokens: resp.OutputTokens,
		},
		CreatedAt: b.now(),
	}, nil
}

// analysisTemperature keeps analyses close to the sources.
const analysisTemperature = 0.3

func newResultID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
