package services

import (
	"strings"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
)

// RequestBuilder validates a collection and options and assembles an
// analysis request. It never mutates its inputs.
type RequestBuilder struct {
	providers       driven.ProviderChecker
	defaultLanguage string
}

// NewRequestBuilder creates a builder. An empty defaultLanguage falls
// back to domain.DefaultLanguage.
func NewRequestBuilder(providers driven.ProviderChecker, defaultLanguage string) *RequestBuilder {
	defaultLanguage = strings.TrimSpace(defaultLanguage)
	if defaultLanguage == "" {
		defaultLanguage = domain.DefaultLanguage
	}
	return &RequestBuilder{
		providers:       providers,
		defaultLanguage: defaultLanguage,
	}
}

// Build checks, in order and stopping at the first failure:
//  1. the collection is non-empty (domain.ErrEmptySourceSet)
//  2. the selected provider is configured (*domain.ProviderNotConfiguredError)
//  3. the analysis type is known (*domain.ValidationError)
func (b *RequestBuilder) Build(records []domain.SourceRecord, opts domain.AnalysisOptions) (*domain.AnalysisRequest, error) {
	if len(records) == 0 {
		return nil, domain.ErrEmptySourceSet
	}
	if !opts.Provider.IsValid() || b.providers == nil || !b.providers.IsProviderConfigured(opts.Provider) {
		return nil, &domain.ProviderNotConfiguredError{Provider: opts.Provider}
	}
	if !opts.AnalysisType.IsValid() {
		return nil, domain.NewValidationError("analysisType", "unknown analysis type "+opts.AnalysisType.String())
	}

	sources := make([]domain.SourceRecord, len(records))
	copy(sources, records)

	language := strings.TrimSpace(opts.Language)
	if language == "" {
		language = b.defaultLanguage
	}

	return &domain.AnalysisRequest{
		Sources:                 sources,
		AnalysisType:            opts.AnalysisType,
		CustomPrompt:            strings.TrimSpace(opts.CustomPrompt),
		OutputFormat:            domain.OutputMarkdown,
		IncludeSourceReferences: true,
		Language:                language,
		Provider:                opts.Provider,
	}, nil
}
