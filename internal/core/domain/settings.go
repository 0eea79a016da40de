package domain

import (
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// DefaultLanguage is used when neither the options nor settings name a language.
const DefaultLanguage = "English"

// AIProvider identifies an analysis backend.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// AllProviders returns every provider that can serve analysis requests.
func AllProviders() []AIProvider {
	return []AIProvider{
		AIProviderAnthropic,
		AIProviderOpenAI,
		AIProviderOllama,
	}
}

// DefaultModels returns default chat models for each provider.
func DefaultModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// ProviderSettings holds one provider's connection settings.
type ProviderSettings struct {
	// Provider is the service this entry configures.
	Provider AIProvider

	// Model is the chat model name.
	Model string

	// BaseURL is the API endpoint (required for Ollama, optional otherwise).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the provider can be used.
// Cloud providers need a non-blank API key; local providers need nothing.
func (p ProviderSettings) IsConfigured() bool {
	if !p.Provider.IsValid() {
		return false
	}
	if p.Provider.RequiresAPIKey() && strings.TrimSpace(p.APIKey) == "" {
		return false
	}
	return true
}

// AnalysisSettings holds defaults applied to new sessions.
type AnalysisSettings struct {
	// DefaultProvider is preselected in new sessions.
	DefaultProvider AIProvider

	// DefaultLanguage is used when a session does not pick one.
	DefaultLanguage string

	// DefaultType is preselected in new sessions.
	DefaultType AnalysisType

	// MaxTokens caps the length of the generated analysis.
	MaxTokens int
}

// VaultSettings locates the notes that can be added as sources.
type VaultSettings struct {
	// Path is the vault root directory.
	Path string
}

// ClipperSettings configures web page fetching.
type ClipperSettings struct {
	// Timeout bounds one page fetch.
	Timeout time.Duration

	// RequestsPerSecond throttles fetches across a session.
	RequestsPerSecond float64

	// UserAgent is sent with every request.
	UserAgent string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Analysis holds session defaults.
	Analysis AnalysisSettings

	// Providers holds per-provider connection settings.
	Providers map[AIProvider]ProviderSettings

	// Vault holds note vault settings.
	Vault VaultSettings

	// Clipper holds web clipper settings.
	Clipper ClipperSettings
}

// Provider returns the settings for p, with the default model filled in.
func (s *AppSettings) Provider(p AIProvider) ProviderSettings {
	ps, ok := s.Providers[p]
	if !ok {
		ps = ProviderSettings{Provider: p}
	}
	ps.Provider = p
	if ps.Model == "" {
		ps.Model = DefaultModels()[p]
	}
	return ps
}

// IsProviderConfigured reports whether p has usable settings.
func (s *AppSettings) IsProviderConfigured(p AIProvider) bool {
	return s.Provider(p).IsConfigured()
}

// DefaultAppSettings returns settings with sensible defaults.
// Cloud providers are left without keys; users configure them via settings.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Analysis: AnalysisSettings{
			DefaultProvider: AIProviderAnthropic,
			DefaultLanguage: DefaultLanguage,
			DefaultType:     AnalysisSynthesis,
			MaxTokens:       4096,
		},
		Providers: map[AIProvider]ProviderSettings{
			AIProviderOllama: {
				Provider: AIProviderOllama,
				Model:    DefaultModels()[AIProviderOllama],
				BaseURL:  "http://localhost:11434",
			},
		},
		Clipper: ClipperSettings{
			Timeout:           30 * time.Second,
			RequestsPerSecond: 2,
			UserAgent:         "sheaf/1.0 (+https://github.com/custodia-labs/sheaf)",
		},
	}
}
