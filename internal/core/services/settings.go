package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
	"github.com/custodia-labs/sheaf/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDefaultProvider = "analysis.default_provider"
	keyDefaultLanguage = "analysis.default_language"
	keyDefaultType     = "analysis.default_type"
	keyMaxTokens       = "analysis.max_tokens"
	keyVaultPath       = "vault.path"
	keyClipperTimeout  = "clipper.timeout"
	keyClipperRate     = "clipper.requests_per_second"
	keyClipperAgent    = "clipper.user_agent"

	providerKeyPrefix = "providers."
	providerModel     = ".model"
	providerBaseURL   = ".base_url"
	providerAPIKey    = ".api_key"
)

// ProviderConfigKey returns the config key for one provider field,
// e.g. ProviderConfigKey(domain.AIProviderOpenAI, "api_key").
func ProviderConfigKey(provider domain.AIProvider, field string) string {
	return providerKeyPrefix + provider.String() + "." + field
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Analysis: domain.AnalysisSettings{
			DefaultProvider: s.getProvider(keyDefaultProvider, defaults.Analysis.DefaultProvider),
			DefaultLanguage: s.getString(keyDefaultLanguage, defaults.Analysis.DefaultLanguage),
			DefaultType:     s.getAnalysisType(defaults.Analysis.DefaultType),
			MaxTokens:       s.getInt(keyMaxTokens, defaults.Analysis.MaxTokens),
		},
		Providers: make(map[domain.AIProvider]domain.ProviderSettings),
		Vault: domain.VaultSettings{
			Path: s.configStore.GetString(keyVaultPath),
		},
		Clipper: domain.ClipperSettings{
			Timeout:           s.getDuration(keyClipperTimeout, defaults.Clipper.Timeout),
			RequestsPerSecond: s.getFloat(keyClipperRate, defaults.Clipper.RequestsPerSecond),
			UserAgent:         s.getString(keyClipperAgent, defaults.Clipper.UserAgent),
		},
	}

	for _, p := range domain.AllProviders() {
		fallback := defaults.Provider(p)
		settings.Providers[p] = domain.ProviderSettings{
			Provider: p,
			Model:    s.getString(providerKeyPrefix+p.String()+providerModel, fallback.Model),
			BaseURL:  s.getString(providerKeyPrefix+p.String()+providerBaseURL, fallback.BaseURL),
			APIKey:   s.configStore.GetString(providerKeyPrefix + p.String() + providerAPIKey),
		}
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyDefaultProvider, settings.Analysis.DefaultProvider.String()},
		{keyDefaultLanguage, settings.Analysis.DefaultLanguage},
		{keyDefaultType, settings.Analysis.DefaultType.String()},
		{keyMaxTokens, settings.Analysis.MaxTokens},
		{keyVaultPath, settings.Vault.Path},
		{keyClipperTimeout, settings.Clipper.Timeout.String()},
		{keyClipperRate, settings.Clipper.RequestsPerSecond},
		{keyClipperAgent, settings.Clipper.UserAgent},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	for p, ps := range settings.Providers {
		if !p.IsValid() {
			continue
		}
		if err := s.configStore.Set(providerKeyPrefix+p.String()+providerModel, ps.Model); err != nil {
			return fmt.Errorf("save %s model: %w", p, err)
		}
		if err := s.configStore.Set(providerKeyPrefix+p.String()+providerBaseURL, ps.BaseURL); err != nil {
			return fmt.Errorf("save %s base_url: %w", p, err)
		}
		// Never blank out a stored key with an empty one.
		if ps.APIKey != "" {
			if err := s.configStore.Set(providerKeyPrefix+p.String()+providerAPIKey, ps.APIKey); err != nil {
				return fmt.Errorf("save %s api_key: %w", p, err)
			}
		}
	}

	return nil
}

// SetProvider configures one provider's model, endpoint and API key.
func (s *SettingsService) SetProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid provider: %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	ps := settings.Provider(provider)
	if model != "" {
		ps.Model = model
	}
	if baseURL != "" {
		ps.BaseURL = baseURL
	}
	if apiKey != "" {
		ps.APIKey = strings.TrimSpace(apiKey)
	}

	if provider.RequiresAPIKey() && ps.APIKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}
	if provider.IsLocal() && ps.BaseURL == "" {
		defaults := domain.DefaultAppSettings()
		ps.BaseURL = defaults.Provider(provider).BaseURL
	}

	settings.Providers[provider] = ps
	return s.Save(settings)
}

// SetDefaultProvider selects the provider new sessions start with.
func (s *SettingsService) SetDefaultProvider(provider domain.AIProvider) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid provider: %s", provider)
	}
	return s.configStore.Set(keyDefaultProvider, provider.String())
}

// SetDefaultLanguage sets the language requested when a session names none.
func (s *SettingsService) SetDefaultLanguage(language string) error {
	language = strings.TrimSpace(language)
	if language == "" {
		return fmt.Errorf("%w: language must not be empty", domain.ErrInvalidInput)
	}
	return s.configStore.Set(keyDefaultLanguage, language)
}

// SetDefaultAnalysisType sets the analysis type new sessions start with.
func (s *SettingsService) SetDefaultAnalysisType(analysisType domain.AnalysisType) error {
	if !analysisType.IsValid() {
		return fmt.Errorf("invalid analysis type: %s", analysisType)
	}
	return s.configStore.Set(keyDefaultType, analysisType.String())
}

// SetVaultPath sets the notes vault root.
func (s *SettingsService) SetVaultPath(path string) error {
	return s.configStore.Set(keyVaultPath, strings.TrimSpace(path))
}

// IsProviderConfigured returns true if the provider has usable credentials.
func (s *SettingsService) IsProviderConfigured(provider domain.AIProvider) bool {
	settings, err := s.Get()
	if err != nil {
		return false
	}
	return settings.IsProviderConfigured(provider)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateProvider validates a provider's configuration by pinging it.
func (s *SettingsService) ValidateProvider(provider domain.AIProvider) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	ps := settings.Provider(provider)
	return s.aiValidator.ValidateProvider(&ps)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	raw, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	var val float64
	switch v := raw.(type) {
	case float64:
		val = v
	case float32:
		val = float64(v)
	case int:
		val = float64(v)
	case int64:
		val = float64(v)
	default:
		return defaultVal
	}
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getAnalysisType(defaultVal domain.AnalysisType) domain.AnalysisType {
	val := s.configStore.GetString(keyDefaultType)
	if val == "" {
		return defaultVal
	}
	at := domain.AnalysisType(val)
	if !at.IsValid() {
		return defaultVal
	}
	return at
}
