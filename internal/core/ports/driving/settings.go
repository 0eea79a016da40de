package driving

import "github.com/custodia-labs/sheaf/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetProvider configures one provider's model, endpoint and API key.
	// Empty arguments leave the stored value unchanged.
	SetProvider(provider domain.AIProvider, model, baseURL, apiKey string) error

	// SetDefaultProvider selects the provider new sessions start with.
	SetDefaultProvider(provider domain.AIProvider) error

	// SetDefaultLanguage sets the language requested when a session names none.
	SetDefaultLanguage(language string) error

	// SetDefaultAnalysisType sets the analysis type new sessions start with.
	SetDefaultAnalysisType(analysisType domain.AnalysisType) error

	// SetVaultPath sets the notes vault root.
	SetVaultPath(path string) error

	// IsProviderConfigured returns true if the provider has usable credentials.
	IsProviderConfigured(provider domain.AIProvider) bool

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateProvider validates a provider's configuration by pinging it.
	ValidateProvider(provider domain.AIProvider) error
}
