package driven

import "github.com/custodia-labs/sheaf/internal/core/domain"

// AIConfigValidator validates AI provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying AI services.
type AIConfigValidator interface {
	// ValidateProvider pings the provider described by settings.
	// Returns an error naming the problem if the provider cannot be reached.
	ValidateProvider(settings *domain.ProviderSettings) error
}
