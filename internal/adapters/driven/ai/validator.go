package ai

import (
	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateProvider validates a provider configuration by pinging it.
func (v *ConfigValidator) ValidateProvider(settings *domain.ProviderSettings) error {
	return ValidateProviderConfig(settings)
}
