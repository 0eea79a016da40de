package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
)

func TestNewConfigValidator(t *testing.T) {
	v := NewConfigValidator()
	assert.NotNil(t, v)
}

func TestConfigValidator_ImplementsInterface(t *testing.T) {
	var _ driven.AIConfigValidator = NewConfigValidator()
}

func TestConfigValidator_ValidateProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	v := NewConfigValidator()

	assert.ErrorIs(t, v.ValidateProvider(nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateProvider(&domain.ProviderSettings{Provider: domain.AIProviderOpenAI}),
		domain.ErrProviderNotConfigured)
	assert.NoError(t, v.ValidateProvider(&domain.ProviderSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  server.URL,
	}))
}
