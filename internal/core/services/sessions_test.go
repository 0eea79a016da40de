package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sheaf/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sheaf/internal/core/domain"
)

func TestSessionManager_NewSessionUsesSettings(t *testing.T) {
	store := memory.NewConfigStoreWith(map[string]any{
		"analysis.default_provider": "ollama",
		"analysis.default_type":     "comparison",
		"analysis.default_language": "Korean",
	})
	settings := NewSettingsService(store, nil)
	manager := NewSessionManager(settings, newMockBackend(domain.AIProviderOllama), nil, nil, nil)

	session, err := manager.NewSession()

	require.NoError(t, err)
	opts := session.Options()
	assert.Equal(t, domain.AIProviderOllama, opts.Provider)
	assert.Equal(t, domain.AnalysisComparison, opts.AnalysisType)
	assert.Equal(t, "Korean", opts.Language)
	assert.Equal(t, domain.SessionEmpty, session.State())
}

func TestSessionManager_SessionsAreIndependent(t *testing.T) {
	settings := NewSettingsService(memory.NewConfigStore(), nil)
	manager := NewSessionManager(settings, newMockBackend(), nil, nil, nil)

	a, err := manager.NewSession()
	require.NoError(t, err)
	b, err := manager.NewSession()
	require.NoError(t, err)

	_, err = a.AddManualInput("t", "c")
	require.NoError(t, err)
	a.Cancel()

	assert.Empty(t, b.Sources())
	assert.Equal(t, domain.SessionEmpty, b.State())
}

func TestSessionManager_FallbackLanguage(t *testing.T) {
	// Clearing the language falls back to the configured default.
	store := memory.NewConfigStoreWith(map[string]any{"analysis.default_language": "Japanese"})
	manager := NewSessionManager(NewSettingsService(store, nil), newMockBackend(domain.AIProviderAnthropic), nil, nil, nil)

	session, err := manager.NewSession()
	require.NoError(t, err)
	_, err = session.AddManualInput("t", "c")
	require.NoError(t, err)
	require.NoError(t, session.SetOption(domain.OptionLanguage, ""))

	req, err := session.Build()
	require.NoError(t, err)
	assert.Equal(t, "Japanese", req.Language)
}

func TestSessionManager_ListNotes(t *testing.T) {
	settings := NewSettingsService(memory.NewConfigStore(), nil)

	t.Run("without reader", func(t *testing.T) {
		manager := NewSessionManager(settings, newMockBackend(), nil, nil, nil)
		_, err := manager.ListNotes(context.Background())
		assert.ErrorIs(t, err, domain.ErrNotImplemented)
	})

	t.Run("with reader", func(t *testing.T) {
		reader := &mockNoteReader{notes: map[string]domain.Note{"a": {Path: "a.md"}}}
		manager := NewSessionManager(settings, newMockBackend(), reader, nil, nil)

		refs, err := manager.ListNotes(context.Background())
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, "a", refs[0].Name)
	})
}
