package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/services"
)

func TestNewServer(t *testing.T) {
	t.Run("nil session factory returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSessionFactory)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server := newTestServer(&mockBackend{configured: true}, nil)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	settings := &mockSettings{settings: domain.DefaultAppSettings()}
	sessions := services.NewSessionManager(settings, &mockBackend{}, nil, nil, nil)

	t.Run("nil session factory returns error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingSessionFactory)
	})

	t.Run("sessions only is valid", func(t *testing.T) {
		ports := &Ports{Sessions: sessions}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Sessions: sessions,
			History:  &mockHistoryService{},
		}
		assert.NoError(t, ports.Validate())
	})
}

func TestServer_Current(t *testing.T) {
	server := newTestServer(&mockBackend{configured: true}, nil)

	first, err := server.current()
	require.NoError(t, err)
	second, err := server.current()
	require.NoError(t, err)
	assert.Same(t, first, second, "open session is reused")

	server.reset()
	assert.Equal(t, domain.SessionCancelled, first.State())

	third, err := server.current()
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, domain.SessionEmpty, third.State())
}

func TestServer_ResetWithoutSession(t *testing.T) {
	server := newTestServer(&mockBackend{configured: true}, nil)
	assert.NotPanics(t, server.reset)
}
