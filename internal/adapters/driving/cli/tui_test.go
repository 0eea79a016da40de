package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUICmd_Exists(t *testing.T) {
	// Verify the tui command is registered
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "tui" {
			found = true
			break
		}
	}
	assert.True(t, found, "tui command should be registered")
}

func TestTUICmd_ShortDescription(t *testing.T) {
	assert.Equal(t, "Launch the interactive terminal UI", tuiCmd.Short)
}

func TestTUICmd_LongDescription(t *testing.T) {
	assert.Contains(t, tuiCmd.Long, "interactive terminal user interface")
	assert.Contains(t, tuiCmd.Long, "Session controls:")
	assert.Contains(t, tuiCmd.Long, "ctrl+s")
}

func TestTUICmd_HelpOutput(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"tui", "--help"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()

	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "interactive terminal user interface")
	assert.Contains(t, output, "Session controls:")
}

func TestNewTUIPorts(t *testing.T) {
	t.Run("requires a session service", func(t *testing.T) {
		installServices(t, Services{})

		ports, err := newTUIPorts()

		assert.Nil(t, ports)
		assert.EqualError(t, err, "session service not configured")
	})

	t.Run("carries installed services", func(t *testing.T) {
		sessions := newSessionManager(&stubBackend{}, nil)
		settings := newFakeSettings()
		history := &fakeHistory{}
		installServices(t, Services{Sessions: sessions, Settings: settings, History: history})

		ports, err := newTUIPorts()

		require.NoError(t, err)
		assert.Same(t, sessions, ports.Sessions)
		assert.Same(t, settings, ports.Settings)
		assert.Same(t, history, ports.History)
		assert.NoError(t, ports.Validate())
	})
}

func TestRunTUI_NoSessionService(t *testing.T) {
	installServices(t, Services{})
	cmd, _ := newTestCommand("")

	assert.EqualError(t, runTUI(cmd, nil), "session service not configured")
}
