package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServeCmd_Registered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"mcp", "serve"})
	require.NoError(t, err)

	assert.Equal(t, "serve", cmd.Name())
	flag := cmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestRunMCPServe_NoSessionService(t *testing.T) {
	installServices(t, Services{})
	cmd, _ := newTestCommand("")
	cmd.Flags().Int("port", 0, "")

	assert.EqualError(t, runMCPServe(cmd, nil), "session service not configured")
}

func TestRunMCPServe_InvalidPort(t *testing.T) {
	installServices(t, Services{Sessions: newSessionManager(&stubBackend{}, nil)})
	cmd, _ := newTestCommand("")
	cmd.Flags().Int("port", 0, "")
	require.NoError(t, cmd.Flags().Set("port", "70000"))

	assert.EqualError(t, runMCPServe(cmd, nil), "invalid port 70000")
}

func TestRunMCPServe_MissingPortFlag(t *testing.T) {
	cmd, _ := newTestCommand("")

	err := runMCPServe(cmd, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "getting port flag")
}
