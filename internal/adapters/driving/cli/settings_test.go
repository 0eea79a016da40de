package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

// fakeSettings records settings changes in memory.
type fakeSettings struct {
	settings    domain.AppSettings
	validateErr error
	validated   []domain.AIProvider
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{settings: domain.DefaultAppSettings()}
}

func (f *fakeSettings) Get() (*domain.AppSettings, error) {
	s := f.settings
	return &s, nil
}

func (f *fakeSettings) Save(s *domain.AppSettings) error {
	f.settings = *s
	return nil
}

func (f *fakeSettings) SetProvider(p domain.AIProvider, model, baseURL, apiKey string) error {
	if f.settings.Providers == nil {
		f.settings.Providers = map[domain.AIProvider]domain.ProviderSettings{}
	}
	ps := f.settings.Providers[p]
	if model != "" {
		ps.Model = model
	}
	if baseURL != "" {
		ps.BaseURL = baseURL
	}
	if apiKey != "" {
		ps.APIKey = apiKey
	}
	f.settings.Providers[p] = ps
	return nil
}

func (f *fakeSettings) SetDefaultProvider(p domain.AIProvider) error {
	f.settings.Analysis.DefaultProvider = p
	return nil
}

func (f *fakeSettings) SetDefaultLanguage(language string) error {
	f.settings.Analysis.DefaultLanguage = language
	return nil
}

func (f *fakeSettings) SetDefaultAnalysisType(t domain.AnalysisType) error {
	if !t.IsValid() {
		return domain.NewValidationError("analysisType", "unknown analysis type "+t.String())
	}
	f.settings.Analysis.DefaultType = t
	return nil
}

func (f *fakeSettings) SetVaultPath(path string) error {
	f.settings.Vault.Path = path
	return nil
}

func (f *fakeSettings) IsProviderConfigured(p domain.AIProvider) bool {
	return f.settings.IsProviderConfigured(p)
}

func (f *fakeSettings) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (f *fakeSettings) ValidateProvider(p domain.AIProvider) error {
	f.validated = append(f.validated, p)
	return f.validateErr
}

// setProviderFlags resets the provider flag variables for one test.
func setProviderFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		providerModel, providerBaseURL, providerAPIKey = "", "", ""
		providerMakeDefault, providerSkipCheck = false, false
	}
	reset()
	t.Cleanup(reset)
}

func TestRunSettingsShow(t *testing.T) {
	settings := newFakeSettings()
	settings.settings.Vault.Path = "/home/user/vault"
	installServices(t, Services{Settings: settings, EnvOverrides: []string{envKeyVault}})
	cmd, out := newTestCommand("")

	require.NoError(t, runSettingsShow(cmd, nil))

	output := out.String()
	assert.Contains(t, output, "Default provider: Anthropic (cloud)")
	assert.Contains(t, output, "Language: English")
	assert.Contains(t, output, "[Ollama (local)]")
	assert.Contains(t, output, "Base URL: http://localhost:11434")
	assert.Contains(t, output, "API Key: (not set)")
	assert.Contains(t, output, "Path: /home/user/vault (env)")
	assert.Contains(t, output, "Warning: default provider anthropic is not configured.")
}

func TestRunSettingsShow_MasksKeys(t *testing.T) {
	settings := newFakeSettings()
	require.NoError(t, settings.SetProvider(domain.AIProviderAnthropic, "", "", "sk-ant-1234567890"))
	installServices(t, Services{Settings: settings})
	cmd, out := newTestCommand("")

	require.NoError(t, runSettingsShow(cmd, nil))

	output := out.String()
	assert.Contains(t, output, "API Key: sk-a...7890")
	assert.NotContains(t, output, "sk-ant-1234567890")
	assert.Contains(t, output, "Configuration is valid.")
}

func TestRunSettings_NoService(t *testing.T) {
	installServices(t, Services{})
	setProviderFlags(t)
	cmd, _ := newTestCommand("")

	assert.EqualError(t, runSettingsShow(cmd, nil), "settings service not configured")
	assert.EqualError(t, runSettingsProvider(cmd, []string{"ollama"}), "settings service not configured")
	assert.EqualError(t, runSettingsLanguage(cmd, []string{"German"}), "settings service not configured")
	assert.EqualError(t, runSettingsType(cmd, []string{"summary"}), "settings service not configured")
	assert.EqualError(t, runSettingsVault(cmd, []string{"/tmp"}), "settings service not configured")
}

func TestRunSettingsProvider_APIKeyFlag(t *testing.T) {
	settings := newFakeSettings()
	installServices(t, Services{Settings: settings})
	setProviderFlags(t)
	providerAPIKey = "sk-flag-key-123"
	providerModel = "claude-3-5-haiku-latest"
	providerMakeDefault = true
	cmd, out := newTestCommand("")

	require.NoError(t, runSettingsProvider(cmd, []string{"Anthropic"}))

	ps := settings.settings.Providers[domain.AIProviderAnthropic]
	assert.Equal(t, "sk-flag-key-123", ps.APIKey)
	assert.Equal(t, "claude-3-5-haiku-latest", ps.Model)
	assert.Equal(t, domain.AIProviderAnthropic, settings.settings.Analysis.DefaultProvider)
	assert.Equal(t, []domain.AIProvider{domain.AIProviderAnthropic}, settings.validated)
	assert.Contains(t, out.String(), "Validating configuration... OK")
	assert.Contains(t, out.String(), "Provider configured: Anthropic (cloud) (claude-3-5-haiku-latest)")
}

func TestRunSettingsProvider_PromptsForKey(t *testing.T) {
	settings := newFakeSettings()
	installServices(t, Services{Settings: settings})
	setProviderFlags(t)
	providerSkipCheck = true
	cmd, out := newTestCommand("sk-typed-key-456\n")

	require.NoError(t, runSettingsProvider(cmd, []string{"openai"}))

	assert.Contains(t, out.String(), "Enter API key: ")
	assert.Equal(t, "sk-typed-key-456", settings.settings.Providers[domain.AIProviderOpenAI].APIKey)
	assert.Empty(t, settings.validated)
}

func TestRunSettingsProvider_EmptyKey(t *testing.T) {
	installServices(t, Services{Settings: newFakeSettings()})
	setProviderFlags(t)
	cmd, _ := newTestCommand("\n")

	err := runSettingsProvider(cmd, []string{"openai"})

	assert.EqualError(t, err, "API key is required for this provider")
}

func TestRunSettingsProvider_Menu(t *testing.T) {
	settings := newFakeSettings()
	installServices(t, Services{Settings: settings})
	setProviderFlags(t)
	providerBaseURL = "http://gpu-box:11434"
	cmd, out := newTestCommand("3\n")

	require.NoError(t, runSettingsProvider(cmd, nil))

	assert.Contains(t, out.String(), "Select AI Provider")
	assert.Equal(t, "http://gpu-box:11434", settings.settings.Providers[domain.AIProviderOllama].BaseURL)
	assert.Equal(t, []domain.AIProvider{domain.AIProviderOllama}, settings.validated)
}

func TestRunSettingsProvider_ValidationFails(t *testing.T) {
	errUnreachable := errors.New("connection refused")
	settings := newFakeSettings()
	settings.validateErr = errUnreachable
	installServices(t, Services{Settings: settings})
	setProviderFlags(t)
	cmd, out := newTestCommand("")

	err := runSettingsProvider(cmd, []string{"ollama"})

	assert.ErrorIs(t, err, errUnreachable)
	assert.Contains(t, out.String(), "FAILED: connection refused")
}

func TestRunSettingsProvider_Unknown(t *testing.T) {
	installServices(t, Services{Settings: newFakeSettings()})
	setProviderFlags(t)
	cmd, _ := newTestCommand("")

	err := runSettingsProvider(cmd, []string{"mystery"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunSettingsLanguage(t *testing.T) {
	settings := newFakeSettings()
	installServices(t, Services{Settings: settings, EnvOverrides: []string{envKeyLanguage}})
	cmd, out := newTestCommand("")

	require.NoError(t, runSettingsLanguage(cmd, []string{"German"}))

	assert.Equal(t, "German", settings.settings.Analysis.DefaultLanguage)
	assert.Contains(t, out.String(), "Default language set to: German")
	assert.Contains(t, out.String(), "SHEAF_LANGUAGE is set")
}

func TestRunSettingsType(t *testing.T) {
	settings := newFakeSettings()
	installServices(t, Services{Settings: settings})
	cmd, out := newTestCommand("")

	require.NoError(t, runSettingsType(cmd, []string{" Summary "}))
	assert.Equal(t, domain.AnalysisSummary, settings.settings.Analysis.DefaultType)
	assert.Contains(t, out.String(), "Default analysis type set to:")

	err := runSettingsType(cmd, []string{"poetry"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRunSettingsVault(t *testing.T) {
	settings := newFakeSettings()
	installServices(t, Services{Settings: settings})
	dir := t.TempDir()
	cmd, out := newTestCommand("")

	require.NoError(t, runSettingsVault(cmd, []string{dir}))

	assert.Equal(t, dir, settings.settings.Vault.Path)
	assert.Contains(t, out.String(), "Vault set to: "+dir)
	assert.NotContains(t, out.String(), "SHEAF_VAULT")
}

func TestRunSettingsVault_Invalid(t *testing.T) {
	settings := newFakeSettings()
	installServices(t, Services{Settings: settings})
	dir := t.TempDir()
	file := filepath.Join(dir, "note.md")
	require.NoError(t, os.WriteFile(file, []byte("# note"), 0o600))
	cmd, _ := newTestCommand("")

	assert.ErrorIs(t, runSettingsVault(cmd, []string{file}), domain.ErrInvalidInput)
	assert.Error(t, runSettingsVault(cmd, []string{filepath.Join(dir, "missing")}))
	assert.Empty(t, settings.settings.Vault.Path)
}

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}
