package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

// Config keys that may be supplied by the environment.
const (
	envKeyVault    = "vault.path"
	envKeyLanguage = "analysis.default_language"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, analysis defaults and the notes vault.

Values supplied by environment variables (ANTHROPIC_API_KEY, OPENAI_API_KEY,
OLLAMA_HOST, SHEAF_VAULT, SHEAF_LANGUAGE) override the config file and are
marked "(env)".`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsProviderCmd = &cobra.Command{
	Use:   "provider [name]",
	Short: "Configure an AI provider",
	Long: `Configure one AI provider's model, endpoint and API key, then check it
responds.

Without a name, choose the provider from a menu. Cloud providers prompt for
the API key without echo unless --api-key is given or a key is already set.

Available providers:
  anthropic - Anthropic (cloud, API key required)
  openai    - OpenAI (cloud, API key required)
  ollama    - Ollama (local, no API key)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsProvider,
}

var settingsLanguageCmd = &cobra.Command{
	Use:   "language [language]",
	Short: "Set the default response language",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsLanguage,
}

var settingsTypeCmd = &cobra.Command{
	Use:   "type [analysis-type]",
	Short: "Set the default analysis type",
	Long: `Set the analysis type new sessions start with.

Available types: synthesis, comparison, summary, custom.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsType,
}

var settingsVaultCmd = &cobra.Command{
	Use:   "vault [path]",
	Short: "Set the notes vault directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsVault,
}

var (
	providerModel       string
	providerBaseURL     string
	providerAPIKey      string
	providerMakeDefault bool
	providerSkipCheck   bool
)

func init() {
	settingsProviderCmd.Flags().StringVar(&providerModel, "model", "", "chat model name")
	settingsProviderCmd.Flags().StringVar(&providerBaseURL, "base-url", "", "API endpoint")
	settingsProviderCmd.Flags().StringVar(&providerAPIKey, "api-key", "", "API key (prompted when omitted)")
	settingsProviderCmd.Flags().BoolVar(&providerMakeDefault, "default", false, "use this provider for new sessions")
	settingsProviderCmd.Flags().BoolVar(&providerSkipCheck, "no-validate", false, "skip the connection check")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsProviderCmd)
	settingsCmd.AddCommand(settingsLanguageCmd)
	settingsCmd.AddCommand(settingsTypeCmd)
	settingsCmd.AddCommand(settingsVaultCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Analysis]")
	cmd.Printf("  Default provider: %s\n", settings.Analysis.DefaultProvider.Description())
	cmd.Printf("  Default type: %s\n", settings.Analysis.DefaultType.Description())
	cmd.Printf("  Language: %s%s\n", settings.Analysis.DefaultLanguage, envMark(envKeyLanguage))
	cmd.Printf("  Max tokens: %d\n", settings.Analysis.MaxTokens)
	cmd.Println()

	for _, p := range domain.AllProviders() {
		ps := settings.Provider(p)
		cmd.Printf("[%s]\n", p.Description())
		cmd.Printf("  Model: %s\n", ps.Model)
		if p.IsLocal() || ps.BaseURL != "" {
			cmd.Printf("  Base URL: %s%s\n", ps.BaseURL, envMark(providerKey(p, "base_url")))
		}
		if p.RequiresAPIKey() {
			if ps.APIKey != "" {
				cmd.Printf("  API Key: %s%s\n", maskAPIKey(ps.APIKey), envMark(providerKey(p, "api_key")))
			} else {
				cmd.Printf("  API Key: (not set)\n")
			}
		}
		status := "configured"
		if !ps.IsConfigured() {
			status = "not configured"
		}
		cmd.Printf("  Status: %s\n", status)
		cmd.Println()
	}

	cmd.Println("[Vault]")
	if settings.Vault.Path != "" {
		cmd.Printf("  Path: %s%s\n", settings.Vault.Path, envMark(envKeyVault))
	} else {
		cmd.Println("  Path: (not set)")
	}
	cmd.Println()

	cmd.Println("[Clipper]")
	cmd.Printf("  Timeout: %s\n", settings.Clipper.Timeout)
	cmd.Printf("  Requests per second: %g\n", settings.Clipper.RequestsPerSecond)
	cmd.Printf("  User agent: %s\n", settings.Clipper.UserAgent)
	cmd.Println()

	if !settings.IsProviderConfigured(settings.Analysis.DefaultProvider) {
		cmd.Printf("Warning: default provider %s is not configured.\n", settings.Analysis.DefaultProvider)
		cmd.Printf("Run 'sheaf settings provider %s' to fix.\n", settings.Analysis.DefaultProvider)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsProvider(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	var provider domain.AIProvider
	if len(args) == 1 {
		provider = domain.AIProvider(strings.ToLower(strings.TrimSpace(args[0])))
		if !provider.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, args[0])
		}
	} else {
		cmd.Println("Select AI Provider")
		providers := domain.AllProviders()
		for i, p := range providers {
			cmd.Printf("  %d. %s\n", i+1, p.Description())
		}
		cmd.Print("\nEnter choice [1]: ")
		idx := parseChoice(readLine(reader), len(providers), 1)
		provider = providers[idx-1]
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	current := settings.Provider(provider)

	apiKey := providerAPIKey
	if provider.RequiresAPIKey() && apiKey == "" && current.APIKey == "" {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetProvider(provider, providerModel, providerBaseURL, apiKey); err != nil {
		return fmt.Errorf("failed to configure provider: %w", err)
	}
	if providerMakeDefault {
		if err := settingsService.SetDefaultProvider(provider); err != nil {
			return fmt.Errorf("failed to set default provider: %w", err)
		}
	}

	if !providerSkipCheck {
		cmd.Print("Validating configuration... ")
		if err := settingsService.ValidateProvider(provider); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("provider configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	model := providerModel
	if model == "" {
		model = current.Model
	}
	cmd.Printf("Provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func runSettingsLanguage(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.SetDefaultLanguage(args[0]); err != nil {
		return fmt.Errorf("failed to set language: %w", err)
	}
	cmd.Printf("Default language set to: %s\n", strings.TrimSpace(args[0]))
	if envOverrides[envKeyLanguage] {
		cmd.Println("Note: SHEAF_LANGUAGE is set and takes precedence.")
	}
	return nil
}

func runSettingsType(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	at := domain.AnalysisType(strings.ToLower(strings.TrimSpace(args[0])))
	if err := settingsService.SetDefaultAnalysisType(at); err != nil {
		return fmt.Errorf("failed to set analysis type: %w", err)
	}
	cmd.Printf("Default analysis type set to: %s\n", at.Description())
	return nil
}

func runSettingsVault(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	path := strings.TrimSpace(args[0])
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, path)
	}

	if err := settingsService.SetVaultPath(path); err != nil {
		return fmt.Errorf("failed to set vault: %w", err)
	}
	cmd.Printf("Vault set to: %s\n", path)
	if envOverrides[envKeyVault] {
		cmd.Println("Note: SHEAF_VAULT is set and takes precedence.")
	}
	return nil
}

// Helper functions.

func providerKey(p domain.AIProvider, field string) string {
	return "providers." + p.String() + "." + field
}

func envMark(key string) string {
	if envOverrides[key] {
		return " (env)"
	}
	return ""
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal, otherwise one line.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
