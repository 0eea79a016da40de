// Command sheaf gathers notes, web clippings, selections and typed text
// into one working set and sends them to an AI provider for analysis.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/sheaf/internal/adapters/driven/ai"
	"github.com/custodia-labs/sheaf/internal/adapters/driven/clipper/web"
	"github.com/custodia-labs/sheaf/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sheaf/internal/adapters/driven/notes/vault"
	"github.com/custodia-labs/sheaf/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sheaf/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sheaf/internal/adapters/driving/cli"
	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
	"github.com/custodia-labs/sheaf/internal/core/services"
	"github.com/custodia-labs/sheaf/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// envMapping maps environment variables onto config keys.
var envMapping = map[string]string{
	"ANTHROPIC_API_KEY": services.ProviderConfigKey(domain.AIProviderAnthropic, "api_key"),
	"OPENAI_API_KEY":    services.ProviderConfigKey(domain.AIProviderOpenAI, "api_key"),
	"OLLAMA_HOST":       services.ProviderConfigKey(domain.AIProviderOllama, "base_url"),
	"SHEAF_VAULT":       "vault.path",
	"SHEAF_LANGUAGE":    "analysis.default_language",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	baseDir := filepath.Join(home, ".sheaf")

	// .env in the working directory first, then the one beside config.toml.
	configStore, err := file.NewConfigStore(baseDir,
		file.WithEnvOverlay(envMapping, ".env", filepath.Join(baseDir, ".env")))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return 1
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read settings: %v\n", err)
		return 1
	}

	backendOpts := []ai.BackendOption{}
	if prompts, err := file.NewPromptStore(filepath.Join(baseDir, "prompts")); err == nil {
		backendOpts = append(backendOpts, ai.WithPromptStore(prompts))
	} else {
		logger.Warn("Using built-in prompts: %v", err)
	}
	backend := ai.NewBackend(settingsService, backendOpts...)

	clipper := web.NewClipper(web.Config{
		Timeout:           settings.Clipper.Timeout,
		RequestsPerSecond: settings.Clipper.RequestsPerSecond,
		UserAgent:         settings.Clipper.UserAgent,
	})

	results, closeResults := openResultStore(filepath.Join(baseDir, "data"))
	defer closeResults()

	svc := cli.Services{
		Settings:     settingsService,
		History:      services.NewHistoryService(results),
		EnvOverrides: configStore.Overridden(),
	}

	// Notes are optional; without a vault the note commands report it.
	var notes driven.NoteReader
	if settings.Vault.Path != "" {
		reader, err := vault.NewReader(settings.Vault.Path)
		if err != nil {
			logger.Warn("Vault unavailable: %v", err)
		} else {
			index := vault.NewIndex(reader)
			notes = index
			svc.VaultWatcher = index
		}
	}
	svc.Sessions = services.NewSessionManager(settingsService, backend, notes, clipper, results)

	cli.SetServices(svc)
	cli.SetVersion(version)

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// openResultStore opens the SQLite history. If it cannot be opened the
// session still works and results are kept in memory for this run only.
func openResultStore(dataDir string) (driven.ResultStore, func()) {
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		logger.Warn("History database unavailable, results will not be kept: %v", err)
		return memory.NewResultStore(), func() {}
	}
	return store.ResultStore(), func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close history database: %v", err)
		}
	}
}
