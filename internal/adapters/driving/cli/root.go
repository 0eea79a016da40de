// Package cli implements the sheaf command line interface on top of cobra.
//
// Commands reach the core through package-level driving ports set once by
// the composition root with SetServices.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sheaf/internal/core/ports/driving"
	"github.com/custodia-labs/sheaf/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// verbose enables debug logging for every command.
var verbose bool

// Driving ports used by the commands.
var (
	settingsService driving.SettingsService
	sessionFactory  driving.SessionFactory
	historyService  driving.HistoryService

	// vaultWatcher keeps the note listing fresh for long-running commands.
	vaultWatcher Watcher

	// envOverrides lists config keys currently supplied by the environment.
	envOverrides map[string]bool
)

// Services holds the driving ports the commands use.
// Any field may be nil; commands that need a missing port fail with an error.
type Services struct {
	Settings driving.SettingsService
	Sessions driving.SessionFactory
	History  driving.HistoryService

	// VaultWatcher is started by the tui and mcp commands. Optional.
	VaultWatcher Watcher

	// EnvOverrides lists config keys whose values come from the environment.
	EnvOverrides []string
}

// Watcher watches a resource in the background until closed.
type Watcher interface {
	Watch(ctx context.Context) error
	Close() error
}

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "sheaf",
	Short: "Gather sources and send them for AI analysis",
	Long: `Sheaf collects web clippings, notes, selections and typed text into one
working set and sends them to an AI provider for synthesis, comparison
or summary.

Run 'sheaf analyze --help' for one-shot analysis, or 'sheaf tui' for the
interactive session view.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices installs the driving ports.
func SetServices(s Services) {
	settingsService = s.Settings
	sessionFactory = s.Sessions
	historyService = s.History
	vaultWatcher = s.VaultWatcher

	envOverrides = make(map[string]bool, len(s.EnvOverrides))
	for _, key := range s.EnvOverrides {
		envOverrides[key] = true
	}
}

// startWatcher starts the vault watcher if one is configured and returns
// a function that stops it. Watch failures are logged, not returned.
func startWatcher(ctx context.Context) func() {
	if vaultWatcher == nil {
		return func() {}
	}
	if err := vaultWatcher.Watch(ctx); err != nil {
		logger.Warn("Vault watcher not started: %v", err)
		return func() {}
	}
	return func() {
		if err := vaultWatcher.Close(); err != nil {
			logger.Warn("Vault watcher stop error: %v", err)
		}
	}
}

// SetVersion sets the version reported by 'sheaf version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Commands see ctx through cmd.Context().
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
