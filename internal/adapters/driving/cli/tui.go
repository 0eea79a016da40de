package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for Sheaf.

The TUI holds one working session: add vault notes, web pages, typed text
and selections, pick the analysis options, and submit. Past results are
available under History.

Session controls:
  n        - Add a vault note
  t / s    - Add typed text / a selection
  u        - Clip a web page
  d        - Remove the selected source
  a / p    - Cycle analysis type / provider
  l / c    - Set language / custom prompt
  ctrl+s   - Submit for analysis
  R        - Reset the session
  Esc      - Back / Cancel
  q        - Quit (from the menu)`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// newTUIPorts builds the TUI ports from the installed services.
func newTUIPorts() (*tui.Ports, error) {
	if sessionFactory == nil {
		return nil, errors.New("session service not configured")
	}
	return &tui.Ports{
		Sessions: sessionFactory,
		Settings: settingsService,
		History:  historyService,
	}, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports, err := newTUIPorts()
	if err != nil {
		return err
	}

	// Create the TUI app
	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// The TUI is long-running; keep the note listing fresh while it is up.
	stop := startWatcher(cmd.Context())
	defer stop()

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
