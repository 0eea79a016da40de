package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

var notesCmd = &cobra.Command{
	Use:   "notes [filter]",
	Short: "List notes in the vault",
	Long: `List the Markdown notes that can be added with 'sheaf analyze --note'.

An optional filter keeps notes whose path contains it, ignoring case.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNotes,
}

func init() {
	rootCmd.AddCommand(notesCmd)
}

func runNotes(cmd *cobra.Command, args []string) error {
	if sessionFactory == nil {
		return errors.New("session service not configured")
	}

	refs, err := sessionFactory.ListNotes(cmd.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotImplemented) {
			return fmt.Errorf("%w\nRun 'sheaf settings vault <path>' to set one", err)
		}
		return fmt.Errorf("failed to list notes: %w", err)
	}

	var filter string
	if len(args) > 0 {
		filter = args[0]
	}
	refs = domain.FilterNotes(refs, filter)

	out := cmd.OutOrStdout()
	if len(refs) == 0 {
		fmt.Fprintln(out, "No notes found.")
		return nil
	}
	for _, ref := range refs {
		fmt.Fprintln(out, ref.Path)
	}
	return nil
}
