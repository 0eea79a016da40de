package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past analyses",
	Long:  `List, show and delete archived analysis results.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past analyses, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one analysis",
	Long:  `Show one analysis by ID. A unique ID prefix of at least four characters is accepted.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete one analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var (
	historyProvider string
	historyType     string
	historySince    string
	historyLimit    int
	historyJSON     bool
)

func init() {
	historyListCmd.Flags().StringVar(&historyProvider, "provider", "", "only results from this provider")
	historyListCmd.Flags().StringVar(&historyType, "type", "", "only results of this analysis type")
	historyListCmd.Flags().StringVar(&historySince, "since", "", "only results newer than a duration (24h) or date (2006-01-02)")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of results (0 for all)")
	historyListCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	filter, err := historyFilter(time.Now())
	if err != nil {
		return err
	}

	results, err := historyService.List(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	out := cmd.OutOrStdout()
	if historyJSON {
		views := make([]resultView, len(results))
		for i := range results {
			views[i] = newResultView(&results[i])
		}
		return writeJSON(out, views)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No analyses found.")
		return nil
	}

	rows := make([][]string, len(results))
	for i := range results {
		r := &results[i]
		rows[i] = []string{
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.AnalysisType.String(),
			r.Provider.String(),
			strconv.Itoa(len(r.Sources)),
			strconv.Itoa(r.Usage.Total()),
		}
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Created", "Type", "Provider", "Sources", "Tokens"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	result, err := historyService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get analysis: %w", err)
	}

	out := cmd.OutOrStdout()
	if historyJSON {
		return writeJSON(out, newResultView(result))
	}

	fmt.Fprintf(out, "ID:       %s\n", result.ID)
	fmt.Fprintf(out, "Created:  %s\n", result.CreatedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(out, "Type:     %s\n", result.AnalysisType.Description())
	fmt.Fprintf(out, "Provider: %s (%s)\n", result.Provider.Description(), result.Model)
	fmt.Fprintf(out, "Tokens:   %d input / %d output\n", result.Usage.InputTokens, result.Usage.OutputTokens)
	fmt.Fprintln(out)
	fmt.Fprintln(out, result.Content)
	fmt.Fprintln(out)
	printReferences(out, result.Sources)
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	if err := historyService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	cmd.Printf("Deleted analysis %s\n", args[0])
	return nil
}

// historyFilter builds the list filter from flags. now anchors --since durations.
func historyFilter(now time.Time) (domain.HistoryFilter, error) {
	filter := domain.HistoryFilter{Limit: historyLimit}

	if historyProvider != "" {
		p := domain.AIProvider(strings.TrimSpace(historyProvider))
		if !p.IsValid() {
			return filter, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, historyProvider)
		}
		filter.Provider = p
	}
	if historyType != "" {
		at := domain.AnalysisType(strings.TrimSpace(historyType))
		if !at.IsValid() {
			return filter, fmt.Errorf("%w: unknown analysis type %q", domain.ErrInvalidInput, historyType)
		}
		filter.AnalysisType = at
	}
	if historySince != "" {
		since, err := parseSince(historySince, now)
		if err != nil {
			return filter, err
		}
		filter.Since = since
	}
	if filter.Limit < 0 {
		filter.Limit = 0
	}
	return filter, nil
}

// parseSince accepts a Go duration ("36h") or a local date ("2024-06-01").
func parseSince(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return now.Add(-d), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: --since expects a duration like 24h or a date like 2006-01-02, got %q",
		domain.ErrInvalidInput, value)
}
