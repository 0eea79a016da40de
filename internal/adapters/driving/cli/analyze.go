package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driving"
	"github.com/custodia-labs/sheaf/internal/logger"
)

// textSeparator splits a --text value into title and content.
const textSeparator = "::"

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyse notes, web pages and text in one shot",
	Long: `Collect sources into a session and submit them for analysis.

Sources are added in this order: notes, URLs, texts, then stdin. Text
piped on stdin is added as a selection automatically.

Examples:
  sheaf analyze --note "Meeting" --note work/plan.md --type comparison
  sheaf analyze --url https://example.com/post --text "My view::I disagree because..."
  pbpaste | sheaf analyze --prompt "List the open questions"
  sheaf analyze --note Inbox --dry-run`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

var (
	analyzeNotes      []string
	analyzeURLs       []string
	analyzeTexts      []string
	analyzeStdin      bool
	analyzeStdinTitle string
	analyzeType       string
	analyzePrompt     string
	analyzeProvider   string
	analyzeLanguage   string
	analyzeDryRun     bool
	analyzeJSON       bool
)

func init() {
	flags := analyzeCmd.Flags()
	flags.StringArrayVarP(&analyzeNotes, "note", "n", nil, "vault note by path or name (repeatable)")
	flags.StringArrayVarP(&analyzeURLs, "url", "u", nil, "web page to clip (repeatable)")
	flags.StringArrayVarP(&analyzeTexts, "text", "t", nil, `typed text as "Title::content" (repeatable)`)
	flags.BoolVar(&analyzeStdin, "stdin", false, "read a selection from stdin even when it is a terminal")
	flags.StringVar(&analyzeStdinTitle, "stdin-title", "Selection", "title for the stdin selection")
	flags.StringVar(&analyzeType, "type", "", "analysis type: synthesis, comparison, summary or custom")
	flags.StringVarP(&analyzePrompt, "prompt", "p", "", "custom instruction for the analysis")
	flags.StringVar(&analyzeProvider, "provider", "", "AI provider: anthropic, openai or ollama")
	flags.StringVar(&analyzeLanguage, "language", "", "language of the response")
	flags.BoolVar(&analyzeDryRun, "dry-run", false, "print the request without submitting it")
	flags.BoolVar(&analyzeJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if sessionFactory == nil {
		return errors.New("session service not configured")
	}

	session, err := sessionFactory.NewSession()
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	// No-op once submitted.
	defer session.Cancel()

	if err := applyAnalyzeOptions(session); err != nil {
		return err
	}
	if err := collectSources(cmd, session); err != nil {
		return err
	}
	if session.Stats().IsEmpty() {
		return fmt.Errorf("%w: add sources with --note, --url, --text or stdin", domain.ErrEmptySourceSet)
	}

	if analyzeDryRun {
		req, err := session.Build()
		if err != nil {
			return err
		}
		return printRequest(cmd.OutOrStdout(), req)
	}

	stop := logger.Timed("analysis")
	result, err := session.Submit(cmd.Context())
	stop()
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		return writeJSON(cmd.OutOrStdout(), newResultView(result))
	}
	printResult(cmd.OutOrStdout(), result)
	return nil
}

func applyAnalyzeOptions(session driving.SessionService) error {
	options := []struct {
		field string
		value string
	}{
		{domain.OptionAnalysisType, analyzeType},
		{domain.OptionCustomPrompt, analyzePrompt},
		{domain.OptionProvider, analyzeProvider},
		{domain.OptionLanguage, analyzeLanguage},
	}
	for _, opt := range options {
		if strings.TrimSpace(opt.value) == "" {
			continue
		}
		if err := session.SetOption(opt.field, opt.value); err != nil {
			return err
		}
	}
	return nil
}

func collectSources(cmd *cobra.Command, session driving.SessionService) error {
	ctx := cmd.Context()

	for _, note := range analyzeNotes {
		if _, err := session.AddNote(ctx, note); err != nil {
			return fmt.Errorf("failed to add note: %w", err)
		}
	}

	for _, rawURL := range analyzeURLs {
		if _, err := session.ClipURL(ctx, rawURL); err != nil {
			return fmt.Errorf("failed to clip %s: %w", rawURL, err)
		}
	}

	for _, arg := range analyzeTexts {
		title, content, err := parseTextArg(arg)
		if err != nil {
			return err
		}
		if _, err := session.AddManualInput(title, content); err != nil {
			return fmt.Errorf("failed to add text %q: %w", title, err)
		}
	}

	selection, err := readSelection(cmd.InOrStdin(), analyzeStdin)
	if err != nil {
		return err
	}
	if strings.TrimSpace(selection) != "" {
		if _, err := session.AddSelection(analyzeStdinTitle, selection); err != nil {
			return fmt.Errorf("failed to add stdin selection: %w", err)
		}
	}

	return nil
}

// parseTextArg splits "Title::content".
func parseTextArg(arg string) (title, content string, err error) {
	title, content, ok := strings.Cut(arg, textSeparator)
	if !ok {
		return "", "", fmt.Errorf("%w: --text expects \"Title%scontent\", got %q",
			domain.ErrInvalidInput, textSeparator, arg)
	}
	return strings.TrimSpace(title), content, nil
}

// readSelection reads in unless it is an interactive terminal.
// force reads regardless.
func readSelection(in io.Reader, force bool) (string, error) {
	if f, ok := in.(*os.File); ok && !force && isTerminal(f) {
		return "", nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func printRequest(w io.Writer, req *domain.AnalysisRequest) error {
	if analyzeJSON {
		return writeJSON(w, newRequestView(req))
	}

	prompt := req.CustomPrompt
	if strings.TrimSpace(prompt) == "" {
		prompt = "(default)"
	}

	fmt.Fprintln(w, "Analysis request (not submitted)")
	fmt.Fprintf(w, "  Type:     %s\n", req.AnalysisType.Description())
	fmt.Fprintf(w, "  Provider: %s\n", req.Provider.Description())
	fmt.Fprintf(w, "  Language: %s\n", req.Language)
	fmt.Fprintf(w, "  Format:   %s\n", req.OutputFormat)
	fmt.Fprintf(w, "  Prompt:   %s\n", prompt)
	fmt.Fprintln(w)

	rows := make([][]string, len(req.Sources))
	for i := range req.Sources {
		rec := &req.Sources[i]
		rows[i] = []string{
			domain.SourceLabel(i),
			rec.Type.Description(),
			rec.Title,
			rec.Provenance(),
			strconv.Itoa(rec.Metadata.CharCount),
			strconv.Itoa(rec.Metadata.WordCount),
		}
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Label", "Type", "Title", "From", "Chars", "Words"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	))

	stats := domain.ComputeStats(req.Sources)
	fmt.Fprintf(w, "%d sources, %d characters, %d words, ~%d tokens\n",
		stats.TotalSources, stats.TotalChars, stats.TotalWords, stats.EstimatedTokens)
	return nil
}

func printResult(w io.Writer, result *domain.AnalysisResult) {
	fmt.Fprintln(w, result.Content)
	fmt.Fprintln(w)
	printReferences(w, result.Sources)
	fmt.Fprintf(w, "\n%s (%s), %d input / %d output tokens, id %s\n",
		result.Provider.Description(), result.Model,
		result.Usage.InputTokens, result.Usage.OutputTokens, result.ID)
}
