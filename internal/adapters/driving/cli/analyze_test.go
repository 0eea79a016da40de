package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

// setAnalyzeFlags resets the analyze flag variables for one test.
func setAnalyzeFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		analyzeNotes, analyzeURLs, analyzeTexts = nil, nil, nil
		analyzeStdin = false
		analyzeStdinTitle = "Selection"
		analyzeType, analyzePrompt, analyzeProvider, analyzeLanguage = "", "", "", ""
		analyzeDryRun, analyzeJSON = false, false
	}
	reset()
	t.Cleanup(reset)
}

func TestAnalyzeCmd_Registered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"analyze"})
	require.NoError(t, err)
	assert.Equal(t, "analyze", cmd.Name())

	for _, name := range []string{"note", "url", "text", "stdin", "type", "prompt", "provider", "language", "dry-run", "json"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestRunAnalyze_NoSessionService(t *testing.T) {
	installServices(t, Services{})
	setAnalyzeFlags(t)
	cmd, _ := newTestCommand("")

	err := runAnalyze(cmd, nil)

	assert.EqualError(t, err, "session service not configured")
}

func TestRunAnalyze_NotesAndText(t *testing.T) {
	backend := &stubBackend{}
	installServices(t, Services{Sessions: newSessionManager(backend, testVault())})
	setAnalyzeFlags(t)
	analyzeNotes = []string{"work/Plan.md"}
	analyzeTexts = []string{"Idea::one two three"}
	cmd, out := newTestCommand("")

	require.NoError(t, runAnalyze(cmd, nil))

	require.NotNil(t, backend.last)
	require.Len(t, backend.last.Sources, 2)
	assert.Equal(t, domain.SourceTypeNote, backend.last.Sources[0].Type)
	assert.Equal(t, domain.SourceTypeManualInput, backend.last.Sources[1].Type)
	assert.Equal(t, domain.AIProviderOllama, backend.last.Provider)

	output := out.String()
	assert.Contains(t, output, "analysis of Plan, Idea")
	assert.Contains(t, output, "[S1] Plan (work/Plan.md)")
	assert.Contains(t, output, "[S2] Idea")
	assert.Contains(t, output, "10 input / 5 output tokens, id result-1")
}

func TestRunAnalyze_StdinSelection(t *testing.T) {
	backend := &stubBackend{}
	installServices(t, Services{Sessions: newSessionManager(backend, nil)})
	setAnalyzeFlags(t)
	analyzeStdinTitle = "Clipboard"
	cmd, _ := newTestCommand("a highlighted passage\n")

	require.NoError(t, runAnalyze(cmd, nil))

	require.Len(t, backend.last.Sources, 1)
	assert.Equal(t, domain.SourceTypeSelection, backend.last.Sources[0].Type)
	assert.Equal(t, "Clipboard", backend.last.Sources[0].Title)
	assert.Equal(t, "a highlighted passage", backend.last.Sources[0].Content)
}

func TestRunAnalyze_Options(t *testing.T) {
	backend := &stubBackend{}
	installServices(t, Services{Sessions: newSessionManager(backend, nil)})
	setAnalyzeFlags(t)
	analyzeTexts = []string{"A::first view", "B::second view"}
	analyzeType = "comparison"
	analyzeProvider = "openai"
	analyzeLanguage = "French"
	analyzePrompt = "Focus on risks"
	cmd, _ := newTestCommand("")

	require.NoError(t, runAnalyze(cmd, nil))

	req := backend.last
	require.NotNil(t, req)
	assert.Equal(t, domain.AnalysisComparison, req.AnalysisType)
	assert.Equal(t, domain.AIProviderOpenAI, req.Provider)
	assert.Equal(t, "French", req.Language)
	assert.Equal(t, "Focus on risks", req.CustomPrompt)
}

func TestRunAnalyze_InvalidOption(t *testing.T) {
	installServices(t, Services{Sessions: newSessionManager(&stubBackend{}, nil)})
	setAnalyzeFlags(t)
	analyzeTexts = []string{"A::text"}
	analyzeType = "poetry"
	cmd, _ := newTestCommand("")

	err := runAnalyze(cmd, nil)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRunAnalyze_EmptySourceSet(t *testing.T) {
	backend := &stubBackend{}
	installServices(t, Services{Sessions: newSessionManager(backend, nil)})
	setAnalyzeFlags(t)
	cmd, _ := newTestCommand("   \n")

	err := runAnalyze(cmd, nil)

	assert.ErrorIs(t, err, domain.ErrEmptySourceSet)
	assert.Nil(t, backend.last)
}

func TestRunAnalyze_BadTextArg(t *testing.T) {
	installServices(t, Services{Sessions: newSessionManager(&stubBackend{}, nil)})
	setAnalyzeFlags(t)
	analyzeTexts = []string{"no separator here"}
	cmd, _ := newTestCommand("")

	err := runAnalyze(cmd, nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunAnalyze_MissingNote(t *testing.T) {
	backend := &stubBackend{}
	installServices(t, Services{Sessions: newSessionManager(backend, testVault())})
	setAnalyzeFlags(t)
	analyzeNotes = []string{"Nowhere.md"}
	cmd, _ := newTestCommand("")

	err := runAnalyze(cmd, nil)

	var unavailable *domain.SourceUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "Nowhere.md", unavailable.Identifier)
	assert.Nil(t, backend.last)
}

func TestRunAnalyze_DryRun(t *testing.T) {
	backend := &stubBackend{}
	installServices(t, Services{Sessions: newSessionManager(backend, testVault())})
	setAnalyzeFlags(t)
	analyzeNotes = []string{"Inbox.md"}
	analyzeTexts = []string{"Idea::one two three"}
	analyzeDryRun = true
	cmd, out := newTestCommand("")

	require.NoError(t, runAnalyze(cmd, nil))

	assert.Nil(t, backend.last, "dry run must not submit")
	output := out.String()
	assert.Contains(t, output, "Analysis request (not submitted)")
	assert.Contains(t, output, "Prompt:   (default)")
	assert.Contains(t, output, "Inbox")
	assert.Contains(t, output, "2 sources")
}

func TestRunAnalyze_DryRunJSON(t *testing.T) {
	installServices(t, Services{Sessions: newSessionManager(&stubBackend{}, nil)})
	setAnalyzeFlags(t)
	analyzeTexts = []string{"Idea::one two three"}
	analyzeDryRun = true
	analyzeJSON = true
	cmd, out := newTestCommand("")

	require.NoError(t, runAnalyze(cmd, nil))

	var view requestView
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, "synthesis", view.AnalysisType)
	require.Len(t, view.Sources, 1)
	assert.Equal(t, "S1", view.Sources[0].Label)
	assert.Equal(t, 3, view.Sources[0].Words)
	assert.Equal(t, 1, view.Stats.TotalSources)
}

func TestRunAnalyze_JSONResult(t *testing.T) {
	installServices(t, Services{Sessions: newSessionManager(&stubBackend{}, nil)})
	setAnalyzeFlags(t)
	analyzeTexts = []string{"Idea::one two three"}
	analyzeJSON = true
	cmd, out := newTestCommand("")

	require.NoError(t, runAnalyze(cmd, nil))

	var view resultView
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, "result-1", view.ID)
	assert.Equal(t, "analysis of Idea", view.Content)
	assert.Equal(t, 10, view.Usage.InputTokens)
	require.Len(t, view.Sources, 1)
	assert.Equal(t, "manual-input", view.Sources[0].Type)
}

func TestRunAnalyze_BackendFailure(t *testing.T) {
	installServices(t, Services{Sessions: newSessionManager(&stubBackend{err: errBackendDown}, nil)})
	setAnalyzeFlags(t)
	analyzeTexts = []string{"Idea::text"}
	cmd, _ := newTestCommand("")

	err := runAnalyze(cmd, nil)

	assert.ErrorIs(t, err, errBackendDown)
	assert.Contains(t, err.Error(), "analysis failed")
}

func TestParseTextArg(t *testing.T) {
	title, content, err := parseTextArg(" My view ::I disagree::strongly")
	require.NoError(t, err)
	assert.Equal(t, "My view", title)
	assert.Equal(t, "I disagree::strongly", content)

	_, _, err = parseTextArg("missing")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
