package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driving"
	"github.com/custodia-labs/sheaf/internal/core/services"
)

var errBackendDown = errors.New("backend down")

// stubSettings serves fixed settings to the session manager.
type stubSettings struct {
	settings domain.AppSettings
}

func (s *stubSettings) Get() (*domain.AppSettings, error) {
	out := s.settings
	return &out, nil
}

// stubBackend records the last request and echoes its titles.
type stubBackend struct {
	mu   sync.Mutex
	last *domain.AnalysisRequest
	err  error
}

func (b *stubBackend) IsProviderConfigured(_ domain.AIProvider) bool { return true }

func (b *stubBackend) Submit(_ context.Context, req *domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = req
	if b.err != nil {
		return nil, b.err
	}
	titles := make([]string, len(req.Sources))
	for i := range req.Sources {
		titles[i] = req.Sources[i].Title
	}
	return &domain.AnalysisResult{
		ID:           "result-1",
		Provider:     req.Provider,
		Model:        "test-model",
		AnalysisType: req.AnalysisType,
		Content:      "analysis of " + strings.Join(titles, ", "),
		Sources:      domain.ReferencesFor(req.Sources),
		Usage:        domain.TokenUsage{InputTokens: 10, OutputTokens: 5},
		CreatedAt:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}, nil
}

// stubNotes serves a fixed vault.
type stubNotes struct {
	notes map[string]string
}

func (n *stubNotes) ReadNote(_ context.Context, identifier string) (*domain.Note, error) {
	content, ok := n.notes[identifier]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Note{Identifier: identifier, Path: identifier, Content: content}, nil
}

func (n *stubNotes) ListNotes(_ context.Context) ([]domain.NoteRef, error) {
	refs := make([]domain.NoteRef, 0, len(n.notes))
	for _, path := range []string{"Inbox.md", "work/Meeting.md", "work/Plan.md"} {
		if _, ok := n.notes[path]; ok {
			refs = append(refs, domain.NoteRef{Path: path, Name: strings.TrimSuffix(path, ".md")})
		}
	}
	return refs, nil
}

func testVault() *stubNotes {
	return &stubNotes{notes: map[string]string{
		"Inbox.md":        "Buy milk and call the bank.",
		"work/Meeting.md": "Agreed to ship on Friday.",
		"work/Plan.md":    "Ship the beta, then collect feedback.",
	}}
}

// installServices sets the package ports for one test and restores them after.
func installServices(t *testing.T, s Services) {
	t.Helper()
	prevSettings, prevSessions, prevHistory := settingsService, sessionFactory, historyService
	prevWatcher, prevEnv := vaultWatcher, envOverrides
	SetServices(s)
	t.Cleanup(func() {
		settingsService, sessionFactory, historyService = prevSettings, prevSessions, prevHistory
		vaultWatcher, envOverrides = prevWatcher, prevEnv
	})
}

// newSessionManager wires a session manager over the stubs.
// notes may be nil.
func newSessionManager(backend *stubBackend, notes *stubNotes) driving.SessionFactory {
	settings := domain.DefaultAppSettings()
	settings.Analysis.DefaultProvider = domain.AIProviderOllama
	if notes == nil {
		return services.NewSessionManager(&stubSettings{settings: settings}, backend, nil, nil, nil)
	}
	return services.NewSessionManager(&stubSettings{settings: settings}, backend, notes, nil, nil)
}

// newTestCommand returns a bare command carrying a context and captured
// output, for calling run functions directly.
func newTestCommand(stdin string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetContext(context.Background())
	return cmd, out
}
