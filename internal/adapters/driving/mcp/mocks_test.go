package mcp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/services"
)

// mockSettings serves fixed settings.
type mockSettings struct {
	settings domain.AppSettings
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

// mockBackend echoes the request back as a result.
type mockBackend struct {
	mu         sync.Mutex
	configured bool
	err        error
	requests   []*domain.AnalysisRequest
}

func (m *mockBackend) IsProviderConfigured(_ domain.AIProvider) bool {
	return m.configured
}

func (m *mockBackend) Submit(_ context.Context, req *domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.AnalysisResult{
		ID:           "result-1",
		Provider:     req.Provider,
		Model:        "mock-model",
		AnalysisType: req.AnalysisType,
		Content:      "analysis of " + req.Sources[0].Title,
		Sources:      domain.ReferencesFor(req.Sources),
		Usage:        domain.TokenUsage{InputTokens: 10, OutputTokens: 5},
		CreatedAt:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}, nil
}

// mockNoteReader serves notes keyed by path.
type mockNoteReader struct {
	notes map[string]domain.Note
	err   error
}

func (m *mockNoteReader) ReadNote(_ context.Context, identifier string) (*domain.Note, error) {
	note, ok := m.notes[identifier]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &note, nil
}

func (m *mockNoteReader) ListNotes(_ context.Context) ([]domain.NoteRef, error) {
	if m.err != nil {
		return nil, m.err
	}
	refs := []domain.NoteRef{}
	for _, path := range []string{"Inbox.md", "work/Meeting.md", "work/Plan.md"} {
		if _, ok := m.notes[path]; ok {
			refs = append(refs, domain.NoteRef{Path: path, Name: strings.TrimSuffix(path, ".md")})
		}
	}
	return refs, nil
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	results []domain.AnalysisResult
	err     error
}

func (m *mockHistoryService) List(_ context.Context, _ domain.HistoryFilter) ([]domain.AnalysisResult, error) {
	return m.results, m.err
}

func (m *mockHistoryService) Get(_ context.Context, id string) (*domain.AnalysisResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.results {
		if m.results[i].ID == id {
			return &m.results[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockHistoryService) Delete(_ context.Context, _ string) error {
	return m.err
}

func testNotes() *mockNoteReader {
	return &mockNoteReader{notes: map[string]domain.Note{
		"Inbox.md":        {Path: "Inbox.md", Content: "quick capture"},
		"work/Meeting.md": {Path: "work/Meeting.md", Content: "agenda items", Tags: []string{"#work"}},
		"work/Plan.md":    {Path: "work/Plan.md", Content: "the plan"},
	}}
}

// newTestServer wires a server to a real session manager over mocks.
func newTestServer(backend *mockBackend, history *mockHistoryService) *Server {
	settings := &mockSettings{settings: domain.DefaultAppSettings()}
	ports := &Ports{
		Sessions: services.NewSessionManager(settings, backend, testNotes(), nil, nil),
	}
	if history != nil {
		ports.History = history
	}
	server, err := NewServer(ports)
	if err != nil {
		panic(err)
	}
	return server
}

var errBackendDown = errors.New("backend down")
