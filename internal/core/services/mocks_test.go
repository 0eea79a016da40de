package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

// fixedTime is the admission time stamped by test extractors.
var fixedTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// newTestExtractor returns an extractor with sequential IDs and a fixed clock.
func newTestExtractor() *Extractor {
	var mu sync.Mutex
	n := 0
	return NewExtractor(
		WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("source-%d", n)
		}),
		WithClock(func() time.Time { return fixedTime }),
	)
}

// mockNoteReader serves notes from a map keyed by identifier.
type mockNoteReader struct {
	notes   map[string]domain.Note
	err     error
	release chan struct{}
}

func (m *mockNoteReader) ReadNote(ctx context.Context, identifier string) (*domain.Note, error) {
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	note, ok := m.notes[identifier]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &note, nil
}

func (m *mockNoteReader) ListNotes(_ context.Context) ([]domain.NoteRef, error) {
	refs := make([]domain.NoteRef, 0, len(m.notes))
	for _, n := range m.notes {
		refs = append(refs, domain.NoteRef{Path: n.Path, Name: NoteTitle(n.Path)})
	}
	return refs, nil
}

// mockClipper returns a fixed clip or error.
type mockClipper struct {
	clip *domain.WebClip
	err  error
	urls []string
}

func (m *mockClipper) Clip(_ context.Context, rawURL string) (*domain.WebClip, error) {
	m.urls = append(m.urls, rawURL)
	if m.err != nil {
		return nil, m.err
	}
	if m.clip == nil {
		return nil, nil
	}
	clip := *m.clip
	return &clip, nil
}

// mockBackend records submitted requests.
type mockBackend struct {
	mu         sync.Mutex
	configured map[domain.AIProvider]bool
	err        error
	requests   []*domain.AnalysisRequest
}

func newMockBackend(configured ...domain.AIProvider) *mockBackend {
	m := &mockBackend{configured: make(map[domain.AIProvider]bool)}
	for _, p := range configured {
		m.configured[p] = true
	}
	return m
}

func (m *mockBackend) IsProviderConfigured(provider domain.AIProvider) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configured[provider]
}

func (m *mockBackend) Submit(_ context.Context, req *domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.AnalysisResult{
		ID:           fmt.Sprintf("result-%d", len(m.requests)),
		Provider:     req.Provider,
		Model:        "test-model",
		AnalysisType: req.AnalysisType,
		Content:      "# Analysis",
		Sources:      domain.ReferencesFor(req.Sources),
		CreatedAt:    fixedTime,
	}, nil
}
