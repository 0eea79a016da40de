package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
	"github.com/custodia-labs/sheaf/internal/core/ports/driving"
)

// Ensure SessionManager implements the interface.
var _ driving.SessionFactory = (*SessionManager)(nil)

// settingsReader is the part of the settings service sessions need.
type settingsReader interface {
	Get() (*domain.AppSettings, error)
}

// SessionManager opens sessions wired to the shared adapters and
// preloaded with the configured analysis defaults. Sessions share
// adapters but no state.
type SessionManager struct {
	settings settingsReader
	backend  driven.AnalysisBackend
	notes    driven.NoteReader
	clipper  driven.WebClipper
	results  driven.ResultStore
}

// NewSessionManager creates a session manager. notes, clipper and
// results may be nil.
func NewSessionManager(
	settings settingsReader,
	backend driven.AnalysisBackend,
	notes driven.NoteReader,
	clipper driven.WebClipper,
	results driven.ResultStore,
) *SessionManager {
	return &SessionManager{
		settings: settings,
		backend:  backend,
		notes:    notes,
		clipper:  clipper,
		results:  results,
	}
}

// NewSession returns an empty session using the current settings.
func (m *SessionManager) NewSession() (driving.SessionService, error) {
	settings, err := m.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	defaults := domain.DefaultAnalysisOptions()
	defaults.AnalysisType = settings.Analysis.DefaultType
	defaults.Provider = settings.Analysis.DefaultProvider
	defaults.Language = settings.Analysis.DefaultLanguage

	return NewSession(m.backend, defaults,
		WithNoteReader(m.notes),
		WithWebClipper(m.clipper),
		WithResultStore(m.results),
	), nil
}

// ListNotes returns the notes that can be added to a session.
func (m *SessionManager) ListNotes(ctx context.Context) ([]domain.NoteRef, error) {
	if m.notes == nil {
		return nil, fmt.Errorf("%w: no note vault configured", domain.ErrNotImplemented)
	}
	return m.notes.ListNotes(ctx)
}
