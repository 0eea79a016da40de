package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
	"github.com/custodia-labs/sheaf/internal/core/ports/driving"
	"github.com/custodia-labs/sheaf/internal/logger"
)

// Ensure Session implements the interface.
var _ driving.SessionService = (*Session)(nil)

// Session owns one working set of sources and the options chosen for it.
//
// A single mutex guards the collection, options and state. Note reads,
// page fetches and backend calls run without the lock held; each finishes
// with one locked add, so overlapping AddNote calls never expose a
// partial record.
type Session struct {
	mu         sync.Mutex
	collection *domain.Collection
	options    domain.AnalysisOptions
	state      domain.SessionState
	submitting bool

	extractor *Extractor
	builder   *RequestBuilder
	backend   driven.AnalysisBackend
	notes     driven.NoteReader
	clipper   driven.WebClipper
	results   driven.ResultStore
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithNoteReader enables AddNote.
func WithNoteReader(reader driven.NoteReader) SessionOption {
	return func(s *Session) {
		s.notes = reader
	}
}

// WithWebClipper enables ClipURL.
func WithWebClipper(clipper driven.WebClipper) SessionOption {
	return func(s *Session) {
		s.clipper = clipper
	}
}

// WithResultStore archives successful results.
func WithResultStore(store driven.ResultStore) SessionOption {
	return func(s *Session) {
		s.results = store
	}
}

// WithExtractor replaces the record extractor.
func WithExtractor(extractor *Extractor) SessionOption {
	return func(s *Session) {
		s.extractor = extractor
	}
}

// NewSession creates an empty session. defaults seeds the analysis
// options; its Language also becomes the fallback when the user clears it.
func NewSession(backend driven.AnalysisBackend, defaults domain.AnalysisOptions, opts ...SessionOption) *Session {
	if !defaults.AnalysisType.IsValid() {
		defaults.AnalysisType = domain.AnalysisSynthesis
	}
	if !defaults.OutputFormat.IsValid() {
		defaults.OutputFormat = domain.OutputMarkdown
	}

	s := &Session{
		collection: domain.NewCollection(),
		options:    defaults,
		state:      domain.SessionEmpty,
		backend:    backend,
		builder:    NewRequestBuilder(backend, defaults.Language),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = NewExtractor()
	}
	return s
}

// AddWebClip admits captured web content.
func (s *Session) AddWebClip(clip domain.WebClip) (domain.SourceRecord, error) {
	if err := s.checkOpen(); err != nil {
		return domain.SourceRecord{}, err
	}
	return s.admit(s.extractor.FromWebClip(clip))
}

// AddNote reads a note and admits it. The read happens without the lock.
func (s *Session) AddNote(ctx context.Context, identifier string) (domain.SourceRecord, error) {
	if err := s.checkOpen(); err != nil {
		return domain.SourceRecord{}, err
	}
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return domain.SourceRecord{}, domain.NewValidationError("note", "note identifier is required")
	}
	if s.notes == nil {
		return domain.SourceRecord{}, fmt.Errorf("%w: no note reader configured", domain.ErrNotImplemented)
	}

	note, err := s.notes.ReadNote(ctx, identifier)
	if err != nil {
		logger.Warn("Note %q unavailable: %v", identifier, err)
		return domain.SourceRecord{}, &domain.SourceUnavailableError{Identifier: identifier, Err: err}
	}
	if note == nil {
		return domain.SourceRecord{}, &domain.SourceUnavailableError{Identifier: identifier, Err: domain.ErrNotFound}
	}
	if note.Identifier == "" {
		note.Identifier = identifier
	}
	return s.admit(s.extractor.FromNote(*note))
}

// AddManualInput admits free-typed text.
func (s *Session) AddManualInput(title, content string) (domain.SourceRecord, error) {
	if err := s.checkOpen(); err != nil {
		return domain.SourceRecord{}, err
	}
	record, err := s.extractor.FromManualInput(title, content)
	if err != nil {
		logger.Debug("Manual input rejected: %v", err)
		return domain.SourceRecord{}, err
	}
	return s.admit(record)
}

// AddSelection admits highlighted text.
func (s *Session) AddSelection(title, content string) (domain.SourceRecord, error) {
	if err := s.checkOpen(); err != nil {
		return domain.SourceRecord{}, err
	}
	record, err := s.extractor.FromSelection(title, content)
	if err != nil {
		logger.Debug("Selection rejected: %v", err)
		return domain.SourceRecord{}, err
	}
	return s.admit(record)
}

// ClipURL fetches a page and admits it as a web clip. The fetch happens
// without the lock.
func (s *Session) ClipURL(ctx context.Context, rawURL string) (domain.SourceRecord, error) {
	if err := s.checkOpen(); err != nil {
		return domain.SourceRecord{}, err
	}
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return domain.SourceRecord{}, domain.NewValidationError("url", "url is required")
	}
	if s.clipper == nil {
		return domain.SourceRecord{}, fmt.Errorf("%w: no web clipper configured", domain.ErrNotImplemented)
	}

	clip, err := s.clipper.Clip(ctx, rawURL)
	if err != nil {
		logger.Warn("Clip of %s failed: %v", rawURL, err)
		return domain.SourceRecord{}, &domain.SourceUnavailableError{Identifier: rawURL, Err: err}
	}
	if clip == nil {
		return domain.SourceRecord{}, &domain.SourceUnavailableError{Identifier: rawURL, Err: domain.ErrNotFound}
	}
	if clip.URL == "" {
		clip.URL = rawURL
	}
	return s.admit(s.extractor.FromWebClip(*clip))
}

// Remove deletes the source with the given ID.
func (s *Session) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsClosed() {
		return domain.ErrSessionClosed
	}
	removed, err := s.collection.RemoveByID(id)
	if err != nil {
		return fmt.Errorf("remove source %q: %w", id, err)
	}
	s.touch()
	logger.Debug("Removed source %s (%s)", removed.ID, removed.Title)
	return nil
}

// RemoveAt deletes the source at a display position.
func (s *Session) RemoveAt(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsClosed() {
		return domain.ErrSessionClosed
	}
	removed, err := s.collection.Remove(index)
	if err != nil {
		return err
	}
	s.touch()
	logger.Debug("Removed source %s at index %d", removed.ID, index)
	return nil
}

// Sources returns a snapshot of the collection in insertion order.
func (s *Session) Sources() []domain.SourceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection.List()
}

// Stats returns aggregates over the current collection.
func (s *Session) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ComputeStats(s.collection.List())
}

// Options returns the current analysis options.
func (s *Session) Options() domain.AnalysisOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

// State returns the session's lifecycle phase.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetOption updates one analysis option by field name. Provider
// configuration is not checked here; Build reports it.
func (s *Session) SetOption(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsClosed() {
		return domain.ErrSessionClosed
	}

	switch field {
	case domain.OptionAnalysisType:
		at := domain.AnalysisType(strings.TrimSpace(value))
		if !at.IsValid() {
			return domain.NewValidationError(field, "unknown analysis type "+value)
		}
		s.options.AnalysisType = at
	case domain.OptionCustomPrompt:
		s.options.CustomPrompt = value
	case domain.OptionProvider:
		p := domain.AIProvider(strings.TrimSpace(value))
		if !p.IsValid() {
			return domain.NewValidationError(field, "unknown provider "+value)
		}
		s.options.Provider = p
	case domain.OptionLanguage:
		s.options.Language = strings.TrimSpace(value)
	case domain.OptionOutputFormat:
		f := domain.OutputFormat(strings.TrimSpace(value))
		if !f.IsValid() {
			return domain.NewValidationError(field, "unsupported output format "+value)
		}
		s.options.OutputFormat = f
	default:
		return domain.NewValidationError(field, "unknown option")
	}

	s.touch()
	logger.Debug("Option %s set", field)
	return nil
}

// Build validates the collection and options without submitting.
func (s *Session) Build() (*domain.AnalysisRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsClosed() {
		return nil, domain.ErrSessionClosed
	}
	return s.buildLocked()
}

// Submit builds the request and hands it to the analysis backend.
// On success the session closes; on any failure it stays usable.
func (s *Session) Submit(ctx context.Context) (*domain.AnalysisResult, error) {
	s.mu.Lock()
	if s.state.IsClosed() {
		s.mu.Unlock()
		return nil, domain.ErrSessionClosed
	}
	if s.submitting {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: submission already in progress", domain.ErrInvalidInput)
	}
	req, err := s.buildLocked()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.submitting = true
	s.mu.Unlock()

	logger.Section("Analysis Submission")
	logger.Info("Submitting %d sources to %s (%s)", len(req.Sources), req.Provider, req.AnalysisType)
	stop := logger.Timed("submit")
	result, err := s.backend.Submit(ctx, req)
	stop()

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		if !s.state.IsClosed() {
			s.touch()
		}
		s.mu.Unlock()
		logger.Warn("Submission failed: %v", err)
		return nil, fmt.Errorf("submit analysis: %w", err)
	}
	if !s.state.IsClosed() {
		s.state = domain.SessionSubmitted
		s.collection.Clear()
	}
	s.mu.Unlock()

	if s.results != nil && result != nil {
		if saveErr := s.results.Save(ctx, result); saveErr != nil {
			logger.Warn("Failed to archive result %s: %v", result.ID, saveErr)
		}
	}
	return result, nil
}

// Cancel discards the collection and closes the session.
// Cancelling a submitted session has no effect.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.SessionSubmitted {
		return
	}
	s.collection.Clear()
	s.state = domain.SessionCancelled
	logger.Debug("Session cancelled")
}

// admit appends a record in one critical section.
func (s *Session) admit(record domain.SourceRecord) (domain.SourceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The session may have closed while a read was outstanding.
	if s.state.IsClosed() {
		return domain.SourceRecord{}, domain.ErrSessionClosed
	}
	s.collection.Add(record)
	s.touch()
	logger.Debug("Added %s source %s (%q, %d chars)", record.Type, record.ID, record.Title, record.Metadata.CharCount)
	return record, nil
}

// buildLocked runs the builder and moves the state. Callers hold mu.
func (s *Session) buildLocked() (*domain.AnalysisRequest, error) {
	req, err := s.builder.Build(s.collection.List(), s.options)
	if err != nil {
		s.touch()
		logger.Debug("Build failed: %v", err)
		return nil, err
	}
	s.state = domain.SessionValidated
	return req, nil
}

// touch returns an open session to empty or populating after a change.
func (s *Session) touch() {
	if s.collection.Count() == 0 {
		s.state = domain.SessionEmpty
		return
	}
	s.state = domain.SessionPopulating
}

func (s *Session) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsClosed() {
		return domain.ErrSessionClosed
	}
	return nil
}
