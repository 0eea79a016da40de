package driving

import (
	"context"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

// SessionService is one interactive aggregation session: a working set of
// sources plus the analysis options chosen for them.
//
// Every Add operation returns the admitted record. Once the session is
// submitted or cancelled, mutating calls fail with domain.ErrSessionClosed.
type SessionService interface {
	// AddWebClip admits captured web content.
	AddWebClip(clip domain.WebClip) (domain.SourceRecord, error)

	// AddNote reads a note through the note reader and admits it.
	// Read failures return a *domain.SourceUnavailableError and admit nothing.
	AddNote(ctx context.Context, identifier string) (domain.SourceRecord, error)

	// AddManualInput admits free-typed text. Title and content are required.
	AddManualInput(title, content string) (domain.SourceRecord, error)

	// AddSelection admits highlighted text. Title and content are required.
	AddSelection(title, content string) (domain.SourceRecord, error)

	// ClipURL fetches a web page and admits it as a web clip.
	ClipURL(ctx context.Context, rawURL string) (domain.SourceRecord, error)

	// Remove deletes the source with the given ID.
	Remove(id string) error

	// RemoveAt deletes the source at a display position.
	RemoveAt(index int) error

	// Sources returns a snapshot of the collection in insertion order.
	Sources() []domain.SourceRecord

	// Stats returns aggregates over the current collection.
	Stats() domain.Stats

	// Options returns the current analysis options.
	Options() domain.AnalysisOptions

	// SetOption updates one analysis option by field name.
	SetOption(field, value string) error

	// State returns the session's lifecycle phase.
	State() domain.SessionState

	// Build validates the collection and options without submitting.
	Build() (*domain.AnalysisRequest, error)

	// Submit builds the request and hands it to the analysis backend.
	Submit(ctx context.Context) (*domain.AnalysisResult, error)

	// Cancel discards the collection and closes the session.
	Cancel()
}

// SessionFactory opens new sessions preloaded with the configured defaults.
type SessionFactory interface {
	// NewSession returns an empty session.
	NewSession() (SessionService, error)

	// ListNotes returns the notes that can be added to a session.
	ListNotes(ctx context.Context) ([]domain.NoteRef, error)
}
