package driven

import (
	"context"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

// NoteReader resolves note identifiers to note content.
// Implementations may read a local vault, a remote notes API, or a fixture.
type NoteReader interface {
	// ReadNote returns the note for identifier (a vault-relative path or a
	// bare note name). Returns domain.ErrNotFound if no such note exists.
	ReadNote(ctx context.Context, identifier string) (*domain.Note, error)

	// ListNotes returns every readable note, sorted by path.
	ListNotes(ctx context.Context) ([]domain.NoteRef, error)
}
