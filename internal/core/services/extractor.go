package services

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

// DefaultWebClipTitle is used for web clips captured without a title.
const DefaultWebClipTitle = "Web clipping"

// sourceIDPrefix prefixes every generated source ID.
const sourceIDPrefix = "source-"

// Extractor turns raw inputs into fully populated source records.
// It stamps every record with a fresh ID and the admission time.
type Extractor struct {
	newID func() string
	now   func() time.Time
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithIDGenerator replaces the ID generator. Generated IDs must be unique
// for the lifetime of the process.
func WithIDGenerator(fn func() string) ExtractorOption {
	return func(e *Extractor) {
		e.newID = fn
	}
}

// WithClock replaces the admission clock.
func WithClock(fn func() time.Time) ExtractorOption {
	return func(e *Extractor) {
		e.now = fn
	}
}

// NewExtractor creates an extractor with UUIDv7 IDs and the wall clock.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		newID: NewSourceID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewSourceID returns "source-" followed by a time-ordered UUID.
func NewSourceID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return sourceIDPrefix + id.String()
}

// FromWebClip builds a web clip record. It never fails: a missing title
// becomes DefaultWebClipTitle and missing provenance fields stay empty.
func (e *Extractor) FromWebClip(clip domain.WebClip) domain.SourceRecord {
	title := strings.TrimSpace(clip.Title)
	if title == "" {
		title = DefaultWebClipTitle
	}
	details := domain.WebClipDetails{
		URL:           strings.TrimSpace(clip.URL),
		SiteName:      strings.TrimSpace(clip.SiteName),
		Author:        strings.TrimSpace(clip.Author),
		PublishedDate: strings.TrimSpace(clip.Date),
	}
	return e.record(domain.SourceTypeWebClip, title, clip.Content, details)
}

// FromNote builds a note record titled with the note's base name.
func (e *Extractor) FromNote(note domain.Note) domain.SourceRecord {
	filePath := note.Path
	if filePath == "" {
		filePath = note.Identifier
	}
	details := domain.NoteDetails{
		FilePath: filePath,
		Tags:     append([]string(nil), note.Tags...),
	}
	return e.record(domain.SourceTypeNote, NoteTitle(filePath), note.Content, details)
}

// FromManualInput builds a record from free-typed text.
// Title and content are trimmed and must both be non-empty.
func (e *Extractor) FromManualInput(title, content string) (domain.SourceRecord, error) {
	title, content, err := requireTitleAndContent(title, content)
	if err != nil {
		return domain.SourceRecord{}, err
	}
	return e.record(domain.SourceTypeManualInput, title, content, domain.ManualInputDetails{}), nil
}

// FromSelection builds a record from highlighted text.
// It follows the manual input rules and differs only in its type tag.
func (e *Extractor) FromSelection(title, content string) (domain.SourceRecord, error) {
	title, content, err := requireTitleAndContent(title, content)
	if err != nil {
		return domain.SourceRecord{}, err
	}
	return e.record(domain.SourceTypeSelection, title, content, domain.SelectionDetails{}), nil
}

func (e *Extractor) record(t domain.SourceType, title, content string, details domain.SourceDetails) domain.SourceRecord {
	return domain.SourceRecord{
		ID:       e.newID(),
		Type:     t,
		Title:    title,
		Content:  content,
		Metadata: domain.NewSourceMetadata(content, details),
		AddedAt:  e.now(),
	}
}

// NoteTitle returns the base name of a note path without its extension.
func NoteTitle(notePath string) string {
	base := path.Base(strings.ReplaceAll(notePath, "\\", "/"))
	if base == "." || base == "/" {
		return notePath
	}
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

func requireTitleAndContent(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return "", "", domain.NewValidationError("title", "title is required")
	}
	if content == "" {
		return "", "", domain.NewValidationError("content", "content is required")
	}
	return title, content, nil
}
