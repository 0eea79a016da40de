package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// SourceType identifies which kind of content a source record holds.
type SourceType string

// Available source types.
const (
	// SourceTypeWebClip is content captured from a browsed page.
	SourceTypeWebClip SourceType = "web-clip"

	// SourceTypeNote is an existing note read from the vault.
	SourceTypeNote SourceType = "obsidian-note"

	// SourceTypeSelection is text highlighted in another document.
	SourceTypeSelection SourceType = "selection"

	// SourceTypeManualInput is free-typed text.
	SourceTypeManualInput SourceType = "manual-input"
)

// IsValid returns true if the source type is recognised.
func (t SourceType) IsValid() bool {
	switch t {
	case SourceTypeWebClip, SourceTypeNote, SourceTypeSelection, SourceTypeManualInput:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t SourceType) String() string {
	return string(t)
}

// Description returns a human-readable label for the source type.
func (t SourceType) Description() string {
	switch t {
	case SourceTypeWebClip:
		return "Web clipping"
	case SourceTypeNote:
		return "Note"
	case SourceTypeSelection:
		return "Selection"
	case SourceTypeManualInput:
		return "Manual input"
	default:
		return unknownDescription
	}
}

// AllSourceTypes returns all source types in display order.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceTypeWebClip,
		SourceTypeNote,
		SourceTypeSelection,
		SourceTypeManualInput,
	}
}

// SourceDetails is the variant-specific part of a record's metadata.
// The set of implementations is closed: one per SourceType.
type SourceDetails interface {
	// SourceType returns the variant tag this detail belongs to.
	SourceType() SourceType

	sourceDetails()
}

// WebClipDetails carries the provenance of a clipped web page.
// Every field is optional.
type WebClipDetails struct {
	URL           string
	SiteName      string
	Author        string
	PublishedDate string
}

// SourceType implements SourceDetails.
func (WebClipDetails) SourceType() SourceType { return SourceTypeWebClip }

func (WebClipDetails) sourceDetails() {}

// NoteDetails carries the location and tags of a vault note.
type NoteDetails struct {
	FilePath string
	Tags     []string
}

// SourceType implements SourceDetails.
func (NoteDetails) SourceType() SourceType { return SourceTypeNote }

func (NoteDetails) sourceDetails() {}

// SelectionDetails is empty; selections carry no provenance.
type SelectionDetails struct{}

// SourceType implements SourceDetails.
func (SelectionDetails) SourceType() SourceType { return SourceTypeSelection }

func (SelectionDetails) sourceDetails() {}

// ManualInputDetails is empty; typed text carries no provenance.
type ManualInputDetails struct{}

// SourceType implements SourceDetails.
func (ManualInputDetails) SourceType() SourceType { return SourceTypeManualInput }

func (ManualInputDetails) sourceDetails() {}

// SourceMetadata holds the counters derived from a record's content
// plus its variant details. Counters are computed at admission and
// never edited independently of the content.
type SourceMetadata struct {
	// CharCount is the number of characters (Unicode code points) in the content.
	CharCount int

	// WordCount is the number of whitespace-separated tokens in the content.
	WordCount int

	// Details is the variant-specific provenance.
	Details SourceDetails
}

// NewSourceMetadata derives the counters from content and attaches details.
func NewSourceMetadata(content string, details SourceDetails) SourceMetadata {
	return SourceMetadata{
		CharCount: CharCount(content),
		WordCount: TokenCount(content),
		Details:   details,
	}
}

// SourceRecord is one admitted source in a collection.
// Records are values: once admitted they are only ever removed, never edited.
type SourceRecord struct {
	// ID is unique within the process run and assigned at admission.
	ID string

	// Type is the variant tag; it always matches Metadata.Details.
	Type SourceType

	// Title is the non-empty display title.
	Title string

	// Content is the raw text submitted for analysis.
	Content string

	// Metadata holds derived counters and variant details.
	Metadata SourceMetadata

	// AddedAt is when the record was admitted.
	AddedAt time.Time
}

// WebClip returns the web clip details if this record is a web clip.
func (r *SourceRecord) WebClip() (WebClipDetails, bool) {
	d, ok := r.Metadata.Details.(WebClipDetails)
	return d, ok
}

// Note returns the note details if this record is a note.
func (r *SourceRecord) Note() (NoteDetails, bool) {
	d, ok := r.Metadata.Details.(NoteDetails)
	return d, ok
}

// Provenance returns a short one-line description of where the content came from.
// Used for list displays and source references in rendered prompts.
func (r *SourceRecord) Provenance() string {
	switch d := r.Metadata.Details.(type) {
	case WebClipDetails:
		parts := make([]string, 0, 3)
		if host := hostOf(d.URL); host != "" {
			parts = append(parts, host)
		} else if d.SiteName != "" {
			parts = append(parts, d.SiteName)
		}
		if d.Author != "" {
			parts = append(parts, d.Author)
		}
		if d.PublishedDate != "" {
			parts = append(parts, d.PublishedDate)
		}
		if len(parts) == 0 {
			return r.Type.Description()
		}
		return strings.Join(parts, ", ")
	case NoteDetails:
		if len(d.Tags) > 0 {
			return fmt.Sprintf("%s (%s)", d.FilePath, strings.Join(d.Tags, " "))
		}
		return d.FilePath
	default:
		return r.Type.Description()
	}
}

// hostOf returns the host part of rawURL, or "" if it does not parse.
func hostOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
