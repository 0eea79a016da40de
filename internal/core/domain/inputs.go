package domain

import "strings"

// WebClip is raw content captured from a web page, before admission.
type WebClip struct {
	// Title may be empty; admission substitutes a default.
	Title string

	// Content is the captured text.
	Content string

	// URL is the page address.
	URL string

	// SiteName, Author and Date are optional provenance.
	SiteName string
	Author   string
	Date     string
}

// Note is a note as returned by a NoteReader.
type Note struct {
	// Identifier is what the caller asked for (vault path or name).
	Identifier string

	// Path is the vault-relative file path.
	Path string

	// Content is the full note text.
	Content string

	// Tags are the note's tags, each with its leading '#'.
	Tags []string
}

// NoteRef identifies a readable note without its content.
type NoteRef struct {
	// Path is the vault-relative file path.
	Path string

	// Name is the base name without extension.
	Name string
}

// FilterNotes returns refs whose path contains query, case-insensitively.
// An empty query returns refs unchanged.
func FilterNotes(refs []NoteRef, query string) []NoteRef {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return refs
	}
	out := make([]NoteRef, 0, len(refs))
	for _, ref := range refs {
		if strings.Contains(strings.ToLower(ref.Path), query) {
			out = append(out, ref)
		}
	}
	return out
}
