package domain

import (
	"strconv"
	"time"
)

// AnalysisResult is what an analysis backend returns for a request.
type AnalysisResult struct {
	// ID is the unique identifier assigned when the result is produced.
	ID string

	// Provider and Model identify who produced the result.
	Provider AIProvider
	Model    string

	// AnalysisType echoes the request's strategy.
	AnalysisType AnalysisType

	// Content is the analysis text in the requested output format.
	Content string

	// Sources references the records the analysis was built from.
	Sources []SourceReference

	// Usage reports provider token accounting when available.
	Usage TokenUsage

	// CreatedAt is when the backend returned.
	CreatedAt time.Time
}

// SourceReference is the minimal trace of one analysed source.
type SourceReference struct {
	// Label is the citation marker used in the prompt (e.g. "S1").
	Label string
	ID    string
	Type  SourceType
	Title string

	// Origin is the URL or file path, if the source has one.
	Origin string
}

// TokenUsage is provider-reported token accounting.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// ReferencesFor builds the citation list for records in request order.
func ReferencesFor(records []SourceRecord) []SourceReference {
	refs := make([]SourceReference, len(records))
	for i := range records {
		refs[i] = SourceReference{
			Label: SourceLabel(i),
			ID:    records[i].ID,
			Type:  records[i].Type,
			Title: records[i].Title,
		}
		switch d := records[i].Metadata.Details.(type) {
		case WebClipDetails:
			refs[i].Origin = d.URL
		case NoteDetails:
			refs[i].Origin = d.FilePath
		}
	}
	return refs
}

// SourceLabel returns the citation marker for the source at index.
func SourceLabel(index int) string {
	return "S" + strconv.Itoa(index+1)
}

// HistoryFilter narrows an analysis history listing. Zero values match everything.
type HistoryFilter struct {
	Provider     AIProvider
	AnalysisType AnalysisType
	Since        time.Time

	// Limit caps the number of results; 0 means no limit.
	Limit int
}

// Matches reports whether result passes the filter. Limit is not applied here.
func (f HistoryFilter) Matches(result *AnalysisResult) bool {
	if f.Provider != "" && result.Provider != f.Provider {
		return false
	}
	if f.AnalysisType != "" && result.AnalysisType != f.AnalysisType {
		return false
	}
	if !f.Since.IsZero() && result.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}
