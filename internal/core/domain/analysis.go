package domain

import "strings"

// AnalysisType selects how the backend should treat the collected sources.
type AnalysisType string

// Available analysis types.
const (
	// AnalysisSynthesis merges every source into one integrated summary.
	AnalysisSynthesis AnalysisType = "synthesis"

	// AnalysisComparison contrasts sources: agreements and differences.
	AnalysisComparison AnalysisType = "comparison"

	// AnalysisSummary summarises each source, then combines the summaries.
	AnalysisSummary AnalysisType = "summary"

	// AnalysisCustom relies on the user's prompt only.
	AnalysisCustom AnalysisType = "custom"
)

// IsValid returns true if the analysis type is recognised.
func (t AnalysisType) IsValid() bool {
	switch t {
	case AnalysisSynthesis, AnalysisComparison, AnalysisSummary, AnalysisCustom:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t AnalysisType) String() string {
	return string(t)
}

// Description returns a human-readable description of the analysis type.
func (t AnalysisType) Description() string {
	switch t {
	case AnalysisSynthesis:
		return "Synthesis (integrate all sources into one summary)"
	case AnalysisComparison:
		return "Comparison (differences and common ground between sources)"
	case AnalysisSummary:
		return "Summary (summarise each source, then combine)"
	case AnalysisCustom:
		return "Custom (use the prompt only)"
	default:
		return unknownDescription
	}
}

// AllAnalysisTypes returns all analysis types in display order.
func AllAnalysisTypes() []AnalysisType {
	return []AnalysisType{
		AnalysisSynthesis,
		AnalysisComparison,
		AnalysisSummary,
		AnalysisCustom,
	}
}

// OutputFormat is the structure requested from the backend.
type OutputFormat string

// OutputMarkdown is the canonical structured output format.
const OutputMarkdown OutputFormat = "markdown"

// IsValid returns true if the output format is supported.
func (f OutputFormat) IsValid() bool {
	return f == OutputMarkdown
}

// String returns the string representation.
func (f OutputFormat) String() string {
	return string(f)
}

// Option field names accepted by a session's SetOption.
const (
	OptionAnalysisType = "analysis_type"
	OptionCustomPrompt = "custom_prompt"
	OptionProvider     = "provider"
	OptionLanguage     = "language"
	OptionOutputFormat = "output_format"
)

// AnalysisOptions is the mutable user selection read at submission time.
type AnalysisOptions struct {
	AnalysisType AnalysisType
	CustomPrompt string
	Provider     AIProvider
	OutputFormat OutputFormat
	Language     string
}

// DefaultAnalysisOptions returns options with sensible defaults.
// Provider and language are filled from settings by the session.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		AnalysisType: AnalysisSynthesis,
		OutputFormat: OutputMarkdown,
	}
}

// AnalysisRequest is the immutable payload handed to an analysis backend.
// The engine keeps no reference to it once built.
type AnalysisRequest struct {
	Sources                 []SourceRecord
	AnalysisType            AnalysisType
	CustomPrompt            string
	OutputFormat            OutputFormat
	IncludeSourceReferences bool
	Language                string

	// Provider routes the request to a configured backend.
	Provider AIProvider
}

// HasCustomPrompt reports whether the user supplied an instruction.
// An empty prompt means "use the default prompt for the analysis type".
func (r *AnalysisRequest) HasCustomPrompt() bool {
	return strings.TrimSpace(r.CustomPrompt) != ""
}
