package driven

import "github.com/custodia-labs/sheaf/internal/core/domain"

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptSystem is the shared system prompt for every analysis.
	// It has no format placeholders.
	PromptSystem = "system"

	// PromptSynthesis integrates all sources into one summary.
	PromptSynthesis = "synthesis"

	// PromptComparison contrasts the sources.
	PromptComparison = "comparison"

	// PromptSummary summarises each source, then combines.
	PromptSummary = "summary"
)

// PromptForAnalysis returns the prompt name holding the default instruction
// for an analysis type. Custom analyses fall back to the synthesis prompt.
func PromptForAnalysis(t domain.AnalysisType) string {
	switch t {
	case domain.AnalysisComparison:
		return PromptComparison
	case domain.AnalysisSummary:
		return PromptSummary
	default:
		return PromptSynthesis
	}
}

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
