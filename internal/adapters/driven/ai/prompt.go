package ai

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
)

// Ensure PromptRenderer can accept a prompt store.
var _ driven.PromptStoreAware = (*PromptRenderer)(nil)

// fallbackPrompts are used when no PromptStore is configured or a load fails.
var fallbackPrompts = map[string]string{
	driven.PromptSystem: "You are an analyst. You receive several sources and answer only from their content. " +
		"Cite the sources you rely on with their labels, for example [S1].",
	driven.PromptSynthesis:  "Integrate all of the sources below into one coherent summary.",
	driven.PromptComparison: "Compare the sources below. Describe where they agree and where they differ.",
	driven.PromptSummary:    "Summarise each source below on its own, then combine the summaries into an overview.",
}

// PromptRenderer turns an analysis request into chat messages.
type PromptRenderer struct {
	store driven.PromptStore
}

// NewPromptRenderer creates a renderer. store may be nil.
func NewPromptRenderer(store driven.PromptStore) *PromptRenderer {
	return &PromptRenderer{store: store}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (r *PromptRenderer) SetPromptStore(store driven.PromptStore) {
	r.store = store
}

// Render builds the system and user messages for req.
//
// For the custom type the user's prompt is the whole instruction; an empty
// custom prompt falls back to the synthesis instruction. For the other types
// a non-empty prompt is appended to the type's default instruction.
func (r *PromptRenderer) Render(req *domain.AnalysisRequest) []driven.ChatMessage {
	var b strings.Builder

	b.WriteString(r.instruction(req))
	b.WriteString("\n\n")

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = domain.DefaultLanguage
	}
	fmt.Fprintf(&b, "Write the response in %s.", language)
	if req.OutputFormat == domain.OutputMarkdown {
		b.WriteString(" Format the response as Markdown with headings and lists where they help.")
	}
	if req.IncludeSourceReferences {
		b.WriteString(" Reference the sources by label, for example [S1], wherever you use them.")
	}

	fmt.Fprintf(&b, "\n\n## Sources (%d)\n", len(req.Sources))
	for i := range req.Sources {
		writeSource(&b, i, &req.Sources[i])
	}

	return []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: r.load(driven.PromptSystem)},
		{Role: driven.RoleUser, Content: b.String()},
	}
}

func (r *PromptRenderer) instruction(req *domain.AnalysisRequest) string {
	custom := strings.TrimSpace(req.CustomPrompt)
	if req.AnalysisType == domain.AnalysisCustom && custom != "" {
		return custom
	}

	base := r.load(driven.PromptForAnalysis(req.AnalysisType))
	if custom == "" {
		return base
	}
	return base + "\n\nAdditional instructions: " + custom
}

func (r *PromptRenderer) load(name string) string {
	if r.store != nil {
		if prompt, err := r.store.Load(name); err == nil && strings.TrimSpace(prompt) != "" {
			return strings.TrimSpace(prompt)
		}
	}
	return fallbackPrompts[name]
}

func writeSource(b *strings.Builder, index int, record *domain.SourceRecord) {
	fmt.Fprintf(b, "\n[%s] %s\n", domain.SourceLabel(index), record.Title)
	fmt.Fprintf(b, "Type: %s\n", record.Type.Description())
	if provenance := record.Provenance(); provenance != "" && provenance != record.Type.Description() {
		fmt.Fprintf(b, "From: %s\n", provenance)
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(record.Content))
	b.WriteString("\n")
}
