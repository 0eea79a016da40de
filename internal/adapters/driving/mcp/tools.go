package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

// EmptyInput is the input schema for tools that take no arguments.
type EmptyInput struct{}

// NoteInput is the input schema for the add_note tool.
type NoteInput struct {
	Identifier string `json:"identifier" jsonschema:"vault-relative note path or note name, e.g. work/plan.md or Meeting"`
}

// TextInput is the input schema for the add_text and add_selection tools.
type TextInput struct {
	Title   string `json:"title" jsonschema:"display title of the source"`
	Content string `json:"content" jsonschema:"the text to analyse"`
}

// WebClipInput is the input schema for the add_web_clip tool.
type WebClipInput struct {
	Title    string `json:"title,omitempty" jsonschema:"page title (defaults to Web clipping)"`
	Content  string `json:"content" jsonschema:"captured page text"`
	URL      string `json:"url,omitempty" jsonschema:"page address"`
	SiteName string `json:"site_name,omitempty" jsonschema:"site name"`
	Author   string `json:"author,omitempty" jsonschema:"article author"`
	Date     string `json:"date,omitempty" jsonschema:"publication date"`
}

// ClipInput is the input schema for the clip_url tool.
type ClipInput struct {
	URL string `json:"url" jsonschema:"web page to fetch and add"`
}

// RemoveInput is the input schema for the remove_source tool.
type RemoveInput struct {
	ID string `json:"id" jsonschema:"ID of the source to remove, as returned by list_sources"`
}

// OptionInput is the input schema for the set_option tool.
type OptionInput struct {
	Field string `json:"field" jsonschema:"one of analysis_type, custom_prompt, provider, language, output_format"`
	Value string `json:"value" jsonschema:"new value for the field"`
}

// ListNotesInput is the input schema for the list_notes tool.
type ListNotesInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"keep notes whose path contains this text"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of notes to return (default 50)"`
}

// SourceOutput represents a single source in the session.
type SourceOutput struct {
	Label      string `json:"label"`
	ID         string `json:"id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Provenance string `json:"provenance"`
	Chars      int    `json:"chars"`
	Words      int    `json:"words"`
}

// StatsOutput is the output schema for the stats tool and part of others.
type StatsOutput struct {
	TotalSources    int `json:"total_sources"`
	TotalChars      int `json:"total_chars"`
	TotalWords      int `json:"total_words"`
	EstimatedTokens int `json:"estimated_tokens"`
}

// AddOutput is the output schema for tools that admit a source.
type AddOutput struct {
	Source SourceOutput `json:"source"`
	Stats  StatsOutput  `json:"stats"`
}

// SessionOutput is the output schema for list_sources and set_option.
type SessionOutput struct {
	State        string         `json:"state"`
	Sources      []SourceOutput `json:"sources"`
	Stats        StatsOutput    `json:"stats"`
	AnalysisType string         `json:"analysis_type"`
	CustomPrompt string         `json:"custom_prompt,omitempty"`
	Provider     string         `json:"provider"`
	Language     string         `json:"language"`
	OutputFormat string         `json:"output_format"`
}

// NotesOutput is the output schema for the list_notes tool.
type NotesOutput struct {
	Notes []string `json:"notes"`
	Count int      `json:"count"`
	Total int      `json:"total"`
}

// ReferenceOutput is one cited source in an analysis result.
type ReferenceOutput struct {
	Label  string `json:"label"`
	ID     string `json:"id"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Origin string `json:"origin,omitempty"`
}

// ResultOutput is the output schema for the submit tool.
type ResultOutput struct {
	ID           string            `json:"id"`
	Provider     string            `json:"provider"`
	Model        string            `json:"model"`
	AnalysisType string            `json:"analysis_type"`
	Content      string            `json:"content"`
	Sources      []ReferenceOutput `json:"sources"`
	InputTokens  int               `json:"input_tokens"`
	OutputTokens int               `json:"output_tokens"`
}

// ResetOutput is the output schema for the reset tool.
type ResetOutput struct {
	Reset bool `json:"reset"`
}

// defaultNoteLimit caps list_notes when no limit is given.
const defaultNoteLimit = 50

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_notes",
		Description: "List notes in the vault that can be added with add_note",
	}, s.handleListNotes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_note",
		Description: "Read a vault note and add it to the session",
	}, s.handleAddNote)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_text",
		Description: "Add free-typed text to the session",
	}, s.handleAddText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_selection",
		Description: "Add text highlighted in another document to the session",
	}, s.handleAddSelection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_web_clip",
		Description: "Add already captured web page content to the session",
	}, s.handleAddWebClip)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clip_url",
		Description: "Fetch a web page, extract its main content and add it to the session",
	}, s.handleClipURL)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_sources",
		Description: "List the sources and options of the current session",
	}, s.handleListSources)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "remove_source",
		Description: "Remove a source from the session by ID",
	}, s.handleRemoveSource)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Count sources, characters, words and estimated tokens in the session",
	}, s.handleStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_option",
		Description: "Set an analysis option: analysis_type, custom_prompt, provider, language or output_format",
	}, s.handleSetOption)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "submit",
		Description: "Send the session's sources for analysis and return the result; the session is then closed",
	}, s.handleSubmit)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reset",
		Description: "Discard the current session and its sources",
	}, s.handleReset)
}

func (s *Server) handleListNotes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListNotesInput,
) (*mcp.CallToolResult, NotesOutput, error) {
	refs, err := s.ports.Sessions.ListNotes(ctx)
	if err != nil {
		return nil, NotesOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultNoteLimit
	}

	filtered := domain.FilterNotes(refs, input.Filter)
	output := NotesOutput{Total: len(filtered)}
	for i := range filtered {
		if i == limit {
			break
		}
		output.Notes = append(output.Notes, filtered[i].Path)
	}
	output.Count = len(output.Notes)
	if output.Notes == nil {
		output.Notes = []string{}
	}
	return nil, output, nil
}

func (s *Server) handleAddNote(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input NoteInput,
) (*mcp.CallToolResult, AddOutput, error) {
	session, err := s.current()
	if err != nil {
		return nil, AddOutput{}, err
	}
	record, err := session.AddNote(ctx, input.Identifier)
	if err != nil {
		return nil, AddOutput{}, err
	}
	return nil, addOutput(session, record), nil
}

func (s *Server) handleAddText(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input TextInput,
) (*mcp.CallToolResult, AddOutput, error) {
	session, err := s.current()
	if err != nil {
		return nil, AddOutput{}, err
	}
	record, err := session.AddManualInput(input.Title, input.Content)
	if err != nil {
		return nil, AddOutput{}, err
	}
	return nil, addOutput(session, record), nil
}

func (s *Server) handleAddSelection(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input TextInput,
) (*mcp.CallToolResult, AddOutput, error) {
	session, err := s.current()
	if err != nil {
		return nil, AddOutput{}, err
	}
	record, err := session.AddSelection(input.Title, input.Content)
	if err != nil {
		return nil, AddOutput{}, err
	}
	return nil, addOutput(session, record), nil
}

func (s *Server) handleAddWebClip(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input WebClipInput,
) (*mcp.CallToolResult, AddOutput, error) {
	session, err := s.current()
	if err != nil {
		return nil, AddOutput{}, err
	}
	record, err := session.AddWebClip(domain.WebClip{
		Title:    input.Title,
		Content:  input.Content,
		URL:      input.URL,
		SiteName: input.SiteName,
		Author:   input.Author,
		Date:     input.Date,
	})
	if err != nil {
		return nil, AddOutput{}, err
	}
	return nil, addOutput(session, record), nil
}

func (s *Server) handleClipURL(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClipInput,
) (*mcp.CallToolResult, AddOutput, error) {
	session, err := s.current()
	if err != nil {
		return nil, AddOutput{}, err
	}
	record, err := session.ClipURL(ctx, input.URL)
	if err != nil {
		return nil, AddOutput{}, err
	}
	return nil, addOutput(session, record), nil
}

func (s *Server) handleListSources(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, SessionOutput, error) {
	session, err := s.current()
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, sessionOutput(session), nil
}

func (s *Server) handleRemoveSource(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RemoveInput,
) (*mcp.CallToolResult, SessionOutput, error) {
	session, err := s.current()
	if err != nil {
		return nil, SessionOutput{}, err
	}
	if err := session.Remove(input.ID); err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, sessionOutput(session), nil
}

func (s *Server) handleStats(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	session, err := s.current()
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, statsOutput(session.Stats()), nil
}

func (s *Server) handleSetOption(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input OptionInput,
) (*mcp.CallToolResult, SessionOutput, error) {
	session, err := s.current()
	if err != nil {
		return nil, SessionOutput{}, err
	}
	if err := session.SetOption(input.Field, input.Value); err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, sessionOutput(session), nil
}

func (s *Server) handleSubmit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, ResultOutput, error) {
	session, err := s.current()
	if err != nil {
		return nil, ResultOutput{}, err
	}

	result, err := session.Submit(ctx)
	if err != nil {
		return nil, ResultOutput{}, err
	}

	output := ResultOutput{
		ID:           result.ID,
		Provider:     result.Provider.String(),
		Model:        result.Model,
		AnalysisType: result.AnalysisType.String(),
		Content:      result.Content,
		Sources:      referenceOutputs(result.Sources),
		InputTokens:  result.Usage.InputTokens,
		OutputTokens: result.Usage.OutputTokens,
	}
	return nil, output, nil
}

func (s *Server) handleReset(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, ResetOutput, error) {
	s.reset()
	return nil, ResetOutput{Reset: true}, nil
}

func addOutput(session sessionView, record domain.SourceRecord) AddOutput {
	sources := session.Sources()
	label := ""
	for i := range sources {
		if sources[i].ID == record.ID {
			label = domain.SourceLabel(i)
			break
		}
	}
	return AddOutput{
		Source: sourceOutput(label, &record),
		Stats:  statsOutput(session.Stats()),
	}
}

// sessionView is the read side of a session used to build outputs.
type sessionView interface {
	Sources() []domain.SourceRecord
	Stats() domain.Stats
	Options() domain.AnalysisOptions
	State() domain.SessionState
}

func sessionOutput(session sessionView) SessionOutput {
	sources := session.Sources()
	opts := session.Options()

	output := SessionOutput{
		State:        session.State().String(),
		Sources:      make([]SourceOutput, len(sources)),
		Stats:        statsOutput(session.Stats()),
		AnalysisType: opts.AnalysisType.String(),
		CustomPrompt: opts.CustomPrompt,
		Provider:     opts.Provider.String(),
		Language:     opts.Language,
		OutputFormat: opts.OutputFormat.String(),
	}
	for i := range sources {
		output.Sources[i] = sourceOutput(domain.SourceLabel(i), &sources[i])
	}
	return output
}

func sourceOutput(label string, record *domain.SourceRecord) SourceOutput {
	return SourceOutput{
		Label:      label,
		ID:         record.ID,
		Type:       record.Type.String(),
		Title:      record.Title,
		Provenance: record.Provenance(),
		Chars:      record.Metadata.CharCount,
		Words:      record.Metadata.WordCount,
	}
}

func statsOutput(stats domain.Stats) StatsOutput {
	return StatsOutput{
		TotalSources:    stats.TotalSources,
		TotalChars:      stats.TotalChars,
		TotalWords:      stats.TotalWords,
		EstimatedTokens: stats.EstimatedTokens,
	}
}

func referenceOutputs(refs []domain.SourceReference) []ReferenceOutput {
	out := make([]ReferenceOutput, len(refs))
	for i, ref := range refs {
		out[i] = ReferenceOutput{
			Label:  ref.Label,
			ID:     ref.ID,
			Type:   ref.Type.String(),
			Title:  ref.Title,
			Origin: ref.Origin,
		}
	}
	return out
}
