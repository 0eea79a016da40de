package mcp

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/services"
)

func TestHandleListNotes(t *testing.T) {
	server := newTestServer(&mockBackend{configured: true}, nil)

	tests := []struct {
		name      string
		input     ListNotesInput
		wantNotes []string
		wantTotal int
	}{
		{
			name:      "all notes",
			input:     ListNotesInput{},
			wantNotes: []string{"Inbox.md", "work/Meeting.md", "work/Plan.md"},
			wantTotal: 3,
		},
		{
			name:      "filter is case-insensitive",
			input:     ListNotesInput{Filter: "WORK"},
			wantNotes: []string{"work/Meeting.md", "work/Plan.md"},
			wantTotal: 2,
		},
		{
			name:      "limit caps the listing",
			input:     ListNotesInput{Limit: 1},
			wantNotes: []string{"Inbox.md"},
			wantTotal: 3,
		},
		{
			name:      "no match returns empty list",
			input:     ListNotesInput{Filter: "nothing"},
			wantNotes: []string{},
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleListNotes(context.Background(), nil, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNotes, output.Notes)
			assert.Equal(t, len(tt.wantNotes), output.Count)
			assert.Equal(t, tt.wantTotal, output.Total)
		})
	}
}

func TestHandleListNotes_NoVault(t *testing.T) {
	settings := &mockSettings{settings: domain.DefaultAppSettings()}
	server, err := NewServer(&Ports{
		Sessions: services.NewSessionManager(settings, &mockBackend{}, nil, nil, nil),
	})
	require.NoError(t, err)

	_, _, err = server.handleListNotes(context.Background(), nil, ListNotesInput{})
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}

func TestHandleAddSources(t *testing.T) {
	server := newTestServer(&mockBackend{configured: true}, nil)
	ctx := context.Background()

	_, text, err := server.handleAddText(ctx, nil, TextInput{Title: "Idea", Content: "one two three"})
	require.NoError(t, err)
	assert.Equal(t, "S1", text.Source.Label)
	assert.Equal(t, "Idea", text.Source.Title)
	assert.Equal(t, domain.SourceTypeManualInput.String(), text.Source.Type)
	assert.Equal(t, 3, text.Source.Words)
	assert.Equal(t, 1, text.Stats.TotalSources)

	_, note, err := server.handleAddNote(ctx, nil, NoteInput{Identifier: "work/Meeting.md"})
	require.NoError(t, err)
	assert.Equal(t, "S2", note.Source.Label)
	assert.Equal(t, "Meeting", note.Source.Title)
	assert.Equal(t, domain.SourceTypeNote.String(), note.Source.Type)
	assert.Equal(t, 2, note.Stats.TotalSources)

	_, clip, err := server.handleAddWebClip(ctx, nil, WebClipInput{
		Content: "page body",
		URL:     "https://example.com/post",
	})
	require.NoError(t, err)
	assert.Equal(t, "S3", clip.Source.Label)
	assert.Equal(t, services.DefaultWebClipTitle, clip.Source.Title)
	assert.Equal(t, "example.com", clip.Source.Provenance)

	_, selection, err := server.handleAddSelection(ctx, nil, TextInput{Title: "Quote", Content: "highlighted"})
	require.NoError(t, err)
	assert.Equal(t, "S4", selection.Source.Label)
	assert.Equal(t, domain.SourceTypeSelection.String(), selection.Source.Type)

	_, stats, err := server.handleStats(ctx, nil, EmptyInput{})
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalSources)
	assert.Positive(t, stats.EstimatedTokens)
}

func TestHandleAddSources_Errors(t *testing.T) {
	server := newTestServer(&mockBackend{configured: true}, nil)
	ctx := context.Background()

	t.Run("blank text is rejected", func(t *testing.T) {
		_, _, err := server.handleAddText(ctx, nil, TextInput{Title: "Idea", Content: "  "})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("missing note is unavailable", func(t *testing.T) {
		_, _, err := server.handleAddNote(ctx, nil, NoteInput{Identifier: "missing.md"})
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("clip_url without clipper", func(t *testing.T) {
		_, _, err := server.handleClipURL(ctx, nil, ClipInput{URL: "https://example.com"})
		assert.ErrorIs(t, err, domain.ErrNotImplemented)
	})

	t.Run("failed adds leave the session empty", func(t *testing.T) {
		_, output, err := server.handleListSources(ctx, nil, EmptyInput{})
		require.NoError(t, err)
		assert.Empty(t, output.Sources)
		assert.Equal(t, domain.SessionEmpty.String(), output.State)
	})
}

func TestHandleRemoveSource(t *testing.T) {
	server := newTestServer(&mockBackend{configured: true}, nil)
	ctx := context.Background()

	_, first, err := server.handleAddText(ctx, nil, TextInput{Title: "First", Content: "alpha"})
	require.NoError(t, err)
	_, _, err = server.handleAddText(ctx, nil, TextInput{Title: "Second", Content: "beta"})
	require.NoError(t, err)

	_, output, err := server.handleRemoveSource(ctx, nil, RemoveInput{ID: first.Source.ID})
	require.NoError(t, err)
	require.Len(t, output.Sources, 1)
	assert.Equal(t, "Second", output.Sources[0].Title)
	assert.Equal(t, "S1", output.Sources[0].Label, "labels follow current order")

	_, _, err = server.handleRemoveSource(ctx, nil, RemoveInput{ID: first.Source.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHandleSetOption(t *testing.T) {
	server := newTestServer(&mockBackend{configured: true}, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   OptionInput
		wantErr error
		check   func(t *testing.T, output SessionOutput)
	}{
		{
			name:  "analysis type",
			input: OptionInput{Field: domain.OptionAnalysisType, Value: "comparison"},
			check: func(t *testing.T, output SessionOutput) {
				assert.Equal(t, "comparison", output.AnalysisType)
			},
		},
		{
			name:  "language",
			input: OptionInput{Field: domain.OptionLanguage, Value: "French"},
			check: func(t *testing.T, output SessionOutput) {
				assert.Equal(t, "French", output.Language)
			},
		},
		{
			name:  "provider",
			input: OptionInput{Field: domain.OptionProvider, Value: "ollama"},
			check: func(t *testing.T, output SessionOutput) {
				assert.Equal(t, "ollama", output.Provider)
			},
		},
		{
			name:    "unknown analysis type",
			input:   OptionInput{Field: domain.OptionAnalysisType, Value: "poem"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown field",
			input:   OptionInput{Field: "temperature", Value: "1"},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleSetOption(ctx, nil, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, output)
		})
	}
}

func TestHandleSubmit(t *testing.T) {
	backend := &mockBackend{configured: true}
	server := newTestServer(backend, nil)
	ctx := context.Background()

	_, _, err := server.handleAddText(ctx, nil, TextInput{Title: "Idea", Content: "one two three"})
	require.NoError(t, err)
	_, _, err = server.handleAddNote(ctx, nil, NoteInput{Identifier: "Inbox.md"})
	require.NoError(t, err)

	_, result, err := server.handleSubmit(ctx, nil, EmptyInput{})
	require.NoError(t, err)
	assert.Equal(t, "result-1", result.ID)
	assert.Equal(t, "analysis of Idea", result.Content)
	assert.Equal(t, domain.AIProviderAnthropic.String(), result.Provider)
	assert.Equal(t, domain.AnalysisSynthesis.String(), result.AnalysisType)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "S1", result.Sources[0].Label)
	assert.Equal(t, "Inbox", result.Sources[1].Title)
	assert.Equal(t, 10, result.InputTokens)
	assert.Equal(t, 5, result.OutputTokens)

	require.Len(t, backend.requests, 1)
	assert.Equal(t, domain.DefaultLanguage, backend.requests[0].Language)

	// The next call works on a fresh session.
	_, output, err := server.handleListSources(ctx, nil, EmptyInput{})
	require.NoError(t, err)
	assert.Empty(t, output.Sources)
	assert.Equal(t, domain.SessionEmpty.String(), output.State)
}

func TestHandleSubmit_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty session", func(t *testing.T) {
		server := newTestServer(&mockBackend{configured: true}, nil)
		_, _, err := server.handleSubmit(ctx, nil, EmptyInput{})
		assert.ErrorIs(t, err, domain.ErrEmptySourceSet)
	})

	t.Run("provider not configured", func(t *testing.T) {
		server := newTestServer(&mockBackend{configured: false}, nil)
		_, _, err := server.handleAddText(ctx, nil, TextInput{Title: "Idea", Content: "text"})
		require.NoError(t, err)

		_, _, err = server.handleSubmit(ctx, nil, EmptyInput{})
		assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)
	})

	t.Run("backend failure keeps sources", func(t *testing.T) {
		server := newTestServer(&mockBackend{configured: true, err: errBackendDown}, nil)
		_, _, err := server.handleAddText(ctx, nil, TextInput{Title: "Idea", Content: "text"})
		require.NoError(t, err)

		_, _, err = server.handleSubmit(ctx, nil, EmptyInput{})
		assert.ErrorIs(t, err, errBackendDown)

		_, output, err := server.handleListSources(ctx, nil, EmptyInput{})
		require.NoError(t, err)
		assert.Len(t, output.Sources, 1)
		assert.Equal(t, domain.SessionPopulating.String(), output.State)
	})
}

func TestHandleReset(t *testing.T) {
	server := newTestServer(&mockBackend{configured: true}, nil)
	ctx := context.Background()

	_, _, err := server.handleAddText(ctx, nil, TextInput{Title: "Idea", Content: "text"})
	require.NoError(t, err)

	_, output, err := server.handleReset(ctx, nil, EmptyInput{})
	require.NoError(t, err)
	assert.True(t, output.Reset)

	_, stats, err := server.handleStats(ctx, nil, EmptyInput{})
	require.NoError(t, err)
	assert.Zero(t, stats.TotalSources)
}

func TestWebClipInput_TitleSchemaNamesDefault(t *testing.T) {
	field, ok := reflect.TypeOf(WebClipInput{}).FieldByName("Title")
	require.True(t, ok)

	assert.Contains(t, field.Tag.Get("jsonschema"), services.DefaultWebClipTitle)
}
