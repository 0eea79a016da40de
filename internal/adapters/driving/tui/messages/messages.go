// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sheaf/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSession is the working session: sources, options and submit.
	ViewSession
	// ViewResult shows one analysis result.
	ViewResult
	// ViewHistory lists archived results.
	ViewHistory
	// ViewSettings is the settings configuration view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSession:
		return "session"
	case ViewResult:
		return "result"
	case ViewHistory:
		return "history"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// NotesLoaded carries the notes available in the vault.
type NotesLoaded struct {
	Notes []domain.NoteRef
	Err   error
}

// SourceAdded signals a source was admitted to the session.
type SourceAdded struct {
	Source domain.SourceRecord
	Err    error
}

// SourceRemoved signals a source was removed from the session.
type SourceRemoved struct {
	ID  string
	Err error
}

// AnalysisCompleted carries the result of a submit.
type AnalysisCompleted struct {
	Result *domain.AnalysisResult
	Err    error
}

// ResultSelected asks the app to show a result. Back is the view
// the result view returns to.
type ResultSelected struct {
	Result domain.AnalysisResult
	Back   ViewType
}

// HistoryLoaded carries archived results, newest first.
type HistoryLoaded struct {
	Results []domain.AnalysisResult
	Err     error
}

// ResultDeleted signals an archived result was deleted.
type ResultDeleted struct {
	ID  string
	Err error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}
