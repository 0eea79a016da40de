// Package tui provides an interactive terminal user interface for sheaf.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sheaf/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sessions opens working sessions and lists vault notes.
	Sessions driving.SessionFactory

	// Settings manages application settings. Optional.
	Settings driving.SettingsService

	// History reads and deletes archived results. Optional.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Sessions == nil {
		return ErrMissingSessionFactory
	}
	return nil
}
