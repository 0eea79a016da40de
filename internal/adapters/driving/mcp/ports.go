package mcp

import (
	"github.com/custodia-labs/sheaf/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sessions opens the working session the tools operate on.
	Sessions driving.SessionFactory

	// History exposes archived results as resources.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Sessions == nil {
		return ErrMissingSessionFactory
	}
	// History is optional.
	return nil
}
