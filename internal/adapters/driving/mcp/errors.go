// Package mcp provides an MCP (Model Context Protocol) server adapter for Sheaf.
// It lets AI assistants collect sources into a session and request analyses.
package mcp

import "errors"

// ErrMissingSessionFactory is returned when the session factory is not provided.
var ErrMissingSessionFactory = errors.New("mcp: session factory is required")
