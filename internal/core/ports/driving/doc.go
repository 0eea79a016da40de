// Package driving defines the ports the CLI, TUI and MCP server call to
// open analysis sessions and to reach history and settings.
//
// Implementations live in internal/core/services.
package driving
