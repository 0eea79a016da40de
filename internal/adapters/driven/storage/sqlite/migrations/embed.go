// Package migrations holds the numbered up/down SQL files for the history
// database. Files are applied in name order by the sqlite store.
package migrations

import "embed"

// FS holds the migration files.
//
//go:embed *.sql
var FS embed.FS
