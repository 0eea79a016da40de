// Package sqlite provides a SQLite-based implementation of the analysis
// history store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, and builds its statements with Masterminds/squirrel.
//
//   - ResultStore: archived analysis results with their source references
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.sheaf/data/history.db
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on SQLite's WAL mode
// and a busy timeout for concurrent access from several processes.
package sqlite
