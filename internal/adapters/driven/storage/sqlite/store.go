package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sheaf/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
)

// resultsTable holds one row per archived analysis result.
const resultsTable = "analysis_results"

var resultColumns = []string{
	"id",
	"provider",
	"model",
	"analysis_type",
	"content",
	"sources",
	"input_tokens",
	"output_tokens",
	"created_at",
}

// Store is a SQLite database that exposes the driven store interfaces
// through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in dataDir.
// If dataDir is empty, defaults to ~/.sheaf/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sheaf", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// WAL lets the TUI read history while the MCP server writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ResultStore returns a ResultStore interface backed by this store.
func (s *Store) ResultStore() driven.ResultStore {
	return &resultStore{store: s}
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_analysis_results.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		query, args, err := sq.Insert("schema_migrations").Columns("version").Values(version).ToSql()
		if err != nil {
			return fmt.Errorf("building migration record: %w", err)
		}
		if _, err := s.db.Exec(query, args...); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Result Store ====================

// resultStore implements driven.ResultStore.
type resultStore struct {
	store *Store
}

var _ driven.ResultStore = (*resultStore)(nil)

// sourceRow is the JSON shape of a stored source reference.
type sourceRow struct {
	Label  string `json:"label"`
	ID     string `json:"id"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Origin string `json:"origin,omitempty"`
}

// Save stores or replaces a result.
func (s *resultStore) Save(ctx context.Context, result *domain.AnalysisResult) error {
	if result == nil || strings.TrimSpace(result.ID) == "" {
		return domain.NewValidationError("id", "result ID is required")
	}

	rows := make([]sourceRow, len(result.Sources))
	for i, ref := range result.Sources {
		rows[i] = sourceRow{
			Label:  ref.Label,
			ID:     ref.ID,
			Type:   string(ref.Type),
			Title:  ref.Title,
			Origin: ref.Origin,
		}
	}
	sourcesJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshalling sources: %w", err)
	}

	createdAt := result.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query, args, err := sq.Replace(resultsTable).
		Columns(resultColumns...).
		Values(
			result.ID,
			string(result.Provider),
			result.Model,
			string(result.AnalysisType),
			result.Content,
			string(sourcesJSON),
			result.Usage.InputTokens,
			result.Usage.OutputTokens,
			createdAt.UnixNano(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	if _, err := s.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("saving result: %w", err)
	}
	return nil
}

// Get retrieves a result by ID.
func (s *resultStore) Get(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	query, args, err := sq.Select(resultColumns...).
		From(resultsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	result, err := scanResult(s.store.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("result %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting result: %w", err)
	}
	return result, nil
}

// List returns results matching filter, newest first.
func (s *resultStore) List(ctx context.Context, filter domain.HistoryFilter) ([]domain.AnalysisResult, error) {
	builder := sq.Select(resultColumns...).
		From(resultsTable).
		OrderBy("created_at DESC", "id DESC")

	if filter.Provider != "" {
		builder = builder.Where(sq.Eq{"provider": string(filter.Provider)})
	}
	if filter.AnalysisType != "" {
		builder = builder.Where(sq.Eq{"analysis_type": string(filter.AnalysisType)})
	}
	if !filter.Since.IsZero() {
		builder = builder.Where(sq.GtOrEq{"created_at": filter.Since.UnixNano()})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	var results []domain.AnalysisResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, *result)
	}
	return results, rows.Err()
}

// Delete removes a result by ID.
func (s *resultStore) Delete(ctx context.Context, id string) error {
	query, args, err := sq.Delete(resultsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("result %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*domain.AnalysisResult, error) {
	var (
		result       domain.AnalysisResult
		provider     string
		analysisType string
		sourcesJSON  string
		createdAt    int64
	)

	err := row.Scan(
		&result.ID,
		&provider,
		&result.Model,
		&analysisType,
		&result.Content,
		&sourcesJSON,
		&result.Usage.InputTokens,
		&result.Usage.OutputTokens,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	result.Provider = domain.AIProvider(provider)
	result.AnalysisType = domain.AnalysisType(analysisType)
	result.CreatedAt = time.Unix(0, createdAt).UTC()

	var rows []sourceRow
	if err := json.Unmarshal([]byte(sourcesJSON), &rows); err != nil {
		return nil, fmt.Errorf("unmarshalling sources: %w", err)
	}
	if len(rows) > 0 {
		result.Sources = make([]domain.SourceReference, len(rows))
		for i, r := range rows {
			result.Sources[i] = domain.SourceReference{
				Label:  r.Label,
				ID:     r.ID,
				Type:   domain.SourceType(r.Type),
				Title:  r.Title,
				Origin: r.Origin,
			}
		}
	}

	return &result, nil
}
