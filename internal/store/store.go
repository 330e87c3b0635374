package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

//go:embed schema.sql
var schemaSQL string

// driverName is go-sqlite3 with a Unicode lower() installed on every
// connection. Compiled fragments compare lower(author) and friends against
// values the classifier folded with x/text; SQLite's builtin lower() only
// folds ASCII, so "Émile" would never match "émile" without it.
const driverName = "sqlite3_hubstream"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", foldLower, true)
		},
	})
}

// foldLower replaces SQLite's lower(). NULL stays NULL and non-text values
// pass through unchanged.
func foldLower(v any) any {
	switch s := v.(type) {
	case string:
		return norm.NFC.String(cases.Lower(language.Und).String(s))
	case []byte:
		if s == nil {
			return nil // go-sqlite3 hands NULL over as a nil []byte
		}
		return norm.NFC.String(cases.Lower(language.Und).String(string(s)))
	default:
		return v
	}
}

// Schema versions (PRAGMA user_version):
//
//	0 - issues table only
//	1 - updated_at index for the default order, repo index for repo: filters
//	2 - closed_at index; is:open and is:closed back most saved streams
const currentSchemaVersion = 2

// Store is the local issue mirror. Imports are the only writers; search
// and stream runs read while a watch may be importing in the background.
type Store struct {
	db *sql.DB
}

// Open creates or opens the mirror at path and brings its schema up to
// date. Opening an existing mirror is safe and keeps its contents.
func Open(path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Pragmas are per connection; a single connection keeps them applied.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	slog.Debug("store opened", "path", path, "schema_version", currentSchemaVersion)
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying handle. Tests use it to inspect stored columns.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Query runs a raw query against the mirror. Callers close the rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// applyPragmas configures the mirror. The table has no foreign keys, and
// every row can be rebuilt by re-importing, so NORMAL sync is enough.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// migrations[i] upgrades a mirror from user_version i to i+1.
var migrations = []string{
	`CREATE INDEX IF NOT EXISTS idx_issues_updated_at ON issues(updated_at);
	 CREATE INDEX IF NOT EXISTS idx_issues_repo ON issues(repo);`,
	`CREATE INDEX IF NOT EXISTS idx_issues_closed_at ON issues(closed_at);`,
}

func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("mirror schema version %d is newer than supported %d", version, currentSchemaVersion)
	}

	for v := version; v < currentSchemaVersion; v++ {
		if _, err := db.Exec(migrations[v]); err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		slog.Debug("store migrated", "schema_version", v+1)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
