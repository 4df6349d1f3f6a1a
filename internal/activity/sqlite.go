package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteConfig holds the settings applied when the activity database is opened.
type SQLiteConfig struct {
	// DSN is the database file path or ":memory:".
	DSN string
	// BusyTimeout sets how long to wait for database locks.
	BusyTimeout time.Duration
	// JournalMode sets the SQLite journal mode (WAL, DELETE, ...).
	JournalMode string
	// Logger receives migration progress. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultSQLiteConfig returns the settings used for a file backed trail.
func DefaultSQLiteConfig(path string) SQLiteConfig {
	return SQLiteConfig{DSN: path, BusyTimeout: 5 * time.Second, JournalMode: "WAL"}
}

// SQLiteSink stores entries in the activity_log table.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLiteSink opens the database, applies PRAGMAs and brings the schema up
// to date.
func OpenSQLiteSink(ctx context.Context, cfg SQLiteConfig) (*SQLiteSink, error) {
	if cfg.DSN == "" {
		return nil, errors.New("activity: sqlite DSN cannot be empty")
	}
	if cfg.DSN != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and writes serialised.
	db.SetMaxOpenConns(1)

	if err := configure(ctx, db, cfg); err != nil {
		db.Close()
		return nil, err
	}

	migrations, err := loadMigrations(migrationFiles, "migrations")
	if err != nil {
		db.Close()
		return nil, err
	}
	if _, err := migrate(ctx, db, migrations, cfg.Logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate activity database: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// SchemaVersion returns the highest applied migration version.
func (s *SQLiteSink) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func configure(ctx context.Context, db *sql.DB, cfg SQLiteConfig) error {
	pragmas := []string{}
	if cfg.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	if cfg.JournalMode != "" && cfg.DSN != ":memory:" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA journal_mode = %s", cfg.JournalMode))
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return nil
}

func (s *SQLiteSink) Write(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity_log (logged_at, message) VALUES (?, ?)`,
		entry.Time.UTC().Format(time.RFC3339Nano), entry.Message,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// Entries returns the last limit entries, oldest first. limit <= 0 returns all.
func (s *SQLiteSink) Entries(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT logged_at, message FROM (
		SELECT id, logged_at, message FROM activity_log ORDER BY id DESC LIMIT ?
	) ORDER BY id ASC`
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity_log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var loggedAt, message string
		if err := rows.Scan(&loggedAt, &message); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, loggedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid logged_at %q: %w", loggedAt, err)
		}
		entries = append(entries, Entry{Time: ts.In(time.Local), Message: message})
	}
	return entries, rows.Err()
}

func (s *SQLiteSink) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
