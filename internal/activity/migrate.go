package activity

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var (
	// ErrInvalidMigration is returned for badly named, empty or duplicate files.
	ErrInvalidMigration = errors.New("activity: invalid migration file")
	// ErrMigrationFailed wraps a statement that could not be executed.
	ErrMigrationFailed = errors.New("activity: migration failed")
	// ErrChecksumMismatch means an applied migration was edited afterwards.
	ErrChecksumMismatch = errors.New("activity: applied migration was modified")
)

var migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.sql$`)

const createMigrationTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version     INTEGER PRIMARY KEY,
	description TEXT NOT NULL,
	checksum    TEXT NOT NULL,
	applied_at  TEXT NOT NULL
)`

// Migration is one versioned change to the activity database schema.
type Migration struct {
	Version     int
	Description string
	SQL         string
	Checksum    string
}

// MigrationError reports which migration failed and at what step.
type MigrationError struct {
	Version   int
	Operation string
	Err       error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %03d: %s: %v", e.Version, e.Operation, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// loadMigrations reads {version}_{description}.sql files from dir, sorted by
// version.
func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	seen := make(map[int]string, len(entries))
	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		match := migrationFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			return nil, fmt.Errorf("%w: %q does not match {version}_{description}.sql", ErrInvalidMigration, entry.Name())
		}
		version, convErr := strconv.Atoi(match[1])
		if convErr != nil || version <= 0 {
			return nil, fmt.Errorf("%w: %q has an invalid version", ErrInvalidMigration, entry.Name())
		}
		if other, dup := seen[version]; dup {
			return nil, fmt.Errorf("%w: %q and %q share version %d", ErrInvalidMigration, other, entry.Name(), version)
		}
		seen[version] = entry.Name()

		content, readErr := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if readErr != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), readErr)
		}
		if len(splitStatements(string(content))) == 0 {
			return nil, fmt.Errorf("%w: %q contains no statements", ErrInvalidMigration, entry.Name())
		}

		sum := sha256.Sum256(content)
		migrations = append(migrations, Migration{
			Version:     version,
			Description: strings.ReplaceAll(match[2], "_", " "),
			SQL:         string(content),
			Checksum:    hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// migrate applies pending migrations in version order and returns how many ran.
// A migration and its schema_migrations row commit in the same transaction.
func migrate(ctx context.Context, db *sql.DB, migrations []Migration, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := db.ExecContext(ctx, createMigrationTable); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	applied, err := appliedChecksums(ctx, db)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range migrations {
		if sum, ok := applied[m.Version]; ok {
			if sum != m.Checksum {
				return count, &MigrationError{Version: m.Version, Operation: "verify checksum", Err: ErrChecksumMismatch}
			}
			continue
		}

		start := time.Now()
		if err := applyMigration(ctx, db, m); err != nil {
			logger.ErrorContext(ctx, "migration failed", "version", m.Version, "description", m.Description, "error", err)
			return count, err
		}
		count++
		logger.InfoContext(ctx, "migration applied", "version", m.Version, "description", m.Description, "duration", time.Since(start))
	}
	return count, nil
}

func appliedChecksums(ctx context.Context, db *sql.DB) (map[int]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT version, checksum FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]string)
	for rows.Next() {
		var (
			version  int
			checksum string
		)
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, fmt.Errorf("failed to scan schema_migrations: %w", err)
		}
		applied[version] = checksum
	}
	return applied, rows.Err()
}

func applyMigration(ctx context.Context, db *sql.DB, m Migration) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &MigrationError{Version: m.Version, Operation: "begin transaction", Err: err}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, stmt := range splitStatements(m.SQL) {
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			return &MigrationError{
				Version:   m.Version,
				Operation: fmt.Sprintf("execute statement %d", i+1),
				Err:       fmt.Errorf("%w: %v", ErrMigrationFailed, execErr),
			}
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, description, checksum, applied_at) VALUES (?, ?, ?, ?)`,
		m.Version, m.Description, m.Checksum, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return &MigrationError{Version: m.Version, Operation: "record migration", Err: err}
	}

	if err = tx.Commit(); err != nil {
		return &MigrationError{Version: m.Version, Operation: "commit transaction", Err: err}
	}
	return nil
}

// splitStatements drops "--" comment lines and splits on semicolons. Migration
// files must not put semicolons inside string literals.
func splitStatements(script string) []string {
	var body strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}

	var statements []string
	for _, stmt := range strings.Split(body.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
