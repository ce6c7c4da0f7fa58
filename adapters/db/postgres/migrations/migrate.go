// Package migrations applies the run ledger schema to PostgreSQL.
package migrations

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"creditrisk/internal/errors"
	"creditrisk/internal/logging"
)

//go:embed sql/*.sql
var migrationFS embed.FS

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		checksum TEXT NOT NULL,
		applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`

// Migrator handles database schema migrations
type Migrator struct {
	db     *sql.DB
	files  fs.FS
	logger logging.Logger
}

// NewMigrator creates a migrator over the embedded migration files
func NewMigrator(db *sql.DB, logger logging.Logger) *Migrator {
	return &Migrator{db: db, files: migrationFS, logger: logging.OrNop(logger)}
}

// MigrationFile represents a migration file
type MigrationFile struct {
	Version string
	Name    string
	Path    string
}

// MigrationStatus reports whether a migration has been applied
type MigrationStatus struct {
	MigrationFile
	Applied bool
}

// Up executes all pending migrations and returns the versions it applied
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	if _, err := m.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, errors.DatabaseError("failed to create migrations table", err)
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return nil, errors.DatabaseError("failed to get applied migrations", err)
	}

	files, err := m.findMigrationFiles()
	if err != nil {
		return nil, errors.IOError("failed to find migration files", err)
	}

	var done []string
	for _, file := range files {
		if applied[file.Version] {
			continue
		}
		if err := m.applyMigration(ctx, file); err != nil {
			return done, errors.Wrapf(err, "failed to apply migration %s", file.Version)
		}
		m.logger.Info("Applied migration: %s (%s)", file.Version, file.Name)
		done = append(done, file.Version)
	}
	return done, nil
}

// Status lists every known migration with its applied state
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if _, err := m.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, errors.DatabaseError("failed to ensure migrations table", err)
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return nil, errors.DatabaseError("failed to get applied migrations", err)
	}

	files, err := m.findMigrationFiles()
	if err != nil {
		return nil, errors.IOError("failed to find migration files", err)
	}

	statuses := make([]MigrationStatus, len(files))
	for i, file := range files {
		statuses[i] = MigrationStatus{MigrationFile: file, Applied: applied[file.Version]}
	}
	return statuses, nil
}

// getAppliedMigrations returns map of applied migration versions
func (m *Migrator) getAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// calculateChecksum computes SHA256 checksum of migration content
func calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// findMigrationFiles lists the embedded migrations sorted by version.
// Files are named NNN_description.sql.
func (m *Migrator) findMigrationFiles() ([]MigrationFile, error) {
	entries, err := fs.ReadDir(m.files, "sql")
	if err != nil {
		return nil, err
	}

	var files []MigrationFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		parts := strings.SplitN(strings.TrimSuffix(e.Name(), ".sql"), "_", 2)
		if len(parts) < 2 {
			continue // skip invalid filenames
		}
		files = append(files, MigrationFile{
			Version: parts[0],
			Name:    parts[1],
			Path:    path.Join("sql", e.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Version < files[j].Version
	})
	return files, nil
}

// applyMigration executes a single migration file in a transaction and
// records it with its checksum
func (m *Migrator) applyMigration(ctx context.Context, file MigrationFile) error {
	sqlBytes, err := fs.ReadFile(m.files, file.Path)
	if err != nil {
		return errors.IOError("failed to read migration file", err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		return errors.DatabaseError("failed to execute migration SQL", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)",
		file.Version, calculateChecksum(sqlBytes)); err != nil {
		return errors.DatabaseError("failed to record migration", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit migration", err)
	}
	return nil
}
