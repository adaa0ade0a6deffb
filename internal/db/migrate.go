package db

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/dormeight/exome.report/internal/monitoring"
)

// MigrateUp runs all pending migrations up to the latest version.
// Returns nil if no migrations were needed (already at latest version).
func (db *DB) MigrateUp(migrationsFS fs.FS) error {
	m, err := db.newMigrate(migrationsFS)
	if err != nil {
		return err
	}
	// Note: we don't close m here because it would close the underlying DB
	// connection.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	return nil
}

// MigrateDown rolls back the most recent migration.
func (db *DB) MigrateDown(migrationsFS fs.FS) error {
	m, err := db.newMigrate(migrationsFS)
	if err != nil {
		return err
	}

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}

	return nil
}

// MigrateVersion returns the current migration version and dirty state.
// Returns 0, false, nil if no migrations have been applied yet.
func (db *DB) MigrateVersion(migrationsFS fs.FS) (version uint, dirty bool, err error) {
	m, err := db.newMigrate(migrationsFS)
	if err != nil {
		return 0, false, err
	}

	version, dirty, err = m.Version()
	if err != nil && errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}

	return version, dirty, err
}

// MigrateForce forces the migration version to a specific value.
// This should only be used to recover from a dirty migration state.
func (db *DB) MigrateForce(migrationsFS fs.FS, version int) error {
	m, err := db.newMigrate(migrationsFS)
	if err != nil {
		return err
	}

	if err := m.Force(version); err != nil {
		return fmt.Errorf("force migration to version %d failed: %w", version, err)
	}

	return nil
}

// MigrateTo migrates up or down to a specific version.
func (db *DB) MigrateTo(migrationsFS fs.FS, version uint) error {
	m, err := db.newMigrate(migrationsFS)
	if err != nil {
		return err
	}

	if err := m.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration to version %d failed: %w", version, err)
	}

	return nil
}

// ensureSchemaMigrationsTable creates the golang-migrate bookkeeping table
// when it is missing. Baselining needs it before any migration has run.
func (db *DB) ensureSchemaMigrationsTable() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER NOT NULL,
			dirty INTEGER NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS version_unique ON schema_migrations (version);
	`)
	return err
}

// BaselineAtVersion records the schema version without running any
// migrations. This is for a pipeline database that already carries the
// schema from that version, typically one populated before this tool
// managed migrations.
func (db *DB) BaselineAtVersion(version uint) error {
	if err := db.ensureSchemaMigrationsTable(); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		return fmt.Errorf("failed to check existing migrations: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("database already has migrations applied, cannot baseline")
	}

	if _, err := db.Exec("INSERT INTO schema_migrations (version, dirty) VALUES (?, 0)", version); err != nil {
		return fmt.Errorf("failed to insert baseline version: %w", err)
	}

	monitoring.Logf("database baselined at version %d", version)
	return nil
}

// GetMigrationStatus reports bookkeeping facts useful for diagnostics.
func (db *DB) GetMigrationStatus(migrationsFS fs.FS) (map[string]interface{}, error) {
	status := make(map[string]interface{})

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'`,
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to check schema_migrations table: %w", err)
	}
	status["schema_migrations_exists"] = count > 0

	return status, nil
}

// newMigrate creates a migrate instance backed by the given source
// filesystem and this database connection.
func (db *DB) newMigrate(migrationsFS fs.FS) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}
