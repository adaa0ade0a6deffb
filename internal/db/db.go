package db

import (
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// OpenDB opens the SQLite database at path without touching the schema.
// Migrations manage the schema; use NewDB to open and migrate in one step.
func OpenDB(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time keeps modernc/sqlite happy under concurrent
	// report generation.
	sqldb.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := sqldb.Exec(p); err != nil {
			sqldb.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	return &DB{sqldb}, nil
}

// NewDB opens the database and applies all pending migrations.
func NewDB(path string) (*DB, error) {
	database, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	migrationsFS, err := getMigrationsFS()
	if err != nil {
		database.Close()
		return nil, err
	}
	if err := database.MigrateUp(migrationsFS); err != nil {
		database.Close()
		return nil, err
	}

	return database, nil
}

// TableStats describes one table in the database stats summary.
type TableStats struct {
	Name string `json:"name"`
	Rows int64  `json:"rows"`
}

// DatabaseStats summarises table sizes for the /api/stats endpoint.
type DatabaseStats struct {
	TotalSizeMB float64      `json:"total_size_mb"`
	Tables      []TableStats `json:"tables"`
}

// GetDatabaseStats returns per-table row counts sorted by row count
// descending, plus the total database size on disk.
func (db *DB) GetDatabaseStats() (*DatabaseStats, error) {
	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return nil, fmt.Errorf("failed to read page_count: %w", err)
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, fmt.Errorf("failed to read page_size: %w", err)
	}

	rows, err := db.Query(
		`SELECT name FROM sqlite_master
		 WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != 'schema_migrations'
		 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats := &DatabaseStats{
		TotalSizeMB: float64(pageCount*pageSize) / (1024 * 1024),
	}
	for _, name := range names {
		var count int64
		if err := db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %q`, name)).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to count rows in %s: %w", name, err)
		}
		stats.Tables = append(stats.Tables, TableStats{Name: name, Rows: count})
	}

	sort.Slice(stats.Tables, func(i, j int) bool {
		if stats.Tables[i].Rows != stats.Tables[j].Rows {
			return stats.Tables[i].Rows > stats.Tables[j].Rows
		}
		return stats.Tables[i].Name < stats.Tables[j].Name
	})

	return stats, nil
}
