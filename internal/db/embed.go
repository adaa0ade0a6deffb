package db

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// getMigrationsFS returns the embedded migrations filesystem rooted at the
// directory containing the SQL files.
func getMigrationsFS() (fs.FS, error) {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to access embedded migrations: %w", err)
	}
	return sub, nil
}
