package db

import (
	"fmt"
	"io/fs"
	"log"
	"os"
)

// RunMigrateCommand handles the 'migrate' subcommand dispatching.
func RunMigrateCommand(args []string, dbPath string) {
	if len(args) < 1 {
		PrintMigrateHelp()
		os.Exit(1)
	}

	action := args[0]

	migrationsFS, err := getMigrationsFS()
	if err != nil {
		log.Fatalf("Failed to get migrations filesystem: %v", err)
	}

	// Open without running migrations; the subcommands manage the schema.
	database, err := OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	switch action {
	case "up":
		handleMigrateUp(database, migrationsFS)

	case "down":
		handleMigrateDown(database, migrationsFS)

	case "status":
		handleMigrateStatus(database, migrationsFS)

	case "version":
		if len(args) < 2 {
			log.Fatal("Usage: exome-report migrate version <version_number>")
		}
		handleMigrateVersion(database, migrationsFS, args[1])

	case "force":
		if len(args) < 2 {
			log.Fatal("Usage: exome-report migrate force <version_number>")
		}
		handleMigrateForce(database, migrationsFS, args[1])

	case "baseline":
		if len(args) < 2 {
			log.Fatal("Usage: exome-report migrate baseline <version_number>")
		}
		handleMigrateBaseline(database, args[1])

	case "help":
		PrintMigrateHelp()

	default:
		fmt.Printf("Unknown migrate action: %s\n\n", action)
		PrintMigrateHelp()
		os.Exit(1)
	}
}

func handleMigrateUp(database *DB, migrationsFS fs.FS) {
	log.Printf("Running migrations...")
	if err := database.MigrateUp(migrationsFS); err != nil {
		log.Fatalf("Migration up failed: %v", err)
	}
	log.Println("All migrations applied successfully")

	version, dirty, _ := database.MigrateVersion(migrationsFS)
	log.Printf("Current version: %d (dirty: %v)", version, dirty)
}

func handleMigrateDown(database *DB, migrationsFS fs.FS) {
	log.Printf("Rolling back one migration...")
	if err := database.MigrateDown(migrationsFS); err != nil {
		log.Fatalf("Migration down failed: %v", err)
	}
	log.Println("Migration rolled back successfully")

	version, dirty, _ := database.MigrateVersion(migrationsFS)
	log.Printf("Current version: %d (dirty: %v)", version, dirty)
}

func handleMigrateStatus(database *DB, migrationsFS fs.FS) {
	version, dirty, err := database.MigrateVersion(migrationsFS)
	if err != nil {
		log.Fatalf("Failed to get migration status: %v", err)
	}

	status, err := database.GetMigrationStatus(migrationsFS)
	if err != nil {
		log.Fatalf("Failed to get migration status: %v", err)
	}

	fmt.Println("=== Migration Status ===")
	fmt.Printf("Current version: %d\n", version)
	fmt.Printf("Dirty: %v\n", dirty)
	fmt.Printf("Schema migrations table exists: %v\n", status["schema_migrations_exists"])

	if dirty {
		fmt.Println("\nWARNING: Database is in a dirty state!")
		fmt.Println("A migration failed mid-execution. You may need to:")
		fmt.Println("  1. Inspect the database manually")
		fmt.Println("  2. Fix any issues")
		fmt.Println("  3. Run: exome-report migrate force <version>")
	}
}

func handleMigrateVersion(database *DB, migrationsFS fs.FS, versionStr string) {
	var targetVersion uint
	if _, err := fmt.Sscanf(versionStr, "%d", &targetVersion); err != nil {
		log.Fatalf("Invalid version number: %s", versionStr)
	}

	log.Printf("Migrating to version %d...", targetVersion)
	if err := database.MigrateTo(migrationsFS, targetVersion); err != nil {
		log.Fatalf("Migration to version %d failed: %v", targetVersion, err)
	}
	log.Printf("Migrated to version %d successfully", targetVersion)
}

func handleMigrateForce(database *DB, migrationsFS fs.FS, versionStr string) {
	var forceVersion int
	if _, err := fmt.Sscanf(versionStr, "%d", &forceVersion); err != nil {
		log.Fatalf("Invalid version number: %s", versionStr)
	}

	fmt.Printf("WARNING: Forcing migration version to %d\n", forceVersion)
	fmt.Println("This should only be used to recover from a dirty migration state.")
	fmt.Print("Continue? [y/N]: ")

	var response string
	fmt.Scanln(&response)
	if response != "y" && response != "Y" {
		log.Println("Aborted")
		os.Exit(0)
	}

	if err := database.MigrateForce(migrationsFS, forceVersion); err != nil {
		log.Fatalf("Force migration failed: %v", err)
	}
	log.Printf("Migration version forced to %d", forceVersion)
}

func handleMigrateBaseline(database *DB, versionStr string) {
	var baselineVersion uint
	if _, err := fmt.Sscanf(versionStr, "%d", &baselineVersion); err != nil {
		log.Fatalf("Invalid version number: %s", versionStr)
	}

	log.Printf("Baselining database at version %d...", baselineVersion)
	if err := database.BaselineAtVersion(baselineVersion); err != nil {
		log.Fatalf("Baseline failed: %v", err)
	}
	log.Printf("Database baselined at version %d", baselineVersion)
}

// PrintMigrateHelp prints usage for the migrate subcommand.
func PrintMigrateHelp() {
	fmt.Println(`Usage: exome-report migrate <action> [args]

Actions:
  up                  Apply all pending migrations
  down                Roll back the most recent migration
  status              Show current migration version and dirty state
  version <n>         Migrate up or down to version n
  force <n>           Force the recorded version to n (dirty-state recovery)
  baseline <n>        Record version n on an existing database without
                      running migrations
  help                Show this help`)
}
