package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dormeight/exome.report/internal/api"
	"github.com/dormeight/exome.report/internal/config"
	"github.com/dormeight/exome.report/internal/db"
	"github.com/dormeight/exome.report/internal/report"
	"github.com/dormeight/exome.report/internal/tracker"
	"github.com/dormeight/exome.report/internal/version"
)

var (
	dbPath     = flag.String("db", "csvdb", "Path to the pipeline results database")
	configPath = flag.String("config", config.DefaultConfigPath, "Path to the pipeline configuration file")
	listen     = flag.String("listen", ":8080", "Listen address for the serve command")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: exome-report [flags] <command> [args]

Commands:
  serve                     Serve tracker results over HTTP
  migrate <action>          Manage the database schema (see 'migrate help')
  load <file> <table> [index-column ...]
                            Load a tab-separated results file into a table
  report                    Generate report tables and charts for all tracks
  trackers                  List registered trackers and their tracks
  tracks                    List discovered data tracks
  version                   Print the build version

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "serve":
		runServe()

	case "migrate":
		db.RunMigrateCommand(args[1:], *dbPath)

	case "load":
		if len(args) < 3 {
			log.Fatal("Usage: exome-report load <file> <table> [index-column ...]")
		}
		runLoad(args[1], args[2], args[3:])

	case "report":
		runReport()

	case "trackers":
		runTrackers()

	case "tracks":
		runTracks()

	case "version":
		fmt.Println(version.String())

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		usage()
		os.Exit(1)
	}
}

// loadConfig reads the pipeline configuration, falling back to defaults when
// the file does not exist.
func loadConfig() *config.PipelineConfig {
	cfg, err := config.Load(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("no config file at %s, using defaults", *configPath)
		return config.Default()
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func openDB() *db.DB {
	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	return database
}

func runServe() {
	cfg := loadConfig()
	database := openDB()
	defer database.Close()

	registry := tracker.DefaultRegistry(database, cfg)
	server := api.NewServer(database, registry, cfg)

	mux := server.ServeMux()
	database.AttachAdminRoutes(mux)

	httpServer := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("%s listening on %s", version.String(), *listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Print("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func runLoad(file, table string, indexColumns []string) {
	database := openDB()
	defer database.Close()

	if err := database.LoadTabFile(file, table, indexColumns); err != nil {
		log.Fatalf("load failed: %v", err)
	}
}

func runReport() {
	cfg := loadConfig()
	database := openDB()
	defer database.Close()

	gen := &report.Generator{
		DB:       database,
		Registry: tracker.DefaultRegistry(database, cfg),
		Dir:      cfg.Report.Dir,
	}
	run, err := gen.Run(context.Background())
	if err != nil {
		log.Fatalf("report generation failed: %v", err)
	}
	fmt.Printf("report %s written to %s (%d trackers, %d tracks)\n",
		run.RunID, run.Dir, run.TrackerCount, run.TrackCount)
}

func runTrackers() {
	cfg := loadConfig()
	database := openDB()
	defer database.Close()

	registry := tracker.DefaultRegistry(database, cfg)
	ctx := context.Background()
	for _, t := range registry.All() {
		tracks, err := t.Tracks(ctx)
		if err != nil {
			log.Fatalf("failed to list tracks for %s: %v", t.Name(), err)
		}
		fmt.Printf("%s\ttracks=%d", t.Name(), len(tracks))
		if slices := t.Slices(); len(slices) > 0 {
			fmt.Printf("\tslices=%v", slices)
		}
		fmt.Println()
	}
}

func runTracks() {
	database := openDB()
	defer database.Close()

	tracks, err := database.Tracks()
	if err != nil {
		log.Fatalf("failed to list tracks: %v", err)
	}
	for _, track := range tracks {
		fmt.Println(track)
	}
}
