package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dormeight/exome.report/internal/config"
	"github.com/dormeight/exome.report/internal/db"
	"github.com/dormeight/exome.report/internal/monitoring"
	"github.com/dormeight/exome.report/internal/tracker"
)

// ANSI escape codes for access log colouring
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db       *db.DB
	registry *tracker.Registry
	cfg      *config.PipelineConfig
}

func NewServer(database *db.DB, registry *tracker.Registry, cfg *config.PipelineConfig) *Server {
	return &Server{
		db:       database,
		registry: registry,
		cfg:      cfg,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/trackers", s.listTrackers)
	mux.HandleFunc("/api/tracker", s.showTracker)
	mux.HandleFunc("/api/tracks", s.listTracks)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/api/stats", s.showStats)
	mux.HandleFunc("/api/report_runs", s.listReportRuns)
	mux.HandleFunc("/charts/tracker", s.chartTracker)
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("failed to encode response: %v", err)
	}
}
