package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dormeight/exome.report/internal/db"
	"github.com/dormeight/exome.report/internal/report"
	"github.com/dormeight/exome.report/internal/tracker"
)

// trackerErrorStatus maps tracker call failures to HTTP statuses: rejected
// track names are the client's fault, absent data is a 404, anything else
// is a server error.
func trackerErrorStatus(err error) int {
	switch {
	case errors.Is(err, tracker.ErrBadTrack):
		return http.StatusBadRequest
	case errors.Is(err, tracker.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// trackerInfo is the listing entry for one registered tracker.
type trackerInfo struct {
	Name   string   `json:"name"`
	Slices []string `json:"slices,omitempty"`
	Tracks []string `json:"tracks"`
}

func (s *Server) listTrackers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	infos := make([]trackerInfo, 0)
	for _, t := range s.registry.All() {
		tracks, err := t.Tracks(r.Context())
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if tracks == nil {
			tracks = []string{}
		}
		infos = append(infos, trackerInfo{Name: t.Name(), Slices: t.Slices(), Tracks: tracks})
	}
	s.writeJSON(w, infos)
}

// showTracker serves one tracker call: ?name=...&track=...[&slice=...]
// [&format=json|tsv]. The response preserves the tracker's label order.
func (s *Server) showTracker(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	name := r.URL.Query().Get("name")
	track := r.URL.Query().Get("track")
	slice := r.URL.Query().Get("slice")
	if name == "" || track == "" {
		s.writeJSONError(w, http.StatusBadRequest, "name and track parameters are required")
		return
	}

	t, err := s.registry.Get(name)
	if err != nil {
		s.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	result, err := t.Call(r.Context(), track, slice)
	if err != nil {
		s.writeJSONError(w, trackerErrorStatus(err), err.Error())
		return
	}

	if r.URL.Query().Get("format") == "tsv" {
		w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
		if err := report.WriteTSV(w, result); err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := report.WriteJSON(w, result); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) listTracks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	tracks, err := s.db.Tracks()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tracks == nil {
		tracks = []string{}
	}
	s.writeJSON(w, tracks)
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSON(w, s.cfg.Flatten())
}

func (s *Server) showStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	stats, err := s.db.GetDatabaseStats()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, stats)
}

func (s *Server) listReportRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.db.ListReportRuns(limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []db.ReportRun{}
	}
	s.writeJSON(w, runs)
}

// chartTracker renders one tracker call as a standalone bar chart page.
func (s *Server) chartTracker(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	name := r.URL.Query().Get("name")
	track := r.URL.Query().Get("track")
	slice := r.URL.Query().Get("slice")
	if name == "" || track == "" {
		s.writeJSONError(w, http.StatusBadRequest, "name and track parameters are required")
		return
	}

	t, err := s.registry.Get(name)
	if err != nil {
		s.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	result, err := t.Call(r.Context(), track, slice)
	if err != nil {
		s.writeJSONError(w, trackerErrorStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderChartHTML(w, name, "track: "+track, result); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
