package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dormeight/exome.report/internal/config"
	"github.com/dormeight/exome.report/internal/db"
	"github.com/dormeight/exome.report/internal/tracker"
)

func setupTestServer(t *testing.T) (*Server, *db.DB) {
	t.Helper()

	d, err := db.NewDB(filepath.Join(t.TempDir(), "csvdb"))
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if _, err := d.Exec(
		`INSERT INTO polyphen_map (track, snp_id, gene_id, protein_id, prediction, score)
		 VALUES ('NA12878', 'rs001', 'ENSG01', 'ENSP01', 'benign', 0.01)`); err != nil {
		t.Fatalf("failed to seed polyphen_map: %v", err)
	}

	cfg := config.Default()
	return NewServer(d, tracker.DefaultRegistry(d, cfg), cfg), d
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	return rec
}

func TestListTrackers(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/trackers")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var infos []struct {
		Name   string   `json:"name"`
		Tracks []string `json:"tracks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(infos) != 7 {
		t.Errorf("got %d trackers, want 7", len(infos))
	}

	found := false
	for _, info := range infos {
		if info.Name == "polyphen_summary" {
			found = true
			if len(info.Tracks) != 1 || info.Tracks[0] != "NA12878" {
				t.Errorf("polyphen_summary tracks = %v, want [NA12878]", info.Tracks)
			}
		}
	}
	if !found {
		t.Error("polyphen_summary missing from tracker listing")
	}
}

func TestShowTrackerJSONOrdered(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/tracker?name=polyphen_summary&track=NA12878")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	body := strings.TrimSpace(rec.Body.String())
	want := `[{"label":"benign","value":1},{"label":"possibly damaging","value":0},` +
		`{"label":"probably damaging","value":0},{"label":"unknown","value":0}]`
	if body != want {
		t.Errorf("body = %s, want %s", body, want)
	}
}

func TestShowTrackerTSV(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/tracker?name=polyphen_summary&track=NA12878&format=tsv")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/tab-separated-values") {
		t.Errorf("Content-Type = %s", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "label\tvalue\nbenign\t1\n") {
		t.Errorf("unexpected TSV body:\n%s", rec.Body.String())
	}
}

func TestShowTrackerErrors(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/tracker")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing params: status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/tracker?name=nope&track=NA12878")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown tracker: status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/tracker?name=transcript_overlap&track=NA12878")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing per-track table: status = %d, want 404: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodGet, "/api/tracker?name=transcript_overlap&track=bad%3Btrack")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid track name: status = %d, want 400: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodPost, "/api/tracker?name=polyphen_summary&track=NA12878")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST: status = %d, want 405", rec.Code)
	}
}

func TestChartTrackerErrorStatuses(t *testing.T) {
	s, _ := setupTestServer(t)

	// the chart route classifies tracker failures the same way /api/tracker does
	rec := doRequest(t, s, http.MethodGet, "/charts/tracker?name=transcript_overlap&track=NA12878")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing per-track table: status = %d, want 404: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodGet, "/charts/tracker?name=transcript_overlap&track=bad%3Btrack")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid track name: status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestListTracks(t *testing.T) {
	s, d := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/tracks")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty track list, got %s", rec.Body.String())
	}

	// per-track tables make tracks appear
	if err := d.LoadTable(db.EffectsCDSTable("NA12878"),
		[]string{"snp_id", "gene_id", "transcript_id", "consequence", "aa_change"},
		[][]string{{"rs001", "ENSG01", "ENST01", "synonymous", ""}}, nil); err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/tracks")
	var tracks []string
	if err := json.Unmarshal(rec.Body.Bytes(), &tracks); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(tracks) != 1 || tracks[0] != "NA12878" {
		t.Errorf("tracks = %v, want [NA12878]", tracks)
	}
}

func TestShowConfig(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/config")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var flat map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &flat); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if flat["dedup_method"] != "picard" {
		t.Errorf("dedup_method = %v, want picard", flat["dedup_method"])
	}
}

func TestShowStats(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var stats db.DatabaseStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(stats.Tables) == 0 {
		t.Error("expected tables in stats")
	}
}

func TestListReportRuns(t *testing.T) {
	s, d := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/report_runs")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty runs list, got %s", rec.Body.String())
	}

	if err := d.CreateReportRun(&db.ReportRun{Dir: "report", TrackerCount: 1, TrackCount: 1}); err != nil {
		t.Fatalf("CreateReportRun failed: %v", err)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/report_runs?limit=5")
	var runs []db.ReportRun
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs, want 1", len(runs))
	}

	rec = doRequest(t, s, http.MethodGet, "/api/report_runs?limit=bogus")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d, want 400", rec.Code)
	}
}

func TestChartTracker(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/charts/tracker?name=polyphen_summary&track=NA12878")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "polyphen_summary") {
		t.Error("chart page should mention the tracker name")
	}

	rec = doRequest(t, s, http.MethodGet, "/charts/tracker?name=nope&track=NA12878")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown tracker: status = %d, want 404", rec.Code)
	}
}
