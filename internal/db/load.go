package db

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dormeight/exome.report/internal/monitoring"
)

// Per-track table suffixes. Upstream pipeline stages write one table per
// track using these naming conventions.
const (
	EffectsCDSSuffix        = "_effects_cds"
	TranscriptOverlapSuffix = "_merged_ensembl_transcript_overlap"
	GWASResultsSuffix       = "_gwas_results"
)

var trackNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidTrack reports whether name is usable as a track. Track names are
// interpolated into table names, so they are restricted to identifier
// characters.
func ValidTrack(name string) bool {
	return trackNamePattern.MatchString(name)
}

// EffectsCDSTable returns the per-track coding-variant effects table name.
func EffectsCDSTable(track string) string {
	return track + EffectsCDSSuffix
}

// TranscriptOverlapTable returns the per-track Ensembl transcript overlap
// table name.
func TranscriptOverlapTable(track string) string {
	return track + TranscriptOverlapSuffix
}

// GWASResultsTable returns the per-track GWAS association results table name.
func GWASResultsTable(track string) string {
	return track + GWASResultsSuffix
}

// Tracks discovers track names by scanning sqlite_master for per-track
// tables. A track is listed once even if it has several per-track tables.
func (db *DB) Tracks() ([]string, error) {
	rows, err := db.Query(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tables: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		for _, suffix := range []string{EffectsCDSSuffix, TranscriptOverlapSuffix, GWASResultsSuffix} {
			if track, ok := strings.CutSuffix(name, suffix); ok && ValidTrack(track) {
				seen[track] = true
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tracks := make([]string, 0, len(seen))
	for track := range seen {
		tracks = append(tracks, track)
	}
	sort.Strings(tracks)
	return tracks, nil
}

// HasTable reports whether the named table exists.
func (db *DB) HasTable(name string) (bool, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return count > 0, nil
}

var columnNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadTable creates (or replaces) a table from a header and tab-separated
// style records, guessing INTEGER/REAL/TEXT column affinities from the data.
// All inserts happen in one transaction. Index columns get a plain index
// each.
func (db *DB) LoadTable(name string, columns []string, records [][]string, indexColumns []string) error {
	if !trackNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	if len(columns) == 0 {
		return fmt.Errorf("table %s needs at least one column", name)
	}
	for _, col := range columns {
		if !columnNamePattern.MatchString(col) {
			return fmt.Errorf("invalid column name %q for table %s", col, name)
		}
	}
	for i, rec := range records {
		if len(rec) != len(columns) {
			return fmt.Errorf("record %d has %d fields, header has %d", i+1, len(rec), len(columns))
		}
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = fmt.Sprintf("%s %s", col, guessAffinity(records, i))
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, name)); err != nil {
		return fmt.Errorf("failed to drop existing table %s: %w", name, err)
	}
	createStmt := fmt.Sprintf(`CREATE TABLE %q (%s)`, name, strings.Join(defs, ", "))
	if _, err := tx.Exec(createStmt); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insert, err := tx.Prepare(fmt.Sprintf(
		`INSERT INTO %q (%s) VALUES (%s)`, name, strings.Join(columns, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("failed to prepare insert for %s: %w", name, err)
	}
	defer insert.Close()

	for _, rec := range records {
		args := make([]interface{}, len(rec))
		for i, field := range rec {
			args[i] = field
		}
		if _, err := insert.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", name, err)
		}
	}

	for _, col := range indexColumns {
		if !columnNamePattern.MatchString(col) {
			return fmt.Errorf("invalid index column %q for table %s", col, name)
		}
		stmt := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %q ON %q (%s)`,
			"idx_"+name+"_"+col, name, col)
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to index %s.%s: %w", name, col, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit load of %s: %w", name, err)
	}

	monitoring.Logf("loaded table %s: %d rows, %d columns", name, len(records), len(columns))
	return nil
}

// LoadTabFile loads a tab-separated file with a header line into a table.
// Comment lines starting with '#' are skipped; missing fields load as empty
// strings, and fields beyond the header are dropped with a warning.
func (db *DB) LoadTabFile(path, tableName string, indexColumns []string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var columns []string
	var records [][]string
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if columns == nil {
			columns = normaliseColumns(fields)
			continue
		}
		if len(fields) > len(columns) {
			monitoring.Warnf("%s line %d: %d fields but header has %d, dropping extra fields",
				path, lineNo, len(fields), len(columns))
			fields = fields[:len(columns)]
		}
		for len(fields) < len(columns) {
			fields = append(fields, "")
		}
		records = append(records, fields)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if columns == nil {
		return fmt.Errorf("%s has no header line", path)
	}

	return db.LoadTable(tableName, columns, records, indexColumns)
}

// normaliseColumns lowercases headers and replaces characters that are not
// valid in identifiers, matching what the upstream loaders produce.
func normaliseColumns(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		col := strings.ToLower(strings.TrimSpace(f))
		col = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
				return r
			default:
				return '_'
			}
		}, col)
		if col == "" || (col[0] >= '0' && col[0] <= '9') {
			col = "column_" + strconv.Itoa(i+1)
		}
		out[i] = col
	}
	return out
}

// guessAffinity picks INTEGER, REAL or TEXT for column i by inspecting every
// record. Empty fields are ignored; an empty column defaults to TEXT.
func guessAffinity(records [][]string, i int) string {
	affinity := ""
	for _, rec := range records {
		field := strings.TrimSpace(rec[i])
		if field == "" {
			continue
		}
		if _, err := strconv.ParseInt(field, 10, 64); err == nil {
			if affinity == "" {
				affinity = "INTEGER"
			}
			continue
		}
		if _, err := strconv.ParseFloat(field, 64); err == nil {
			if affinity == "" || affinity == "INTEGER" {
				affinity = "REAL"
			}
			continue
		}
		return "TEXT"
	}
	if affinity == "" {
		return "TEXT"
	}
	return affinity
}
