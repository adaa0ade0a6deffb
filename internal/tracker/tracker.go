// Package tracker implements report-data providers: stateless units that map
// a named data track to an ordered label/value table derived from one SQL
// statement against the pipeline results database.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for classifying tracker failures. Handlers match on
// these with errors.Is instead of parsing messages.
var (
	// ErrBadTrack marks a track name that cannot be used in a query.
	ErrBadTrack = errors.New("invalid track name")
	// ErrNotFound marks a track, table or row the upstream pipeline has
	// not produced.
	ErrNotFound = errors.New("not found")
)

// Row is one labelled entry of a tracker result. Values are counts, floats,
// strings or small row tuples, depending on the tracker.
type Row struct {
	Label string      `json:"label"`
	Value interface{} `json:"value"`
}

// Result is an ordered label -> value mapping. Order is fixed by the tracker
// that produced it (its SQL ORDER BY or CASE clause) and survives JSON
// serialisation, which a plain map would not guarantee.
type Result struct {
	rows  []Row
	index map[string]int
}

func NewResult() *Result {
	return &Result{index: make(map[string]int)}
}

// Append adds a labelled value, keeping insertion order. Appending an
// existing label replaces its value in place.
func (r *Result) Append(label string, value interface{}) {
	if i, ok := r.index[label]; ok {
		r.rows[i].Value = value
		return
	}
	r.index[label] = len(r.rows)
	r.rows = append(r.rows, Row{Label: label, Value: value})
}

// Get returns the value for label and whether it is present.
func (r *Result) Get(label string) (interface{}, bool) {
	i, ok := r.index[label]
	if !ok {
		return nil, false
	}
	return r.rows[i].Value, true
}

// Labels returns the labels in result order.
func (r *Result) Labels() []string {
	labels := make([]string, len(r.rows))
	for i, row := range r.rows {
		labels[i] = row.Label
	}
	return labels
}

// Rows returns the rows in result order.
func (r *Result) Rows() []Row {
	return r.rows
}

func (r *Result) Len() int {
	return len(r.rows)
}

// MarshalJSON serialises the result as an ordered array of rows.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.rows)
}

// Tracker is a report-data provider. Implementations are stateless: Call
// issues one read-only query and reshapes the rows, propagating any SQL or
// lookup failure to the caller.
type Tracker interface {
	// Name identifies the tracker in the registry and the API.
	Name() string
	// Tracks lists the data tracks this tracker can be called with.
	Tracks(ctx context.Context) ([]string, error)
	// Slices lists the optional subset names Call accepts, if fixed.
	// A nil return means the tracker takes no slice or a free-form one.
	Slices() []string
	// Call maps one track (and optional slice) to an ordered result.
	Call(ctx context.Context, track, slice string) (*Result, error)
}

// Registry holds the known trackers by name. Registration happens at
// startup; lookups afterwards are read-only.
type Registry struct {
	trackers map[string]Tracker
}

func NewRegistry() *Registry {
	return &Registry{trackers: make(map[string]Tracker)}
}

// Register adds a tracker. Duplicate names are a programming error.
func (reg *Registry) Register(t Tracker) error {
	name := t.Name()
	if _, ok := reg.trackers[name]; ok {
		return fmt.Errorf("tracker %q already registered", name)
	}
	reg.trackers[name] = t
	return nil
}

// Get returns the named tracker.
func (reg *Registry) Get(name string) (Tracker, error) {
	t, ok := reg.trackers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tracker %q", name)
	}
	return t, nil
}

// Names returns the registered tracker names, sorted.
func (reg *Registry) Names() []string {
	names := make([]string, 0, len(reg.trackers))
	for name := range reg.trackers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the trackers in name order.
func (reg *Registry) All() []Tracker {
	all := make([]Tracker, 0, len(reg.trackers))
	for _, name := range reg.Names() {
		all = append(all, reg.trackers[name])
	}
	return all
}
