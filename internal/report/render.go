// Package report formats tracker results for presentation: flat tables for
// download, echarts pages for browsing, and full report runs on disk.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dormeight/exome.report/internal/tracker"
)

// WriteTSV writes a result as a two-column tab-separated table with a
// header, preserving the tracker's label order. Tuple values serialise as
// compact JSON.
func WriteTSV(w io.Writer, result *tracker.Result) error {
	if _, err := io.WriteString(w, "label\tvalue\n"); err != nil {
		return err
	}
	for _, row := range result.Rows() {
		field, err := formatValue(row.Value)
		if err != nil {
			return fmt.Errorf("failed to format value for %s: %w", row.Label, err)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", row.Label, field); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes a result as an ordered JSON array of label/value rows.
func WriteJSON(w io.Writer, result *tracker.Result) error {
	enc := json.NewEncoder(w)
	return enc.Encode(result)
}

func formatValue(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case int:
		return strconv.Itoa(val), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// numericValue extracts a chartable number from a result value.
func numericValue(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case float64:
		return val, true
	default:
		return 0, false
	}
}
