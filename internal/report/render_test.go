package report

import (
	"strings"
	"testing"

	"github.com/dormeight/exome.report/internal/tracker"
)

func TestWriteTSV(t *testing.T) {
	result := tracker.NewResult()
	result.Append("TSS", int64(10))
	result.Append("Upstream", int64(5))
	result.Append("ts/tv", 2.1)
	result.Append("note", "ok")

	var sb strings.Builder
	if err := WriteTSV(&sb, result); err != nil {
		t.Fatalf("WriteTSV failed: %v", err)
	}

	want := "label\tvalue\n" +
		"TSS\t10\n" +
		"Upstream\t5\n" +
		"ts/tv\t2.1\n" +
		"note\tok\n"
	if sb.String() != want {
		t.Errorf("TSV output:\n%q\nwant:\n%q", sb.String(), want)
	}
}

func TestWriteTSVTupleValue(t *testing.T) {
	result := tracker.NewResult()
	result.Append("rs100", tracker.GWASHit{Chr: "1", BP: 1000, Beta: 0.12, P: 1e-10})

	var sb strings.Builder
	if err := WriteTSV(&sb, result); err != nil {
		t.Fatalf("WriteTSV failed: %v", err)
	}
	if !strings.Contains(sb.String(), `rs100	{"chr":"1","bp":1000,"beta":0.12,"p":1e-10}`) {
		t.Errorf("tuple value not serialised as JSON:\n%s", sb.String())
	}
}

func TestWriteJSONKeepsOrder(t *testing.T) {
	result := tracker.NewResult()
	result.Append("benign", int64(4))
	result.Append("probably damaging", int64(1))

	var sb strings.Builder
	if err := WriteJSON(&sb, result); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	got := strings.TrimSpace(sb.String())
	want := `[{"label":"benign","value":4},{"label":"probably damaging","value":1}]`
	if got != want {
		t.Errorf("JSON = %s, want %s", got, want)
	}
}

func TestNumericValue(t *testing.T) {
	if v, ok := numericValue(int64(3)); !ok || v != 3 {
		t.Errorf("numericValue(int64) = %v, %v", v, ok)
	}
	if v, ok := numericValue(2.5); !ok || v != 2.5 {
		t.Errorf("numericValue(float64) = %v, %v", v, ok)
	}
	if _, ok := numericValue("text"); ok {
		t.Error("numericValue(string) should not be chartable")
	}
}
