package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"autograde/internal/grade"
)

func sampleResults() []*grade.GradeResult {
	return []*grade.GradeResult{
		{Requirement: "compiles and runs", Grade: 5, OutOf: 5, Reason: "Got expected output"},
		{Requirement: "tests pass", Grade: 7.5, OutOf: 10, Reason: "3 of 4 tests passed"},
	}
}

func TestNewEnvelope_Totals(t *testing.T) {
	env := NewEnvelope("/tmp/submission", sampleResults())

	if env.Total.Grade != 12.5 || env.Total.OutOf != 15 {
		t.Errorf("total = %.2f/%.2f, want 12.50/15.00", env.Total.Grade, env.Total.OutOf)
	}
	if env.RunID == "" {
		t.Error("run ID not assigned")
	}
	if NewEnvelope("x", nil).RunID == env.RunID {
		t.Error("run IDs must be unique per run")
	}
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, NewEnvelope("root", sampleResults())); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded Envelope
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Results) != 2 || decoded.Results[0].Requirement != "compiles and runs" {
		t.Errorf("round trip lost results: %+v", decoded.Results)
	}
}

func TestWriteFile_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json.gz")
	if err := WriteFile(path, NewEnvelope("root", sampleResults())); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("output is not gzip: %v", err)
	}
	var decoded Envelope
	if err := json.NewDecoder(gz).Decode(&decoded); err != nil {
		t.Fatalf("decompressed output is not valid JSON: %v", err)
	}
	if decoded.Total.OutOf != 15 {
		t.Errorf("total out_of = %.2f", decoded.Total.OutOf)
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTable(&buf, NewEnvelope("root", sampleResults())); err != nil {
		t.Fatalf("RenderTable failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"REQUIREMENT", "compiles and runs", "7.50/10.00", "TOTAL", "12.50/15.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
