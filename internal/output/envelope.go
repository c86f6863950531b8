// Package output assembles grading results into a stable envelope and
// writes it as JSON (optionally gzip-compressed) or a human table.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"autograde/internal/errors"
	"autograde/internal/grade"
)

// Total sums the scores of all requirements in an envelope.
type Total struct {
	Grade float64 `json:"grade"`
	OutOf float64 `json:"out_of"`
}

// Envelope is the serialized outcome of one grading run.
type Envelope struct {
	RunID     string               `json:"run_id"`
	CreatedAt time.Time            `json:"created_at"`
	Project   string               `json:"project"`
	Results   []*grade.GradeResult `json:"results"`
	Total     Total                `json:"total"`
}

// NewEnvelope wraps results with a fresh run ID and summed totals.
func NewEnvelope(projectRoot string, results []*grade.GradeResult) *Envelope {
	env := &Envelope{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Project:   projectRoot,
		Results:   results,
	}
	for _, r := range results {
		env.Total.Grade += r.Grade
		env.Total.OutOf += r.OutOf
	}
	return env
}

// WriteJSON writes the envelope as indented JSON.
func WriteJSON(w io.Writer, env *Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return errors.New(errors.InternalError, "encoding results", err)
	}
	return nil
}

// WriteFile writes the envelope to path, gzip-compressing when the path
// ends in .gz.
func WriteFile(path string, env *Envelope) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.New(errors.InternalError, "creating "+path, err)
	}
	defer f.Close()

	var w io.Writer = f
	if filepath.Ext(path) == ".gz" {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}
	return WriteJSON(w, env)
}

// RenderTable writes a human-readable summary.
func RenderTable(w io.Writer, env *Envelope) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REQUIREMENT\tGRADE\tREASON")
	for _, r := range env.Results {
		fmt.Fprintf(tw, "%s\t%.2f/%.2f\t%s\n", r.Requirement, r.Grade, r.OutOf, firstLine(r.Reason))
	}
	fmt.Fprintf(tw, "TOTAL\t%.2f/%.2f\t\n", env.Total.Grade, env.Total.OutOf)
	return tw.Flush()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
