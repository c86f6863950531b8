package runner

import (
	"regexp"
	"strconv"
	"strings"
)

// Diagnostic is one structured javac message.
type Diagnostic struct {
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// javac reports "path:line: severity: message"; on Windows the path itself
// contains a drive colon, so anchor on the numeric line instead.
var diagnosticLine = regexp.MustCompile(`^(.+):(\d+): (error|warning|note): (.+)$`)

// ParseDiagnostics extracts structured diagnostics from javac output. Lines
// that do not look like diagnostics (source excerpts, carets, summaries)
// are ignored; the verbatim output remains the source of truth.
func ParseDiagnostics(output string) []Diagnostic {
	var diags []Diagnostic
	for _, line := range strings.Split(output, "\n") {
		m := diagnosticLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		diags = append(diags, Diagnostic{
			Path:     m[1],
			Line:     n,
			Severity: m[3],
			Message:  m[4],
		})
	}
	return diags
}
