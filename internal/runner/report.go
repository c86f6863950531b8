package runner

import (
	"regexp"
	"strconv"

	"autograde/internal/errors"
)

// TestOutcome is one test method's result from a JUnit console run.
type TestOutcome struct {
	Name   string
	Passed bool
}

// Report is the parsed outcome of a JUnit console run.
type Report struct {
	Outcomes   []TestOutcome
	Found      int
	Successful int
	Failed     int
	Skipped    int
	Aborted    int
}

// Passed reports whether the named test ran and succeeded.
func (r *Report) Passed(name string) bool {
	for _, o := range r.Outcomes {
		if o.Name == name {
			return o.Passed
		}
	}
	return false
}

// Ran reports whether the named test appears in the report at all.
func (r *Report) Ran(name string) bool {
	for _, o := range r.Outcomes {
		if o.Name == name {
			return true
		}
	}
	return false
}

var (
	// Tree detail lines look like "│  ├─ testClear() ✔" for a pass and
	// "✘ expected: <true>..." for a failure. Only method entries carry the
	// trailing parentheses; class containers do not.
	detailLine = regexp.MustCompile(`([\w$]+)\(\)\s*(✔|✘)`)

	// Summary lines look like "[         3 tests successful      ]".
	summaryLine = regexp.MustCompile(`\[\s*(\d+) tests? (found|successful|failed|skipped|aborted)\s*\]`)
)

// ParseReport extracts per-test outcomes and summary counts from the JUnit
// console output. Output that carries no recognizable summary is a
// ReportParseError; callers degrade to a zero grade with the raw output.
func ParseReport(output string) (*Report, error) {
	report := &Report{}

	for _, m := range detailLine.FindAllStringSubmatch(output, -1) {
		report.Outcomes = append(report.Outcomes, TestOutcome{
			Name:   m[1],
			Passed: m[2] == "✔",
		})
	}

	sawSummary := false
	for _, m := range summaryLine.FindAllStringSubmatch(output, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		sawSummary = true
		switch m[2] {
		case "found":
			report.Found = n
		case "successful":
			report.Successful = n
		case "failed":
			report.Failed = n
		case "skipped":
			report.Skipped = n
		case "aborted":
			report.Aborted = n
		}
	}

	if !sawSummary {
		return nil, errors.New(errors.ReportParseError,
			"no test summary found in runner output", nil).WithDetails(output)
	}
	return report, nil
}
