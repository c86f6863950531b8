package grade

import (
	"context"
	"fmt"
	"strings"

	"autograde/internal/config"
	"autograde/internal/errors"
	"autograde/internal/logging"
	"autograde/internal/project"
	"autograde/internal/runner"
)

// ByUnitTestGrader runs the project's JUnit tests and grades by the
// fraction of passing tests. With an expected-tests list configured, only
// the listed methods count and a listed method that never ran counts as a
// failure; extra tests outside the list are ignored.
type ByUnitTestGrader struct {
	base
	testFiles     []string
	expectedTests []string
}

func NewByUnitTestGrader() *ByUnitTestGrader {
	return &ByUnitTestGrader{}
}

func (g *ByUnitTestGrader) Project(p *project.Project) *ByUnitTestGrader { g.project = p; return g }
func (g *ByUnitTestGrader) Requirement(name string) *ByUnitTestGrader { g.req = name; return g }
func (g *ByUnitTestGrader) OutOf(points float64) *ByUnitTestGrader { g.outOf = points; return g }
func (g *ByUnitTestGrader) Config(cfg *config.Config) *ByUnitTestGrader { g.cfg = cfg; return g }
func (g *ByUnitTestGrader) Logger(l *logging.Logger) *ByUnitTestGrader { g.logger = l; return g }

// TestFiles names the test classes to run, by any name Lookup resolves.
func (g *ByUnitTestGrader) TestFiles(names ...string) *ByUnitTestGrader {
	g.testFiles = append(g.testFiles, names...)
	return g
}

// ExpectedTests restricts grading to the listed test methods. Names may be
// bare method names or the Class#method form.
func (g *ByUnitTestGrader) ExpectedTests(names ...string) *ByUnitTestGrader {
	g.expectedTests = append(g.expectedTests, names...)
	return g
}

// ConfigErr exposes the sticky configuration error for inspection before
// Run.
func (g *ByUnitTestGrader) ConfigErr() error { return g.err }

func (g *ByUnitTestGrader) Run(ctx context.Context) (*GradeResult, error) {
	if err := g.validate("unit test grader"); err != nil {
		return nil, err
	}
	if len(g.testFiles) == 0 {
		return nil, errors.New(errors.ConfigError, "unit test grader: no test files set", nil)
	}

	classSelectors := make([]string, 0, len(g.testFiles))
	declared := make(map[string]bool)
	for _, name := range g.testFiles {
		f, err := g.project.Lookup(name)
		if err != nil {
			return nil, err
		}
		classSelectors = append(classSelectors, f.LogicalName())
		// Static discovery is best effort: builds without structural
		// support still grade from the runner's report alone.
		if methods, err := f.TestMethods(ctx); err == nil {
			for _, m := range methods {
				declared[m] = true
			}
		}
	}

	if undeclared := g.missingDeclarations(declared); len(undeclared) > 0 && g.logger != nil {
		g.logger.Warn("expected tests not declared in any test file", map[string]interface{}{
			"requirement": g.req, "tests": strings.Join(undeclared, ", "),
		})
	}

	r := runner.For(g.project, g.cfg, g.logger)
	res, err := r.RunTests(ctx, classSelectors, nil)
	if err != nil {
		if degraded := g.compileDiagnostics(err); degraded != nil {
			return degraded, nil
		}
		return nil, attachPartialOutput(err, res)
	}

	report, err := runner.ParseReport(res.Stdout + "\n" + res.Stderr)
	if err != nil {
		return g.reportParseFailure(res.Stdout + "\n" + res.Stderr), nil
	}

	passed, total, missing := g.score(report)
	if total == 0 {
		return g.zeroResult("no tests were found to run", nil), nil
	}

	result := &GradeResult{
		Requirement: g.req,
		Grade:       g.outOf * float64(passed) / float64(total),
		OutOf:       g.outOf,
		Reason:      fmt.Sprintf("%d of %d tests passed", passed, total),
	}

	if passed < total {
		t := newTranscript(g.cfg)
		t.instructor(fmt.Sprintf("%d of %d tests passed. Test runner output:", passed, total))
		t.student(res.Stdout)
		if len(missing) > 0 {
			t.instructor("These expected tests never ran: " + strings.Join(missing, ", "))
		}
		t.describeProject(ctx, g.project)
		result.Prompt = t.messages()
	}

	if g.logger != nil {
		g.logger.Info("unit test grading finished", map[string]interface{}{
			"requirement": g.req, "passed": passed, "total": total,
		})
	}
	return result, nil
}

// reportParseFailure builds the degraded result for runner output the
// report parser cannot interpret. The raw output goes into the reason as
// well as the transcript, truncated to the prompt budget.
func (g *ByUnitTestGrader) reportParseFailure(raw string) *GradeResult {
	t := newTranscript(g.cfg)
	t.instructor("The test runner produced output that could not be interpreted:")
	t.student(raw)
	reason := "could not interpret the test runner output: " +
		truncate(strings.TrimSpace(raw), g.cfg.Prompt.TruncateBytes)
	return g.zeroResult(reason, t.messages())
}

// missingDeclarations returns the expected tests that static discovery did
// not find in any test file. Empty discovery disables the check.
func (g *ByUnitTestGrader) missingDeclarations(declared map[string]bool) []string {
	if len(declared) == 0 {
		return nil
	}
	var out []string
	for _, name := range g.expectedTests {
		method := name
		if i := strings.IndexByte(name, '#'); i >= 0 {
			method = name[i+1:]
		}
		if !declared[method] {
			out = append(out, name)
		}
	}
	return out
}

// score counts passing tests against the effective total. missing lists
// expected tests absent from the report.
func (g *ByUnitTestGrader) score(report *runner.Report) (passed, total int, missing []string) {
	if len(g.expectedTests) == 0 {
		return report.Successful, report.Found, nil
	}

	total = len(g.expectedTests)
	for _, name := range g.expectedTests {
		method := name
		if i := strings.IndexByte(name, '#'); i >= 0 {
			method = name[i+1:]
		}
		switch {
		case report.Passed(method):
			passed++
		case !report.Ran(method):
			missing = append(missing, name)
		}
	}
	return passed, total, missing
}
