package grade

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"autograde/internal/config"
	"autograde/internal/errors"
	"autograde/internal/logging"
	"autograde/internal/project"
	"autograde/internal/runner"
)

// DiffCase pairs one stdin payload with the output it should produce.
type DiffCase struct {
	Input    string
	Expected string
}

// DiffGrader runs a class with a main method once per case and compares
// stdout against the expected transcript. Comparison trims surrounding
// whitespace on both sides, optionally folds case, and accepts the expected
// text as either the entire output or its leading prefix.
type DiffGrader struct {
	base
	file       string
	cases      []DiffCase
	ignoreCase bool
}

// NewDiffGrader returns an unconfigured grader. Configure it with the
// fluent setters; the first invalid setting sticks and is reported by Run.
func NewDiffGrader() *DiffGrader {
	return &DiffGrader{}
}

func (g *DiffGrader) Project(p *project.Project) *DiffGrader { g.project = p; return g }
func (g *DiffGrader) File(name string) *DiffGrader { g.file = name; return g }
func (g *DiffGrader) Requirement(name string) *DiffGrader { g.req = name; return g }
func (g *DiffGrader) OutOf(points float64) *DiffGrader { g.outOf = points; return g }
func (g *DiffGrader) IgnoreCase(ignore bool) *DiffGrader { g.ignoreCase = ignore; return g }
func (g *DiffGrader) Config(cfg *config.Config) *DiffGrader { g.cfg = cfg; return g }
func (g *DiffGrader) Logger(l *logging.Logger) *DiffGrader { g.logger = l; return g }

// Case appends a single input/expected pair.
func (g *DiffGrader) Case(input, expected string) *DiffGrader {
	g.cases = append(g.cases, DiffCase{Input: input, Expected: expected})
	return g
}

// Cases accepts any slice of (input, expected) string pairs: []DiffCase,
// [][2]string, [][]string with two elements each, or an []interface{}
// holding any mix of those. Anything else sticks as a configuration error
// reported by Run.
func (g *DiffGrader) Cases(v interface{}) *DiffGrader {
	cases, err := coerceCases(v)
	if err != nil {
		g.fail(err)
		return g
	}
	g.cases = append(g.cases, cases...)
	return g
}

// ConfigErr exposes the sticky configuration error for inspection before
// Run.
func (g *DiffGrader) ConfigErr() error { return g.err }

func coerceCases(v interface{}) ([]DiffCase, error) {
	badInput := func(got interface{}) error {
		return errors.Newf(errors.ConfigError,
			"Expected an iterable of (input, expected) string pairs, got %T", got)
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, badInput(v)
	}

	cases := make([]DiffCase, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		for elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}

		if elem.IsValid() && elem.Type() == reflect.TypeOf(DiffCase{}) {
			cases = append(cases, elem.Interface().(DiffCase))
			continue
		}
		if !elem.IsValid() || (elem.Kind() != reflect.Slice && elem.Kind() != reflect.Array) || elem.Len() != 2 {
			return nil, badInput(v)
		}
		pair := [2]string{}
		ok := true
		for j := 0; j < 2; j++ {
			item := elem.Index(j)
			for item.Kind() == reflect.Interface {
				item = item.Elem()
			}
			if !item.IsValid() || item.Kind() != reflect.String {
				ok = false
				break
			}
			pair[j] = item.String()
		}
		if !ok {
			return nil, badInput(v)
		}
		cases = append(cases, DiffCase{Input: pair[0], Expected: pair[1]})
	}
	return cases, nil
}

// Run executes every case and grades proportionally: the score is the
// maximum grade scaled by the fraction of passing cases.
func (g *DiffGrader) Run(ctx context.Context) (*GradeResult, error) {
	if err := g.validate("diff grader"); err != nil {
		return nil, err
	}
	if g.file == "" {
		return nil, errors.New(errors.ConfigError, "diff grader: no file set", nil)
	}
	if len(g.cases) == 0 {
		return nil, errors.New(errors.ConfigError, "diff grader: no cases set", nil)
	}

	target, err := g.project.Lookup(g.file)
	if err != nil {
		return nil, err
	}
	// Only a class with a main method can be run. The check needs the
	// syntax tree, so builds without structural support let the runtime
	// report the problem instead.
	if kind, err := target.Kind(ctx); err == nil && kind != project.KindClassWithMain {
		return nil, errors.Newf(errors.CompileError,
			"%s has no main method to run (it is a %s)", target.LogicalName(), kind)
	}

	r := runner.For(g.project, g.cfg, g.logger)
	passed := 0
	t := newTranscript(g.cfg)
	var firstMismatch string

	for i, c := range g.cases {
		res, err := r.Run(ctx, target.LogicalName(), c.Input)
		if err != nil {
			if degraded := g.compileDiagnostics(err); degraded != nil {
				return degraded, nil
			}
			return nil, attachPartialOutput(err, res)
		}
		if res.ExitCode != 0 {
			t.instructor(fmt.Sprintf(
				"Case %d: the program exited with status %d.", i+1, res.ExitCode))
			t.student(res.Stderr)
			if firstMismatch == "" {
				firstMismatch = fmt.Sprintf("case %d exited with status %d", i+1, res.ExitCode)
			}
			continue
		}

		if g.compare(res.Stdout, c.Expected) {
			passed++
			continue
		}
		t.instructor(fmt.Sprintf(
			"Case %d produced the wrong output.\nInput:\n%s\nExpected:\n%s\nActual:\n%s",
			i+1, c.Input, c.Expected, res.Stdout))
		if firstMismatch == "" {
			firstMismatch = fmt.Sprintf("case %d produced the wrong output", i+1)
		}
	}

	total := len(g.cases)
	score := g.outOf * float64(passed) / float64(total)

	result := &GradeResult{
		Requirement: g.req,
		Grade:       score,
		OutOf:       g.outOf,
	}
	if passed == total {
		result.Reason = "Got expected output"
		return result, nil
	}

	result.Reason = fmt.Sprintf("%d of %d output checks failed; %s", total-passed, total, firstMismatch)
	t.sourceOf(target)
	result.Prompt = t.messages()

	if g.logger != nil {
		g.logger.Info("diff grading finished", map[string]interface{}{
			"requirement": g.req, "passed": passed, "total": total,
		})
	}
	return result, nil
}

func (g *DiffGrader) compare(actual, expected string) bool {
	a := strings.TrimSpace(actual)
	e := strings.TrimSpace(expected)
	if g.ignoreCase {
		a = strings.ToLower(a)
		e = strings.ToLower(e)
	}
	return a == e || strings.HasPrefix(a, e)
}
