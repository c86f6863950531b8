package grade

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"autograde/internal/config"
	"autograde/internal/errors"
	"autograde/internal/logging"
	"autograde/internal/project"
	"autograde/internal/runner"
)

// defaultDocPenalty is the deduction per javadoc problem.
const defaultDocPenalty = 3.0

const docsAdvice = "Every public class, method and field needs a javadoc " +
	"comment, with @param, @return and @throws tags where they apply. Fix " +
	"the listed problems one file at a time and recheck."

// DocsGrader compiles each file with doclint enabled and deducts a fixed
// penalty per javadoc problem reported against that file, clamped at zero.
// Problems doclint reports in other files pulled in through the source path
// carry no penalty.
type DocsGrader struct {
	base
	files   []string
	penalty float64
}

func NewDocsGrader() *DocsGrader {
	return &DocsGrader{penalty: defaultDocPenalty}
}

func (g *DocsGrader) Project(p *project.Project) *DocsGrader { g.project = p; return g }
func (g *DocsGrader) Requirement(name string) *DocsGrader { g.req = name; return g }
func (g *DocsGrader) OutOf(points float64) *DocsGrader { g.outOf = points; return g }
func (g *DocsGrader) Config(cfg *config.Config) *DocsGrader { g.cfg = cfg; return g }
func (g *DocsGrader) Logger(l *logging.Logger) *DocsGrader { g.logger = l; return g }

// Files names the source files to check, by any name Lookup resolves.
func (g *DocsGrader) Files(names ...string) *DocsGrader {
	g.files = append(g.files, names...)
	return g
}

// Penalty overrides the per-problem deduction.
func (g *DocsGrader) Penalty(points float64) *DocsGrader { g.penalty = points; return g }

// ConfigErr exposes the sticky configuration error for inspection before
// Run.
func (g *DocsGrader) ConfigErr() error { return g.err }

func (g *DocsGrader) Run(ctx context.Context) (*GradeResult, error) {
	if err := g.validate("docs grader"); err != nil {
		return nil, err
	}
	if len(g.files) == 0 {
		return nil, errors.New(errors.ConfigError, "docs grader: no files set", nil)
	}
	if g.penalty <= 0 {
		return nil, errors.New(errors.ConfigError, "docs grader: penalty must be positive", nil)
	}

	r := runner.For(g.project, g.cfg, g.logger)
	violations := 0
	var outputs []string
	for _, name := range g.files {
		target, err := g.project.Lookup(name)
		if err != nil {
			return nil, err
		}
		out, err := r.DocCheck(ctx, target.Path())
		if err != nil {
			if degraded := g.compileDiagnostics(err); degraded != nil {
				return degraded, nil
			}
			return nil, err
		}
		violations += countFileDiagnostics(out, target.FileName())
		if out != "" {
			outputs = append(outputs, out)
		}
	}

	score, deducted := docsScore(g.outOf, g.penalty, violations)
	result := &GradeResult{
		Requirement: g.req,
		Grade:       score,
		OutOf:       g.outOf,
	}

	if g.logger != nil {
		g.logger.Info("docs grading finished", map[string]interface{}{
			"requirement": g.req, "problems": violations,
		})
	}

	if violations == 0 {
		result.Reason = "No javadoc problems found"
		return result, nil
	}

	result.Reason = fmt.Sprintf("%d javadoc problems, -%.2f points", violations, deducted)
	t := newTranscript(g.cfg)
	t.instructor(fmt.Sprintf(
		"Checking javadoc for %s found %d problems. Compiler output:",
		strings.Join(g.files, ", "), violations))
	t.student(strings.Join(outputs, "\n\n---\n\n"))
	t.instructor(docsAdvice)
	result.Prompt = t.messages()
	return result, nil
}

// countFileDiagnostics counts the diagnostics attributed to the named file.
func countFileDiagnostics(output, fileName string) int {
	n := 0
	for _, d := range runner.ParseDiagnostics(output) {
		if filepath.Base(d.Path) == fileName {
			n++
		}
	}
	return n
}

// docsScore applies the per-problem penalty, clamping the grade at zero.
// The deduction is reported unclamped so the reason shows the full cost.
func docsScore(outOf, penalty float64, violations int) (score, deducted float64) {
	deducted = float64(violations) * penalty
	score = outOf - deducted
	if score < 0 {
		score = 0
	}
	return score, deducted
}
