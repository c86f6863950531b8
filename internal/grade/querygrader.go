package grade

import (
	"context"
	"fmt"

	"autograde/internal/config"
	"autograde/internal/errors"
	"autograde/internal/logging"
	"autograde/internal/project"
	"autograde/internal/query"
)

// QueryGrader awards full marks when the structural query's match count
// satisfies the configured policy, and zero otherwise. A target file that
// cannot be resolved degrades to a zero grade with feedback rather than an
// error, so one misnamed file never sinks a whole grading run.
type QueryGrader struct {
	base
	file   string
	reason string
	preds  []query.Predicate
	policy query.MatchPolicy
}

func NewQueryGrader() *QueryGrader {
	return &QueryGrader{policy: query.AtLeastOnce()}
}

func (g *QueryGrader) Project(p *project.Project) *QueryGrader { g.project = p; return g }
func (g *QueryGrader) File(name string) *QueryGrader { g.file = name; return g }
func (g *QueryGrader) Requirement(name string) *QueryGrader { g.req = name; return g }
func (g *QueryGrader) OutOf(points float64) *QueryGrader { g.outOf = points; return g }
func (g *QueryGrader) Config(cfg *config.Config) *QueryGrader { g.cfg = cfg; return g }
func (g *QueryGrader) Logger(l *logging.Logger) *QueryGrader { g.logger = l; return g }

// Reason overrides the default explanation attached to the result.
func (g *QueryGrader) Reason(reason string) *QueryGrader { g.reason = reason; return g }

// Predicate appends one predicate; several combine by intersection.
func (g *QueryGrader) Predicate(p query.Predicate) *QueryGrader {
	g.preds = append(g.preds, p)
	return g
}

// MustMatchAtLeastOnce requires one or more matches (the default).
func (g *QueryGrader) MustMatchAtLeastOnce() *QueryGrader {
	g.policy = query.AtLeastOnce()
	return g
}

// MustMatchExactly requires precisely n matches.
func (g *QueryGrader) MustMatchExactly(n int) *QueryGrader {
	g.policy = query.Exactly(n)
	return g
}

// MustNotMatch requires zero matches.
func (g *QueryGrader) MustNotMatch() *QueryGrader {
	g.policy = query.None()
	return g
}

// ConfigErr exposes the sticky configuration error for inspection before
// Run.
func (g *QueryGrader) ConfigErr() error { return g.err }

func (g *QueryGrader) Run(ctx context.Context) (*GradeResult, error) {
	if err := g.validate("query grader"); err != nil {
		return nil, err
	}
	if g.file == "" {
		return nil, errors.New(errors.ConfigError, "query grader: no file set", nil)
	}
	if len(g.preds) == 0 {
		return nil, errors.New(errors.ConfigError, "query grader: no predicates set", nil)
	}

	pred := g.preds[0]
	if len(g.preds) > 1 {
		pred = query.And(g.preds...)
	}

	target, err := g.project.Lookup(g.file)
	if err != nil {
		switch errors.CodeOf(err) {
		case errors.NotFound, errors.TargetNotFound, errors.DuplicateName:
			t := newTranscript(g.cfg)
			t.instructor(fmt.Sprintf(
				"The file selected (`%s`) to run the query on could not be found.", g.file))
			return g.zeroResult(
				fmt.Sprintf("file %q could not be found in the project", g.file),
				t.messages()), nil
		}
		return nil, err
	}

	matches, err := query.NewEngine(g.logger).Matches(ctx, target, pred)
	if err != nil {
		if errors.HasCode(err, errors.ParseFailed) {
			t := newTranscript(g.cfg)
			t.instructor(fmt.Sprintf("`%s` could not be parsed: %v", target.FileName(), err))
			t.sourceOf(target)
			return g.zeroResult(
				fmt.Sprintf("%s could not be parsed", target.FileName()), t.messages()), nil
		}
		return nil, err
	}

	satisfied := g.policy.Satisfied(len(matches))
	if g.logger != nil {
		g.logger.Info("query grading finished", map[string]interface{}{
			"requirement": g.req, "matches": len(matches), "satisfied": satisfied,
		})
	}

	reason := g.reason
	if satisfied {
		if reason == "" {
			reason = fmt.Sprintf("%s: expected %s for %s", target.FileName(), g.policy, pred.Describe())
		}
		return &GradeResult{
			Requirement: g.req,
			Grade:       g.outOf,
			OutOf:       g.outOf,
			Reason:      reason,
		}, nil
	}

	if reason == "" {
		reason = fmt.Sprintf("expected %s for %s in %s, found %d",
			g.policy, pred.Describe(), target.FileName(), len(matches))
	}
	t := newTranscript(g.cfg)
	t.instructor(fmt.Sprintf(
		"Looking for %s in `%s`: the requirement was %s, but %d matched.",
		pred.Describe(), target.FileName(), g.policy, len(matches)))
	t.sourceOf(target)
	return g.zeroResult(reason, t.messages()), nil
}
