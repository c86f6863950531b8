package grade

import (
	"autograde/internal/config"
	"autograde/internal/errors"
	"autograde/internal/logging"
	"autograde/internal/project"
	"autograde/internal/query"
)

// FromManifest builds one grader per manifest requirement, all bound to the
// same project so they share its compile cache.
func FromManifest(m *config.Manifest, p *project.Project, cfg *config.Config, logger *logging.Logger) ([]Grader, error) {
	graders := make([]Grader, 0, len(m.Requirements))
	for _, r := range m.Requirements {
		g, err := fromRequirement(r, p, cfg, logger)
		if err != nil {
			return nil, err
		}
		graders = append(graders, g)
	}
	return graders, nil
}

func fromRequirement(r config.Requirement, p *project.Project, cfg *config.Config, logger *logging.Logger) (Grader, error) {
	switch r.Type {
	case config.RequirementDiff:
		g := NewDiffGrader().
			Project(p).
			Requirement(r.Name).
			OutOf(r.OutOf).
			File(r.File).
			IgnoreCase(r.IgnoreCase).
			Config(cfg).
			Logger(logger).
			Cases(r.Cases)
		if err := g.ConfigErr(); err != nil {
			return nil, err
		}
		return g, nil

	case config.RequirementUnitTest:
		g := NewByUnitTestGrader().
			Project(p).
			Requirement(r.Name).
			OutOf(r.OutOf).
			Config(cfg).
			Logger(logger).
			TestFiles(r.TestFiles...).
			ExpectedTests(r.ExpectedTests...)
		return g, nil

	case config.RequirementDocs:
		g := NewDocsGrader().
			Project(p).
			Requirement(r.Name).
			OutOf(r.OutOf).
			Config(cfg).
			Logger(logger).
			Files(r.Files...)
		if r.Penalty > 0 {
			g.Penalty(r.Penalty)
		}
		return g, nil

	case config.RequirementQuery:
		g := NewQueryGrader().
			Project(p).
			Requirement(r.Name).
			OutOf(r.OutOf).
			File(r.File).
			Config(cfg).
			Logger(logger)
		for _, pred := range predicatesFrom(r.Query) {
			g.Predicate(pred)
		}
		switch r.Query.Policy {
		case config.PolicyExactly:
			g.MustMatchExactly(r.Query.Count)
		case config.PolicyNone:
			g.MustNotMatch()
		default:
			g.MustMatchAtLeastOnce()
		}
		if r.Query.Reason != "" {
			g.Reason(r.Query.Reason)
		}
		return g, nil
	}
	return nil, errors.Newf(errors.ConfigError, "unknown requirement type %q", r.Type)
}

func predicatesFrom(q *config.QuerySpec) []query.Predicate {
	var preds []query.Predicate
	if q.Invocation != "" {
		preds = append(preds, query.MethodInvocations(q.Invocation))
	}
	if q.Declaration != "" || q.DeclarationKind != "" {
		kind := query.DeclKind(q.DeclarationKind)
		if kind == "" {
			kind = query.DeclMethod
		}
		preds = append(preds, query.Declarations(kind, q.Declaration))
	}
	if q.Literal != "" {
		preds = append(preds, query.Literals(q.Literal))
	}
	if q.Control != "" {
		preds = append(preds, query.ControlStructures(controlKind(q.Control)))
	}
	if q.Recursive {
		preds = append(preds, query.RecursiveMethods())
	}
	return preds
}

func controlKind(name string) query.CtrlKind {
	switch name {
	case "for":
		return query.CtrlForLoop
	case "while":
		return query.CtrlWhileLoop
	case "if", "conditional":
		return query.CtrlConditional
	case "try", "exception":
		return query.CtrlException
	default:
		return query.CtrlKind(name)
	}
}
