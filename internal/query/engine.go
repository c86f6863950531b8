package query

import (
	"context"

	"autograde/internal/errors"
	"autograde/internal/logging"
	"autograde/internal/project"
)

// Engine runs predicates against project files. It is stateless beyond its
// logger; parse caching lives on the files themselves.
type Engine struct {
	logger *logging.Logger
}

// NewEngine returns an engine. logger may be nil.
func NewEngine(logger *logging.Logger) *Engine {
	return &Engine{logger: logger}
}

// Matches evaluates preds against file and returns the matching positions
// in source order. Several predicates combine by intersection. Passing no
// predicates is a configuration error.
func (e *Engine) Matches(ctx context.Context, file *project.SourceFile, preds ...Predicate) ([]Match, error) {
	if file == nil {
		return nil, errors.New(errors.TargetNotFound, "no file to run the query on", nil)
	}
	if len(preds) == 0 {
		return nil, errors.New(errors.QueryInvalid, "no predicates given", nil)
	}

	tree, err := file.Tree(ctx)
	if err != nil {
		return nil, err
	}

	pred := preds[0]
	if len(preds) > 1 {
		pred = And(preds...)
	}
	matches := pred.selectMatches(tree)

	if e.logger != nil {
		e.logger.Debug("query evaluated", map[string]interface{}{
			"file":      file.RelPath(),
			"predicate": pred.Describe(),
			"matches":   len(matches),
		})
	}
	return matches, nil
}
