package grade

import (
	"fmt"
	"path/filepath"
	"strings"

	"autograde/internal/config"
	"autograde/internal/errors"
	"autograde/internal/logging"
	"autograde/internal/paths"
	"autograde/internal/project"
	"autograde/internal/runner"
)

// base carries the settings every grader shares, plus the sticky
// configuration error: the first builder mistake is stored and surfaced by
// Run before anything executes.
type base struct {
	project *project.Project
	req     string
	outOf   float64
	cfg     *config.Config
	logger  *logging.Logger
	err     error
}

func (b *base) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// validate checks the shared required settings, folding any problem into
// the sticky error. It returns the effective configuration.
func (b *base) validate(grader string) error {
	if b.err != nil {
		return b.err
	}
	switch {
	case b.project == nil:
		b.err = errors.Newf(errors.ConfigError, "%s: no project set", grader)
	case b.req == "":
		b.err = errors.Newf(errors.ConfigError, "%s: no requirement name set", grader)
	case b.outOf <= 0:
		b.err = errors.Newf(errors.ConfigError, "%s: maximum grade must be positive", grader)
	}
	if b.cfg == nil {
		b.cfg = config.DefaultConfig()
	}
	return b.err
}

func (b *base) zeroResult(reason string, prompt []Message) *GradeResult {
	return &GradeResult{
		Requirement: b.req,
		Grade:       0,
		OutOf:       b.outOf,
		Reason:      reason,
		Prompt:      prompt,
	}
}

// projectDiagnostics drops diagnostics for files outside the project and
// rewrites absolute paths to root-relative ones, so feedback names files the
// way the student sees them.
func (b *base) projectDiagnostics(diags []runner.Diagnostic) []runner.Diagnostic {
	root := b.project.Root()
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	kept := diags[:0]
	for _, d := range diags {
		if filepath.IsAbs(d.Path) {
			if !paths.IsWithinProject(d.Path, root) {
				continue
			}
			if rel, err := paths.Canonical(d.Path, root); err == nil {
				d.Path = rel
			}
		}
		if b.project.Contains(filepath.Base(d.Path)) {
			kept = append(kept, d)
		}
	}
	return kept
}

// attachPartialOutput preserves whatever the process printed before the
// timeout killed it, so callers reporting the error can show it. Other
// errors pass through untouched.
func attachPartialOutput(err error, res *runner.ExecutionResult) error {
	ge, ok := errors.AsGradeError(err)
	if !ok || ge.Code != errors.Timeout || res == nil || ge.Details != nil {
		return err
	}
	partial := strings.TrimSpace(res.Stdout + "\n" + res.Stderr)
	if partial == "" {
		return err
	}
	return ge.WithDetails(partial)
}

// compileDiagnostics turns a CompileError into a zero-grade result with the
// javac output in the transcript, prefaced by any structured diagnostics
// parsed out of it. Diagnostics pointing outside the project (library jars,
// generated sources) are dropped. Returns nil when err is not a compile
// failure.
func (b *base) compileDiagnostics(err error) *GradeResult {
	ge, ok := errors.AsGradeError(err)
	if !ok || ge.Code != errors.CompileError {
		return nil
	}
	t := newTranscript(b.cfg)
	t.instructor("The submission did not compile. Compiler output:")
	if details, ok := ge.Details.(string); ok && details != "" {
		diags := runner.ParseDiagnostics(details)
		if b.project != nil {
			diags = b.projectDiagnostics(diags)
		}
		if len(diags) > 0 {
			var sb strings.Builder
			for _, d := range diags {
				fmt.Fprintf(&sb, "%s line %d: %s: %s\n", d.Path, d.Line, d.Severity, d.Message)
			}
			t.instructor("Problems found:\n" + sb.String())
		}
		t.student(details)
	}
	return b.zeroResult("the submission did not compile", t.messages())
}
