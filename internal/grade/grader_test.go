package grade

import (
	"path/filepath"
	"strings"
	"testing"

	"autograde/internal/config"
	"autograde/internal/errors"
	"autograde/internal/project"
	"autograde/internal/runner"
)

func TestCompileDiagnostics(t *testing.T) {
	b := &base{req: "compiles", outOf: 5, cfg: config.DefaultConfig()}
	err := errors.New(errors.CompileError, "compilation failed", nil).
		WithDetails("Main.java:3: error: ';' expected\n        int x\n             ^\n1 error")

	result := b.compileDiagnostics(err)
	if result == nil {
		t.Fatal("expected a degraded result for CompileError")
	}
	if result.Grade != 0 || result.OutOf != 5 {
		t.Errorf("grade = %.2f/%.2f", result.Grade, result.OutOf)
	}

	var joined strings.Builder
	for _, m := range result.Prompt {
		joined.WriteString(m.Content)
		joined.WriteString("\n")
	}
	for _, want := range []string{"did not compile", "Main.java line 3: error: ';' expected", "1 error"} {
		if !strings.Contains(joined.String(), want) {
			t.Errorf("transcript missing %q:\n%s", want, joined.String())
		}
	}
}

func TestCompileDiagnostics_OtherErrorsPassThrough(t *testing.T) {
	b := &base{req: "r", outOf: 1, cfg: config.DefaultConfig()}
	if got := b.compileDiagnostics(errors.New(errors.Timeout, "too slow", nil)); got != nil {
		t.Errorf("expected nil for non-compile errors, got %v", got)
	}
}

func TestCompileDiagnostics_DropsPathsOutsideProject(t *testing.T) {
	root, err := filepath.Abs("../../testdata/java/arraylist")
	if err != nil {
		t.Fatal(err)
	}
	p, err := project.FromPath(root, nil)
	if err != nil {
		t.Fatalf("FromPath failed: %v", err)
	}
	b := &base{project: p, req: "compiles", outOf: 5, cfg: config.DefaultConfig()}

	details := filepath.Join(root, "Application", "Main.java") + ":3: error: ';' expected\n" +
		"/opt/jdk/lib/src/Main.java:9: warning: deprecated\n" +
		"1 error"
	err = errors.New(errors.CompileError, "compilation failed", nil).WithDetails(details)

	result := b.compileDiagnostics(err)
	if result == nil {
		t.Fatal("expected a degraded result")
	}
	var joined strings.Builder
	for _, m := range result.Prompt {
		joined.WriteString(m.Content)
		joined.WriteString("\n")
	}
	// The project's own file is reported root-relative; the library copy
	// of the same file name is dropped.
	if !strings.Contains(joined.String(), "Application/Main.java line 3") {
		t.Errorf("transcript missing the project diagnostic:\n%s", joined.String())
	}
	if strings.Contains(joined.String(), "/opt/jdk") {
		t.Errorf("transcript should not mention files outside the project:\n%s", joined.String())
	}
}

func TestAttachPartialOutput(t *testing.T) {
	timeout := errors.Newf(errors.Timeout, "java did not finish within 10s")
	res := &runner.ExecutionResult{Stdout: "first half of the transcript"}

	got := attachPartialOutput(timeout, res)
	ge, ok := errors.AsGradeError(got)
	if !ok {
		t.Fatalf("expected a GradeError, got %T", got)
	}
	details, ok := ge.Details.(string)
	if !ok || !strings.Contains(details, "first half of the transcript") {
		t.Errorf("details = %v, want the partial output", ge.Details)
	}
}

func TestAttachPartialOutput_LeavesOtherErrorsAlone(t *testing.T) {
	res := &runner.ExecutionResult{Stdout: "irrelevant"}

	notTimeout := errors.New(errors.InternalError, "boom", nil)
	if got := attachPartialOutput(notTimeout, res); got != notTimeout {
		t.Errorf("non-timeout error should pass through unchanged")
	}

	timeout := errors.Newf(errors.Timeout, "too slow")
	if got := attachPartialOutput(timeout, nil); got != timeout {
		t.Errorf("timeout without a result should pass through unchanged")
	}

	empty := errors.Newf(errors.Timeout, "too slow")
	if got := attachPartialOutput(empty, &runner.ExecutionResult{}); got != empty {
		t.Errorf("timeout with no captured output should pass through unchanged")
	}
}
