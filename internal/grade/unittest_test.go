package grade

import (
	"context"
	"strings"
	"testing"

	"autograde/internal/config"
	"autograde/internal/errors"
	"autograde/internal/runner"
)

func sampleReport() *runner.Report {
	return &runner.Report{
		Outcomes: []runner.TestOutcome{
			{Name: "testAdd", Passed: true},
			{Name: "testClear", Passed: false},
			{Name: "testGrowth", Passed: true},
			{Name: "testExtraCredit", Passed: true},
		},
		Found:      4,
		Successful: 3,
		Failed:     1,
	}
}

func TestUnitTestGrader_ScoreWithoutExpectedList(t *testing.T) {
	g := NewByUnitTestGrader()
	passed, total, missing := g.score(sampleReport())
	if passed != 3 || total != 4 || len(missing) != 0 {
		t.Errorf("score = (%d, %d, %v), want (3, 4, none)", passed, total, missing)
	}
}

func TestUnitTestGrader_ScoreWithExpectedList(t *testing.T) {
	tests := []struct {
		name        string
		expected    []string
		wantPassed  int
		wantTotal   int
		wantMissing int
	}{
		// Tests outside the list do not count toward the grade.
		{"subset", []string{"testAdd", "testClear"}, 1, 2, 0},
		// A listed test that never ran is a failure, not a skip.
		{"missing listed test", []string{"testAdd", "testPhantom"}, 1, 2, 1},
		{"class qualified names", []string{"ArrayListTest#testAdd", "ArrayListTest#testGrowth"}, 2, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewByUnitTestGrader().ExpectedTests(tt.expected...)
			passed, total, missing := g.score(sampleReport())
			if passed != tt.wantPassed || total != tt.wantTotal || len(missing) != tt.wantMissing {
				t.Errorf("score = (%d, %d, %v), want (%d, %d, %d missing)",
					passed, total, missing, tt.wantPassed, tt.wantTotal, tt.wantMissing)
			}
		})
	}
}

func TestUnitTestGrader_MissingDeclarations(t *testing.T) {
	declared := map[string]bool{"testAdd": true, "testClear": true}

	g := NewByUnitTestGrader().ExpectedTests("testAdd", "testPhantom", "ArrayListTest#testClear")
	got := g.missingDeclarations(declared)
	if len(got) != 1 || got[0] != "testPhantom" {
		t.Errorf("missingDeclarations = %v, want [testPhantom]", got)
	}

	// No discovery means no check.
	if got := g.missingDeclarations(nil); got != nil {
		t.Errorf("expected nil without discovery, got %v", got)
	}
}

func TestUnitTestGrader_MissingSettings(t *testing.T) {
	p := emptyProject(t)
	tests := []struct {
		name string
		g    *ByUnitTestGrader
	}{
		{"no project", NewByUnitTestGrader().Requirement("r").OutOf(1).TestFiles("T")},
		{"no test files", NewByUnitTestGrader().Project(p).Requirement("r").OutOf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.g.Run(context.Background())
			if !errors.HasCode(err, errors.ConfigError) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
		})
	}
}

func TestUnitTestGrader_ReportParseFailure(t *testing.T) {
	g := NewByUnitTestGrader().
		Project(emptyProject(t)).
		Requirement("tests pass").
		OutOf(10).
		Config(config.DefaultConfig()).
		TestFiles("ArrayListTest")

	raw := "Error: Could not find or load main class org.junit.platform.console.ConsoleLauncher\n"
	result := g.reportParseFailure(raw)

	if result.Grade != 0 || result.OutOf != 10 {
		t.Errorf("grade = %.2f/%.2f, want 0/10", result.Grade, result.OutOf)
	}
	// The raw output rides in the reason, not only in the prompt.
	if !strings.Contains(result.Reason, "could not interpret the test runner output") {
		t.Errorf("reason missing the explanation: %q", result.Reason)
	}
	if !strings.Contains(result.Reason, "Could not find or load main class") {
		t.Errorf("reason missing the raw output: %q", result.Reason)
	}
	if len(result.Prompt) == 0 {
		t.Fatal("expected a transcript")
	}
}

func TestUnitTestGrader_ReportParseFailureTruncatesReason(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Prompt.TruncateBytes = 32
	g := NewByUnitTestGrader().
		Project(emptyProject(t)).
		Requirement("tests pass").
		OutOf(10).
		Config(cfg).
		TestFiles("ArrayListTest")

	result := g.reportParseFailure(strings.Repeat("x", 100))
	if !strings.Contains(result.Reason, truncationMarker) {
		t.Errorf("long raw output should be truncated in the reason: %q", result.Reason)
	}
}

func TestUnitTestGrader_UnknownTestFile(t *testing.T) {
	_, err := NewByUnitTestGrader().
		Project(emptyProject(t)).
		Requirement("tests pass").
		OutOf(10).
		TestFiles("GhostTest").
		Run(context.Background())
	if !errors.HasCode(err, errors.NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
