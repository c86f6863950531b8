package grade

import (
	"testing"

	"autograde/internal/config"
	"autograde/internal/errors"
)

func TestFromManifest_BuildsOneGraderPerRequirement(t *testing.T) {
	m := &config.Manifest{
		Assignment: "lab",
		Requirements: []config.Requirement{
			{
				Name: "output", Type: config.RequirementDiff, OutOf: 5,
				File: "Main", Cases: [][]string{{"", "hello"}},
			},
			{
				Name: "tests", Type: config.RequirementUnitTest, OutOf: 10,
				TestFiles: []string{"MainTest"},
			},
			{
				Name: "structure", Type: config.RequirementQuery, OutOf: 2,
				File:  "Main",
				Query: &config.QuerySpec{Control: "for", Policy: config.PolicyAtLeastOnce},
			},
			{
				Name: "javadoc", Type: config.RequirementDocs, OutOf: 6,
				Files: []string{"Main"}, Penalty: 1.5,
			},
		},
	}

	graders, err := FromManifest(m, emptyProject(t), config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("FromManifest failed: %v", err)
	}
	if len(graders) != 4 {
		t.Fatalf("got %d graders, want 4", len(graders))
	}
	if _, ok := graders[0].(*DiffGrader); !ok {
		t.Errorf("requirement 1 built %T", graders[0])
	}
	if _, ok := graders[1].(*ByUnitTestGrader); !ok {
		t.Errorf("requirement 2 built %T", graders[1])
	}
	if _, ok := graders[2].(*QueryGrader); !ok {
		t.Errorf("requirement 3 built %T", graders[2])
	}
	dg, ok := graders[3].(*DocsGrader)
	if !ok {
		t.Fatalf("requirement 4 built %T", graders[3])
	}
	if dg.penalty != 1.5 {
		t.Errorf("penalty = %.2f, want 1.5", dg.penalty)
	}
}

func TestFromManifest_DocsDefaultPenalty(t *testing.T) {
	m := &config.Manifest{
		Requirements: []config.Requirement{{
			Name: "javadoc", Type: config.RequirementDocs, OutOf: 6,
			Files: []string{"Main"},
		}},
	}

	graders, err := FromManifest(m, emptyProject(t), config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("FromManifest failed: %v", err)
	}
	dg := graders[0].(*DocsGrader)
	if dg.penalty != defaultDocPenalty {
		t.Errorf("penalty = %.2f, want the default %.2f", dg.penalty, defaultDocPenalty)
	}
}

func TestFromManifest_QueryPolicyWiring(t *testing.T) {
	m := &config.Manifest{
		Requirements: []config.Requirement{{
			Name: "exactly two loops", Type: config.RequirementQuery, OutOf: 1,
			File:  "Main",
			Query: &config.QuerySpec{Control: "for", Policy: config.PolicyExactly, Count: 2},
		}},
	}

	graders, err := FromManifest(m, emptyProject(t), config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("FromManifest failed: %v", err)
	}
	qg := graders[0].(*QueryGrader)
	if !qg.policy.Satisfied(2) || qg.policy.Satisfied(1) {
		t.Errorf("policy not wired to exactly 2: %v", qg.policy)
	}
}

func TestFromManifest_UnknownType(t *testing.T) {
	m := &config.Manifest{
		Requirements: []config.Requirement{{Name: "x", Type: "essay", OutOf: 1}},
	}
	_, err := FromManifest(m, emptyProject(t), config.DefaultConfig(), nil)
	if !errors.HasCode(err, errors.ConfigError) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}
