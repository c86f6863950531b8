// Package grade holds the graders and their shared result shape. Every
// grader follows the same contract: fluent configuration, a single Run, and
// a GradeResult that carries the score plus the feedback transcript built
// while grading.
package grade

import (
	"context"
	"fmt"
)

// Chat roles and participant names used in feedback transcripts.
const (
	RoleSystem = "system"
	RoleUser   = "user"

	NameInstructor = "Instructor"
	NameStudent    = "Student"
)

// Message is one entry in a feedback transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// GradeResult is the outcome of one requirement.
type GradeResult struct {
	Requirement string    `json:"requirement"`
	Grade       float64   `json:"grade"`
	OutOf       float64   `json:"out_of"`
	Reason      string    `json:"reason"`
	Prompt      []Message `json:"prompt,omitempty"`
}

func (r *GradeResult) String() string {
	return fmt.Sprintf("%s: %.2f/%.2f (%s)", r.Requirement, r.Grade, r.OutOf, r.Reason)
}

// Passed reports whether the requirement earned full marks.
func (r *GradeResult) Passed() bool {
	return r.Grade >= r.OutOf
}

// Grader is the common contract of all graders: fluent configuration
// followed by a single Run. A returned error means grading could not be
// carried out at all; student mistakes surface as a zero or partial grade
// instead.
type Grader interface {
	Run(ctx context.Context) (*GradeResult, error)
}
