package query

import "fmt"

type policyKind int

const (
	policyAtLeastOnce policyKind = iota
	policyExactly
	policyNone
)

// MatchPolicy judges whether a match count satisfies a requirement.
type MatchPolicy struct {
	kind policyKind
	n    int
}

// AtLeastOnce is satisfied by one or more matches.
func AtLeastOnce() MatchPolicy { return MatchPolicy{kind: policyAtLeastOnce} }

// Exactly is satisfied by precisely n matches.
func Exactly(n int) MatchPolicy { return MatchPolicy{kind: policyExactly, n: n} }

// None is satisfied only by zero matches.
func None() MatchPolicy { return MatchPolicy{kind: policyNone} }

// Satisfied reports whether count meets the policy.
func (p MatchPolicy) Satisfied(count int) bool {
	switch p.kind {
	case policyExactly:
		return count == p.n
	case policyNone:
		return count == 0
	default:
		return count >= 1
	}
}

func (p MatchPolicy) String() string {
	switch p.kind {
	case policyExactly:
		return fmt.Sprintf("exactly %d matches", p.n)
	case policyNone:
		return "no matches"
	default:
		return "at least one match"
	}
}
