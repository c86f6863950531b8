// Package query evaluates structural predicates against parsed source
// files: method invocations, declarations, literals, control structures and
// recursion. Predicates compose by intersection, and match counts are
// judged against a policy.
package query

import "sort"

// Match is one place in a file where a predicate holds.
type Match struct {
	// Kind names the matched construct, e.g. "method_invocation".
	Kind string
	// Name is the identifier involved, when the construct has one.
	Name string
	// Line and Column are 1-based source positions.
	Line   int
	Column int
	// StartByte is the byte offset of the construct, used as its identity
	// when intersecting predicate results.
	StartByte uint32
	// Text is the matched source text, single-line squashed.
	Text string
}

func sortMatches(ms []Match) []Match {
	sort.Slice(ms, func(i, j int) bool { return ms[i].StartByte < ms[j].StartByte })
	out := ms[:0]
	var last uint32 = ^uint32(0)
	for _, m := range ms {
		if m.StartByte == last && len(out) > 0 {
			continue
		}
		out = append(out, m)
		last = m.StartByte
	}
	return out
}

func intersect(a, b []Match) []Match {
	seen := make(map[uint32]struct{}, len(b))
	for _, m := range b {
		seen[m.StartByte] = struct{}{}
	}
	var out []Match
	for _, m := range a {
		if _, ok := seen[m.StartByte]; ok {
			out = append(out, m)
		}
	}
	return out
}
