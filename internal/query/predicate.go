package query

import (
	"fmt"
	"strings"

	"autograde/internal/lang"
)

// Predicate selects matching constructs from a parsed file.
type Predicate interface {
	// Describe renders the predicate for grade reasons and logs.
	Describe() string

	selectMatches(tree *lang.Tree) []Match
}

// DeclKind distinguishes declaration predicates.
type DeclKind string

const (
	DeclMethod    DeclKind = "method"
	DeclClass     DeclKind = "class"
	DeclInterface DeclKind = "interface"
	DeclField     DeclKind = "field"
)

// CtrlKind distinguishes control structure predicates.
type CtrlKind string

const (
	CtrlForLoop     CtrlKind = "for loop"
	CtrlWhileLoop   CtrlKind = "while loop"
	CtrlConditional CtrlKind = "conditional"
	CtrlException   CtrlKind = "exception handler"
)

// nodeTypes maps a predicate concept to grammar node types per language.
var ctrlNodeTypes = map[lang.Language]map[CtrlKind][]string{
	lang.LangJava: {
		CtrlForLoop:     {"for_statement", "enhanced_for_statement"},
		CtrlWhileLoop:   {"while_statement", "do_statement"},
		CtrlConditional: {"if_statement", "switch_expression"},
		CtrlException:   {"try_statement", "try_with_resources_statement"},
	},
	lang.LangPython: {
		CtrlForLoop:     {"for_statement"},
		CtrlWhileLoop:   {"while_statement"},
		CtrlConditional: {"if_statement", "match_statement"},
		CtrlException:   {"try_statement"},
	},
}

var declNodeTypes = map[lang.Language]map[DeclKind][]string{
	lang.LangJava: {
		DeclMethod:    {"method_declaration", "constructor_declaration"},
		DeclClass:     {"class_declaration"},
		DeclInterface: {"interface_declaration"},
		DeclField:     {"field_declaration"},
	},
	lang.LangPython: {
		DeclMethod: {"function_definition"},
		DeclClass:  {"class_definition"},
	},
}

var literalNodeTypes = map[lang.Language][]string{
	lang.LangJava: {
		"string_literal", "decimal_integer_literal", "hex_integer_literal",
		"decimal_floating_point_literal", "character_literal",
		"true", "false", "null_literal",
	},
	lang.LangPython: {"string", "integer", "float", "true", "false", "none"},
}

type invocationPredicate struct {
	name string // empty matches any invocation
}

// MethodInvocations matches every call site whose callee name equals name.
// An empty name matches all invocations.
func MethodInvocations(name string) Predicate {
	return invocationPredicate{name: name}
}

func (p invocationPredicate) Describe() string {
	if p.name == "" {
		return "a method invocation"
	}
	return fmt.Sprintf("an invocation of %q", p.name)
}

func (p invocationPredicate) selectMatches(tree *lang.Tree) []Match {
	var out []Match
	lang.Walk(tree.Root, func(n *lang.Node) bool {
		callee, ok := calleeName(tree, n)
		if !ok {
			return true
		}
		if p.name == "" || callee == p.name {
			out = append(out, newMatch(tree, n, callee))
		}
		return true
	})
	return sortMatches(out)
}

// calleeName extracts the called method name from an invocation node, if n
// is one. Qualified calls report their final segment.
func calleeName(tree *lang.Tree, n *lang.Node) (string, bool) {
	switch tree.Language {
	case lang.LangJava:
		if n.Type != "method_invocation" {
			return "", false
		}
		if name := n.ChildByField("name"); name != nil {
			return tree.Text(name), true
		}
	case lang.LangPython:
		if n.Type != "call" {
			return "", false
		}
		fn := n.ChildByField("function")
		if fn == nil {
			return "", false
		}
		if attr := fn.ChildByField("attribute"); attr != nil {
			return tree.Text(attr), true
		}
		return tree.Text(fn), true
	}
	return "", false
}

type declarationPredicate struct {
	kind DeclKind
	name string
}

// Declarations matches declarations of the given kind. An empty name
// matches all declarations of that kind.
func Declarations(kind DeclKind, name string) Predicate {
	return declarationPredicate{kind: kind, name: name}
}

func (p declarationPredicate) Describe() string {
	if p.name == "" {
		return fmt.Sprintf("a %s declaration", p.kind)
	}
	return fmt.Sprintf("a %s declaration named %q", p.kind, p.name)
}

func (p declarationPredicate) selectMatches(tree *lang.Tree) []Match {
	types := declNodeTypes[tree.Language][p.kind]
	var out []Match
	for _, n := range lang.FindAll(tree.Root, types...) {
		name := declaredName(tree, n)
		if p.name != "" && name != p.name {
			continue
		}
		out = append(out, newMatch(tree, n, name))
	}
	return sortMatches(out)
}

func declaredName(tree *lang.Tree, decl *lang.Node) string {
	if name := decl.ChildByField("name"); name != nil {
		return tree.Text(name)
	}
	// Java fields hang their name off the declarator.
	if d := decl.ChildOfType("variable_declarator"); d != nil {
		if name := d.ChildByField("name"); name != nil {
			return tree.Text(name)
		}
	}
	return ""
}

type literalPredicate struct {
	value string // empty matches any literal
}

// Literals matches literal constants whose source text equals value, with
// string quoting ignored. An empty value matches all literals.
func Literals(value string) Predicate {
	return literalPredicate{value: value}
}

func (p literalPredicate) Describe() string {
	if p.value == "" {
		return "a literal"
	}
	return fmt.Sprintf("the literal %q", p.value)
}

func (p literalPredicate) selectMatches(tree *lang.Tree) []Match {
	types := literalNodeTypes[tree.Language]
	var out []Match
	for _, n := range lang.FindAll(tree.Root, types...) {
		text := tree.Text(n)
		if p.value != "" && text != p.value && trimQuotes(text) != p.value {
			continue
		}
		out = append(out, newMatch(tree, n, ""))
	}
	return sortMatches(out)
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		switch {
		case s[0] == '"' && s[len(s)-1] == '"',
			s[0] == '\'' && s[len(s)-1] == '\'':
			return s[1 : len(s)-1]
		}
	}
	return s
}

type controlPredicate struct {
	kind CtrlKind
}

// ControlStructures matches control flow constructs of the given kind.
func ControlStructures(kind CtrlKind) Predicate {
	return controlPredicate{kind: kind}
}

func (p controlPredicate) Describe() string {
	return fmt.Sprintf("a %s", p.kind)
}

func (p controlPredicate) selectMatches(tree *lang.Tree) []Match {
	types := ctrlNodeTypes[tree.Language][p.kind]
	var out []Match
	for _, n := range lang.FindAll(tree.Root, types...) {
		out = append(out, newMatch(tree, n, ""))
	}
	return sortMatches(out)
}

type recursivePredicate struct{}

// RecursiveMethods matches method declarations that can reach themselves
// through the file's name-based call graph. Resolution is by name only, so
// overloads are not distinguished and calls into other files are invisible.
func RecursiveMethods() Predicate {
	return recursivePredicate{}
}

func (recursivePredicate) Describe() string {
	return "a recursive method"
}

func (recursivePredicate) selectMatches(tree *lang.Tree) []Match {
	types := declNodeTypes[tree.Language][DeclMethod]

	decls := lang.FindAll(tree.Root, types...)
	calls := make(map[string]map[string]struct{}, len(decls))
	nodes := make(map[string]*lang.Node, len(decls))
	for _, d := range decls {
		name := declaredName(tree, d)
		if name == "" {
			continue
		}
		if _, ok := nodes[name]; !ok {
			nodes[name] = d
			calls[name] = make(map[string]struct{})
		}
		lang.Walk(d, func(n *lang.Node) bool {
			if callee, ok := calleeName(tree, n); ok {
				calls[name][callee] = struct{}{}
			}
			return true
		})
	}

	var out []Match
	for name, d := range nodes {
		if reaches(calls, name, name, make(map[string]struct{})) {
			out = append(out, newMatch(tree, d, name))
		}
	}
	return sortMatches(out)
}

func reaches(calls map[string]map[string]struct{}, from, target string, seen map[string]struct{}) bool {
	if _, ok := seen[from]; ok {
		return false
	}
	seen[from] = struct{}{}
	for callee := range calls[from] {
		if callee == target {
			return true
		}
		if _, declared := calls[callee]; declared && reaches(calls, callee, target, seen) {
			return true
		}
	}
	return false
}

type andPredicate struct {
	preds []Predicate
}

// And matches only positions selected by every predicate.
func And(preds ...Predicate) Predicate {
	return andPredicate{preds: preds}
}

func (p andPredicate) Describe() string {
	parts := make([]string, len(p.preds))
	for i, q := range p.preds {
		parts[i] = q.Describe()
	}
	return strings.Join(parts, " and ")
}

func (p andPredicate) selectMatches(tree *lang.Tree) []Match {
	if len(p.preds) == 0 {
		return nil
	}
	out := p.preds[0].selectMatches(tree)
	for _, q := range p.preds[1:] {
		out = intersect(out, q.selectMatches(tree))
	}
	return sortMatches(out)
}

func newMatch(tree *lang.Tree, n *lang.Node, name string) Match {
	text := tree.Text(n)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i] + " ..."
	}
	return Match{
		Kind:      n.Type,
		Name:      name,
		Line:      n.Line(),
		Column:    n.Column(),
		StartByte: n.StartByte,
		Text:      text,
	}
}
