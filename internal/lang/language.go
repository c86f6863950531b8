// Package lang provides the tree-sitter frontend for structural analysis of
// student source files. Parsing produces a language-neutral syntax tree so
// the rest of the engine stays free of cgo build constraints.
package lang

// Language identifies a supported source language.
type Language string

const (
	// LangJava for .java files
	LangJava Language = "java"
	// LangPython for .py files
	LangPython Language = "python"
)

// LanguageFromExtension maps a file extension (with leading dot, lowercase)
// to a supported language.
func LanguageFromExtension(ext string) (Language, bool) {
	switch ext {
	case ".java":
		return LangJava, true
	case ".py":
		return LangPython, true
	default:
		return "", false
	}
}

// Node is a language-neutral syntax tree node. Field names and grammar node
// types are preserved verbatim from the underlying tree-sitter grammar.
type Node struct {
	// Type is the grammar node type, e.g. "method_invocation".
	Type string
	// Field is the field name this node occupies in its parent, if any.
	Field string
	// Named reports whether the node is a named grammar node (as opposed to
	// an anonymous token).
	Named bool

	StartByte uint32
	EndByte   uint32
	// StartRow and StartCol are 0-based, matching tree-sitter points.
	StartRow uint32
	StartCol uint32
	EndRow   uint32

	Children []*Node
}

// Tree is a parsed file: the neutral root node plus the source it was parsed
// from.
type Tree struct {
	Root     *Node
	Source   []byte
	Language Language
}

// Text returns the source slice covered by n.
func (t *Tree) Text(n *Node) string {
	if n == nil || int(n.EndByte) > len(t.Source) || n.StartByte > n.EndByte {
		return ""
	}
	return string(t.Source[n.StartByte:n.EndByte])
}

// Line returns the 1-based starting line of n.
func (n *Node) Line() int {
	return int(n.StartRow) + 1
}

// Column returns the 1-based starting column of n.
func (n *Node) Column() int {
	return int(n.StartCol) + 1
}

// ChildByField returns the first child occupying the given field, or nil.
func (n *Node) ChildByField(field string) *Node {
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildOfType returns the first child of the given type, or nil.
func (n *Node) ChildOfType(nodeType string) *Node {
	for _, c := range n.Children {
		if c.Type == nodeType {
			return c
		}
	}
	return nil
}

// Walk visits n and all descendants in pre-order. Returning false from fn
// stops descent into the current subtree but not the walk as a whole.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// FindAll returns all nodes in pre-order whose type is in types.
func FindAll(root *Node, types ...string) []*Node {
	if len(types) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}

	var result []*Node
	Walk(root, func(n *Node) bool {
		if _, ok := set[n.Type]; ok {
			result = append(result, n)
		}
		return true
	})
	return result
}
