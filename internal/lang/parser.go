//go:build cgo

package lang

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/python"

	"autograde/internal/errors"
)

// IsAvailable reports whether tree-sitter parsing is compiled in.
func IsAvailable() bool {
	return true
}

func grammarFor(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangJava:
		return java.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	default:
		return nil, errors.Newf(errors.ParseFailed, "no grammar for language %q", lang)
	}
}

// Parse parses source in the given language into a neutral tree. The
// underlying tree-sitter tree is released before returning; only the neutral
// representation survives.
func Parse(ctx context.Context, source []byte, lang Language) (*Tree, error) {
	grammar, err := grammarFor(lang)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.New(errors.ParseFailed, fmt.Sprintf("parsing %s source", lang), err)
	}
	defer tree.Close()

	root := convert(tree.RootNode(), "")
	if root == nil {
		return nil, errors.Newf(errors.ParseFailed, "parser produced no syntax tree for %s source", lang)
	}
	return &Tree{Root: root, Source: source, Language: lang}, nil
}

func convert(n *sitter.Node, field string) *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Type:      n.Type(),
		Field:     field,
		Named:     n.IsNamed(),
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
		StartRow:  n.StartPoint().Row,
		StartCol:  n.StartPoint().Column,
		EndRow:    n.EndPoint().Row,
	}
	count := int(n.ChildCount())
	if count > 0 {
		out.Children = make([]*Node, 0, count)
		for i := 0; i < count; i++ {
			child := convert(n.Child(i), n.FieldNameForChild(i))
			if child != nil {
				out.Children = append(out.Children, child)
			}
		}
	}
	return out
}
