package project

import (
	"fmt"
	"strings"

	"autograde/internal/lang"
)

// describeJava emits one element per top-level type with its fields and
// method signatures. Bodies are omitted so the summary stays small enough
// for prompts.
func describeJava(b *strings.Builder, tree *lang.Tree) {
	for _, decl := range lang.FindAll(tree.Root, "class_declaration", "interface_declaration", "enum_declaration") {
		tag := "class"
		switch decl.Type {
		case "interface_declaration":
			tag = "interface"
		case "enum_declaration":
			tag = "enum"
		}

		name := "?"
		if n := decl.ChildByField("name"); n != nil {
			name = tree.Text(n)
		}
		fmt.Fprintf(b, "    <%s name=%q>\n", tag, name)

		body := decl.ChildByField("body")
		if body != nil {
			for _, member := range body.Children {
				switch member.Type {
				case "field_declaration":
					fmt.Fprintf(b, "      <field>%s</field>\n", squash(tree.Text(member)))
				case "method_declaration", "constructor_declaration":
					fmt.Fprintf(b, "      <method>%s</method>\n", signature(tree, member))
				}
			}
		}
		fmt.Fprintf(b, "    </%s>\n", tag)
	}
}

func describePython(b *strings.Builder, tree *lang.Tree) {
	for _, decl := range lang.FindAll(tree.Root, "class_definition", "function_definition") {
		name := "?"
		if n := decl.ChildByField("name"); n != nil {
			name = tree.Text(n)
		}
		tag := "function"
		if decl.Type == "class_definition" {
			tag = "class"
		}
		fmt.Fprintf(b, "    <%s name=%q/>\n", tag, name)
	}
}

// signature returns the declaration text up to but excluding the body.
func signature(tree *lang.Tree, method *lang.Node) string {
	body := method.ChildByField("body")
	if body == nil || body.StartByte <= method.StartByte {
		return squash(tree.Text(method))
	}
	return squash(string(tree.Source[method.StartByte:body.StartByte]))
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
