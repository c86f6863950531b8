package project

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"autograde/internal/errors"
	"autograde/internal/lang"
)

// Kind classifies a source file by its structural role in the project.
type Kind int

const (
	// KindUnknown means classification was not possible.
	KindUnknown Kind = iota
	// KindClass is a plain class with no entry point.
	KindClass
	// KindClassWithMain is a class declaring a static main method.
	KindClassWithMain
	// KindInterface is an interface declaration.
	KindInterface
	// KindTest declares at least one @Test-annotated method.
	KindTest
	// KindScript is a top-level script (Python).
	KindScript
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindClassWithMain:
		return "class with main"
	case KindInterface:
		return "interface"
	case KindTest:
		return "test"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

var javaPackageRe = regexp.MustCompile(`(?m)^\s*package\s+([\w.]+)\s*;`)

// SourceFile is one file in the project index. The logical name and package
// come from a lightweight text scan at index time; the full syntax tree is
// parsed lazily on first structural use and cached for the file's lifetime.
type SourceFile struct {
	path     string
	rel      string
	stem     string
	language lang.Language
	pkg      string

	parseOnce sync.Once
	tree      *lang.Tree
	parseErr  error

	kind        Kind
	testMethods []string
}

func newSourceFile(path, rel string, language lang.Language) (*SourceFile, error) {
	f := &SourceFile{
		path:     path,
		rel:      rel,
		stem:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		language: language,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.NotFound, "reading "+rel, err)
	}
	f.pkg = scanPackage(data, language, rel)
	return f, nil
}

// scanPackage extracts the namespace without a full parse. Java files carry
// an explicit package declaration; Python files take theirs from the
// directory path relative to the project root.
func scanPackage(data []byte, language lang.Language, rel string) string {
	switch language {
	case lang.LangJava:
		if m := javaPackageRe.FindSubmatch(data); m != nil {
			return string(m[1])
		}
		return ""
	case lang.LangPython:
		dir := filepath.Dir(rel)
		if dir == "." {
			return ""
		}
		return strings.ReplaceAll(filepath.ToSlash(dir), "/", ".")
	default:
		return ""
	}
}

// Path returns the absolute path of the file on disk.
func (f *SourceFile) Path() string { return f.path }

// RelPath returns the path relative to the project root, slash-separated.
func (f *SourceFile) RelPath() string { return filepath.ToSlash(f.rel) }

// FileName returns the base file name, e.g. "ArrayList.java".
func (f *SourceFile) FileName() string { return filepath.Base(f.path) }

// Stem returns the file name without its extension.
func (f *SourceFile) Stem() string { return f.stem }

// Language returns the file's source language.
func (f *SourceFile) Language() lang.Language { return f.language }

// Package returns the declared package or namespace, empty for the default
// package.
func (f *SourceFile) Package() string { return f.pkg }

// LogicalName returns the package-qualified name used for lookup and for
// runtime invocation, e.g. "DataStructures.ArrayList".
func (f *SourceFile) LogicalName() string {
	if f.pkg == "" {
		return f.stem
	}
	return f.pkg + "." + f.stem
}

// Tree returns the parsed syntax tree, parsing on first call. The result is
// memoized including the error.
func (f *SourceFile) Tree(ctx context.Context) (*lang.Tree, error) {
	f.parseOnce.Do(func() {
		data, err := os.ReadFile(f.path)
		if err != nil {
			f.parseErr = errors.New(errors.NotFound, "reading "+f.rel, err)
			return
		}
		tree, err := lang.Parse(ctx, data, f.language)
		if err != nil {
			f.parseErr = errors.New(errors.ParseFailed, "parsing "+f.rel, err)
			return
		}
		f.tree = tree
		f.classify(tree)
	})
	return f.tree, f.parseErr
}

// Kind returns the structural classification, parsing the file if needed.
func (f *SourceFile) Kind(ctx context.Context) (Kind, error) {
	if _, err := f.Tree(ctx); err != nil {
		return KindUnknown, err
	}
	return f.kind, nil
}

// TestMethods returns the names of @Test-annotated methods declared in the
// file, in source order.
func (f *SourceFile) TestMethods(ctx context.Context) ([]string, error) {
	if _, err := f.Tree(ctx); err != nil {
		return nil, err
	}
	return f.testMethods, nil
}

func (f *SourceFile) classify(tree *lang.Tree) {
	switch f.language {
	case lang.LangJava:
		f.classifyJava(tree)
	case lang.LangPython:
		f.kind = KindScript
	default:
		f.kind = KindUnknown
	}
}

func (f *SourceFile) classifyJava(tree *lang.Tree) {
	hasInterface := false
	hasClass := false
	hasMain := false

	for _, n := range lang.FindAll(tree.Root, "interface_declaration", "class_declaration", "method_declaration") {
		switch n.Type {
		case "interface_declaration":
			hasInterface = true
		case "class_declaration":
			hasClass = true
		case "method_declaration":
			if name := methodName(tree, n); name != "" {
				if isTestMethod(tree, n) {
					f.testMethods = append(f.testMethods, name)
				}
				if name == "main" && isStatic(n) {
					hasMain = true
				}
			}
		}
	}

	switch {
	case len(f.testMethods) > 0:
		f.kind = KindTest
	case hasMain:
		f.kind = KindClassWithMain
	case hasClass:
		f.kind = KindClass
	case hasInterface:
		f.kind = KindInterface
	default:
		f.kind = KindUnknown
	}
}

func methodName(tree *lang.Tree, method *lang.Node) string {
	if name := method.ChildByField("name"); name != nil {
		return tree.Text(name)
	}
	return ""
}

func isStatic(method *lang.Node) bool {
	mods := method.ChildOfType("modifiers")
	if mods == nil {
		return false
	}
	for _, m := range mods.Children {
		if m.Type == "static" {
			return true
		}
	}
	return false
}

// isTestMethod checks the method's modifiers for a Test annotation, with or
// without arguments. Fully qualified forms such as
// org.junit.jupiter.api.Test match by their final segment.
func isTestMethod(tree *lang.Tree, method *lang.Node) bool {
	mods := method.ChildOfType("modifiers")
	if mods == nil {
		return false
	}
	for _, m := range mods.Children {
		if m.Type != "marker_annotation" && m.Type != "annotation" {
			continue
		}
		name := m.ChildByField("name")
		if name == nil {
			continue
		}
		full := tree.Text(name)
		if full == "Test" || strings.HasSuffix(full, ".Test") {
			return true
		}
	}
	return false
}
