// Package project discovers and indexes the source files of a student
// submission. A Project is the object graders are configured against: it
// owns file lookup by logical name and the lazy parse cache behind it.
package project

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"autograde/internal/errors"
	"autograde/internal/lang"
	"autograde/internal/logging"
)

// Project is an immutable index of the source files under a root directory.
type Project struct {
	root  string
	files []*SourceFile

	byLogical map[string][]*SourceFile
	byFile    map[string][]*SourceFile
	byStem    map[string][]*SourceFile
	byRel     map[string]*SourceFile
}

// FromPath walks root and indexes every recognized source file. Hidden
// directories and the engine's own work directory are skipped. A missing or
// unreadable root is a NotFound error; an empty project is valid.
func FromPath(root string, logger *logging.Logger) (*Project, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Newf(errors.NotFound, "project root %q does not exist", root)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.NotFound, "project root %q is not a directory", root)
	}

	p := &Project{
		root:      root,
		byLogical: make(map[string][]*SourceFile),
		byFile:    make(map[string][]*SourceFile),
		byStem:    make(map[string][]*SourceFile),
		byRel:     make(map[string]*SourceFile),
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "bin" || name == "build") {
				return filepath.SkipDir
			}
			return nil
		}

		language, ok := lang.LanguageFromExtension(strings.ToLower(filepath.Ext(path)))
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		f, err := newSourceFile(path, rel, language)
		if err != nil {
			// Unreadable files are skipped, not fatal: the rest of the
			// project can still be graded.
			if logger != nil {
				logger.Warn("skipping unreadable file", map[string]interface{}{
					"path": rel, "error": err.Error(),
				})
			}
			return nil
		}
		p.add(f)
		return nil
	})
	if walkErr != nil {
		return nil, errors.New(errors.NotFound, "walking project root "+root, walkErr)
	}

	if logger != nil {
		logger.Debug("indexed project", map[string]interface{}{
			"root": root, "files": len(p.files),
		})
	}
	return p, nil
}

func (p *Project) add(f *SourceFile) {
	p.files = append(p.files, f)
	p.byLogical[f.LogicalName()] = append(p.byLogical[f.LogicalName()], f)
	p.byFile[f.FileName()] = append(p.byFile[f.FileName()], f)
	p.byStem[f.Stem()] = append(p.byStem[f.Stem()], f)
	p.byRel[f.RelPath()] = f
}

// Root returns the project root directory.
func (p *Project) Root() string { return p.root }

// Files returns all indexed source files in walk order.
func (p *Project) Files() []*SourceFile { return p.files }

// Names returns the sorted logical names of all indexed files.
func (p *Project) Names() []string {
	names := make([]string, 0, len(p.byLogical))
	for n := range p.byLogical {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Contains reports whether Lookup would resolve name unambiguously.
func (p *Project) Contains(name string) bool {
	_, err := p.Lookup(name)
	return err == nil
}

// Lookup resolves name to a single source file. Resolution tries, in order:
// the package-qualified logical name, the bare file name, the file stem, and
// the root-relative path. The first rung that yields exactly one file wins;
// a rung yielding several files is an ambiguity error rather than a
// fall-through.
func (p *Project) Lookup(name string) (*SourceFile, error) {
	rungs := [][]*SourceFile{
		p.byLogical[name],
		p.byFile[name],
		p.byStem[name],
	}
	if f, ok := p.byRel[filepath.ToSlash(name)]; ok {
		rungs = append(rungs, []*SourceFile{f})
	}

	for _, candidates := range rungs {
		switch len(candidates) {
		case 0:
			continue
		case 1:
			return candidates[0], nil
		default:
			paths := make([]string, len(candidates))
			for i, c := range candidates {
				paths[i] = c.RelPath()
			}
			return nil, errors.Newf(errors.DuplicateName,
				"name %q is ambiguous in the project: %s", name, strings.Join(paths, ", "))
		}
	}
	return nil, errors.Newf(errors.NotFound, "could not find %q in the project", name)
}

// Describe renders a structural summary of every file for inclusion in
// feedback prompts. Files that cannot be parsed are listed with the parse
// failure instead of aborting the whole summary.
func (p *Project) Describe(ctx context.Context) string {
	var b strings.Builder
	b.WriteString("<project>\n")
	for _, f := range p.files {
		b.WriteString(describeFile(ctx, f))
	}
	b.WriteString("</project>\n")
	return b.String()
}

func describeFile(ctx context.Context, f *SourceFile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  <file path=%q name=%q>\n", f.RelPath(), f.LogicalName())
	tree, err := f.Tree(ctx)
	if err != nil {
		fmt.Fprintf(&b, "    <unparsed reason=%q/>\n", err.Error())
		b.WriteString("  </file>\n")
		return b.String()
	}

	switch f.language {
	case lang.LangJava:
		describeJava(&b, tree)
	case lang.LangPython:
		describePython(&b, tree)
	}
	b.WriteString("  </file>\n")
	return b.String()
}
