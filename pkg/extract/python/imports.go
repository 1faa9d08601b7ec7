package python

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/diagramtool/diagramtool/pkg/errors"
)

// ImportRef is a module reference taken from an import statement.
type ImportRef struct {
	// Module is the dotted module path; empty for "from . import x".
	Module string
	// Level is the number of leading dots; zero for absolute imports.
	Level int
	// Names are the imported names of a from-import, used when Module is empty.
	Names []string
}

// Relative reports whether r must resolve to a file relative to the importer.
func (r ImportRef) Relative() bool { return r.Level > 0 }

// ImportResolver turns module references into source files.
//
// Absolute references are optional: they resolve to a module file or a
// package index under the importer's directory (or Root) when one exists,
// and are skipped otherwise since they usually name installed packages.
// Relative references are required: a missing target is an input error.
// With a Boundary set, a relative reference that climbs out of it is an
// INVALID_PATH error and messages name files relative to it.
type ImportResolver struct {
	// Root is a second search directory for absolute imports, normally the
	// directory of the entry file.
	Root string
	// Boundary confines resolved files to one directory tree.
	Boundary string
	// Exists reports whether a regular file exists at path. Nil uses the
	// file system.
	Exists func(path string) bool
	Logger *log.Logger
}

// Resolve returns the files ref refers to when imported from the file at from.
func (r *ImportResolver) Resolve(from string, ref ImportRef) ([]string, error) {
	dir := filepath.Dir(from)
	if !ref.Relative() {
		dirs := []string{dir}
		if r.Root != "" && filepath.Clean(r.Root) != dir {
			dirs = append(dirs, filepath.Clean(r.Root))
		}
		for _, d := range dirs {
			if p, ok := r.module(d, ref.Module); ok {
				r.debug("optional import", ref, p)
				return []string{p}, nil
			}
		}
		r.debug("optional import skipped", ref, "")
		return nil, nil
	}

	base := dir
	for i := 1; i < ref.Level; i++ {
		base = filepath.Dir(base)
	}
	if r.Boundary != "" && !within(r.Boundary, base) {
		return nil, errors.New(errors.ErrCodeInvalidPath, "import %s%s in %s leaves the root",
			strings.Repeat(".", ref.Level), ref.Module, displayPath(r.Boundary, from))
	}
	if ref.Module != "" {
		p, ok := r.module(base, ref.Module)
		r.debug("required import", ref, p)
		if !ok {
			return nil, errors.New(errors.ErrCodeFileNotFound, "file %s not found (imported from %s)",
				displayPath(r.Boundary, filepath.Join(base, modulePath(ref.Module)+".py")), displayPath(r.Boundary, from))
		}
		return []string{p}, nil
	}

	// "from . import a, b": each name is a submodule or a member of the
	// package index.
	var out []string
	index := filepath.Join(base, "__init__.py")
	for _, name := range ref.Names {
		if p, ok := r.module(base, name); ok {
			out = append(out, p)
			continue
		}
		if !r.exists(index) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "file %s not found (imported from %s)",
				displayPath(r.Boundary, filepath.Join(base, name+".py")), displayPath(r.Boundary, from))
		}
		if !slices.Contains(out, index) {
			out = append(out, index)
		}
	}
	r.debug("required import", ref, strings.Join(out, ","))
	return out, nil
}

// module resolves a dotted module under dir to "mod.py" or "mod/__init__.py".
func (r *ImportResolver) module(dir, module string) (string, bool) {
	if module == "" {
		return "", false
	}
	rel := modulePath(module)
	for _, p := range []string{
		filepath.Join(dir, rel+".py"),
		filepath.Join(dir, rel, "__init__.py"),
	} {
		if r.exists(p) {
			return p, true
		}
	}
	return "", false
}

func (r *ImportResolver) exists(path string) bool {
	if r.Exists != nil {
		return r.Exists(path)
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (r *ImportResolver) debug(msg string, ref ImportRef, path string) {
	if r.Logger == nil {
		return
	}
	r.Logger.Debug(msg, "module", strings.Repeat(".", ref.Level)+ref.Module, "path", path)
}

func modulePath(module string) string {
	return strings.ReplaceAll(module, ".", string(filepath.Separator))
}

// importRefs reads the module references of an import statement node.
func (f *sourceFile) importRefs(n *sitter.Node) []ImportRef {
	switch n.Type() {
	case "import_statement":
		var refs []ImportRef
		for _, ch := range namedChildren(n) {
			if name := f.importedModule(ch); name != "" {
				refs = append(refs, ImportRef{Module: name})
			}
		}
		return refs
	case "import_from_statement":
		mod := n.ChildByFieldName("module_name")
		if mod == nil {
			return nil
		}
		ref := ImportRef{}
		if mod.Type() == "relative_import" {
			for _, ch := range namedChildren(mod) {
				switch ch.Type() {
				case "import_prefix":
					ref.Level = strings.Count(f.text(ch), ".")
				case "dotted_name":
					ref.Module = f.text(ch)
				}
			}
		} else {
			ref.Module = f.text(mod)
		}
		for _, ch := range namedChildren(n) {
			if ch.StartByte() == mod.StartByte() {
				continue
			}
			if name := f.importedModule(ch); name != "" {
				ref.Names = append(ref.Names, name)
			}
		}
		return []ImportRef{ref}
	}
	return nil
}

// importedModule returns the dotted name of a dotted_name or aliased_import node.
func (f *sourceFile) importedModule(n *sitter.Node) string {
	switch n.Type() {
	case "dotted_name":
		return f.text(n)
	case "aliased_import":
		return f.text(n.ChildByFieldName("name"))
	}
	return ""
}
