package python

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/diagramtool/diagramtool/pkg/errors"
	"github.com/diagramtool/diagramtool/pkg/extract"
	"github.com/diagramtool/diagramtool/pkg/model"
)

// Language registers the Python front end.
var Language = &extract.Language{
	Name:       "python",
	Extensions: []string{".py", ".pyi"},
	New:        func(opts extract.Options) extract.Frontend { return NewExtractor(opts) },
}

// enumBases are the base classes that make a class an enumeration.
var enumBases = map[string]bool{
	"Enum":    true,
	"IntEnum": true,
	"StrEnum": true,
	"Flag":    true,
	"IntFlag": true,
}

// Extractor builds a [model.Model] from Python source files.
type Extractor struct {
	opts extract.Options
}

// NewExtractor returns an extractor configured by opts.
func NewExtractor(opts extract.Options) *Extractor {
	return &Extractor{opts: opts.WithDefaults()}
}

// Extract parses the entry file at path and, when imports are followed,
// every file reachable from it, and returns the merged model.
//
// Each call runs with its own visited set and tree cache, so repeated calls
// on one Extractor are independent. Any input error aborts the whole
// extraction.
func (e *Extractor) Extract(ctx context.Context, path string) (*model.Model, error) {
	entry, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "resolve %s", path)
	}
	var boundary string
	if e.opts.Boundary != "" {
		if boundary, err = filepath.Abs(e.opts.Boundary); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "resolve root")
		}
		if !within(boundary, entry) {
			return nil, errors.New(errors.ErrCodeInvalidPath, "entry %s is outside the root", filepath.Base(entry))
		}
	}
	rc, err := newRunContext(ctx, e.opts.TreeCacheSize, e.opts.DumpDir, e.opts.Logger)
	if err != nil {
		return nil, err
	}
	defer rc.close()
	rc.boundary = boundary
	rc.entryDir = filepath.Dir(entry)

	res := &ImportResolver{Root: filepath.Dir(entry), Boundary: boundary, Logger: e.opts.Logger}
	known, err := e.knownClasses(rc, res, entry)
	if err != nil {
		return nil, err
	}
	m, err := e.parseFile(rc, res, known, entry)
	if err != nil {
		return nil, err
	}
	e.opts.Logger.Debug("extraction complete",
		"files", len(rc.order),
		"classes", m.Classes.Len(),
		"enums", m.Enums.Len(),
		"functions", m.Functions.Len())
	return m, nil
}

// parseFile extracts path and then, when following imports, merges in every
// imported file not yet visited in this run.
func (e *Extractor) parseFile(rc *runContext, res *ImportResolver, known knownClasses, path string) (*model.Model, error) {
	if err := rc.ctx.Err(); err != nil {
		return nil, err
	}
	if err := rc.markVisited(path); err != nil {
		return nil, err
	}
	f, err := rc.load(path)
	if err != nil {
		return nil, err
	}
	if err := rc.dump(f); err != nil {
		return nil, err
	}
	rc.logger.Info("parsing file", "file", path)

	w := &walker{f: f, known: known, out: model.New()}
	refs, err := w.module(f.root())
	if err != nil {
		return nil, err
	}

	// Required imports must resolve even when they are not followed.
	var imported []string
	for _, ref := range refs {
		paths, err := res.Resolve(path, ref)
		if err != nil {
			return nil, err
		}
		imported = append(imported, paths...)
	}
	if !e.opts.FollowImports {
		return w.out, nil
	}
	for _, p := range imported {
		if rc.visited[p] {
			continue
		}
		sub, err := e.parseFile(rc, res, known, p)
		if err != nil {
			return nil, err
		}
		model.Merge(w.out, sub)
	}
	return w.out, nil
}

// knownClasses collects every class and enum name declared in the entry
// file and, when following imports, in every file reachable from it.
func (e *Extractor) knownClasses(rc *runContext, res *ImportResolver, entry string) (knownClasses, error) {
	quiet := *res
	quiet.Logger = nil

	known := knownClasses{}
	seen := map[string]bool{}
	queue := []string{entry}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if seen[p] {
			continue
		}
		seen[p] = true

		f, err := rc.load(p)
		if err != nil {
			return nil, err
		}
		for _, name := range f.declaredClasses(f.root(), nil, false) {
			known[name] = true
		}
		if !e.opts.FollowImports {
			break
		}
		for _, n := range namedChildren(f.root()) {
			for _, ref := range f.importRefs(n) {
				paths, err := quiet.Resolve(p, ref)
				if err != nil {
					return nil, err
				}
				queue = append(queue, paths...)
			}
		}
	}
	return known, nil
}

// knownClasses is the set of class names an annotation may refer to.
type knownClasses map[string]bool

// match returns the class a type reference names, or "". A dotted
// reference such as shapes.Circle also matches its last segment.
func (k knownClasses) match(ref string) string {
	if k[ref] {
		return ref
	}
	if i := strings.LastIndex(ref, "."); i >= 0 && k[ref[i+1:]] {
		return ref[i+1:]
	}
	return ""
}

// declaredClasses lists the qualified names of the classes declared under
// n. Method bodies are not searched, matching what the walker extracts.
func (f *sourceFile) declaredClasses(n *sitter.Node, stack []string, inClass bool) []string {
	var out []string
	for _, ch := range namedChildren(n) {
		def := unwrapDecorated(ch)
		switch def.Type() {
		case "class_definition":
			name := f.text(def.ChildByFieldName("name"))
			out = append(out, qualify(stack, name))
			out = append(out, f.declaredClasses(def.ChildByFieldName("body"), push(stack, name), true)...)
		case "function_definition":
			if inClass {
				continue
			}
			name := f.text(def.ChildByFieldName("name"))
			out = append(out, f.declaredClasses(def.ChildByFieldName("body"), push(stack, name), false)...)
		}
	}
	return out
}

// walker extracts the declarations of one file into out.
type walker struct {
	f     *sourceFile
	known knownClasses
	out   *model.Model
}

// module walks the top-level statements of a file and returns its imports.
// Statements it does not recognize are ignored.
func (w *walker) module(root *sitter.Node) ([]ImportRef, error) {
	var refs []ImportRef
	for _, n := range namedChildren(root) {
		switch n.Type() {
		case "import_statement", "import_from_statement":
			refs = append(refs, w.f.importRefs(n)...)
		case "expression_statement":
			if err := w.globals(n); err != nil {
				return nil, err
			}
		default:
			if err := w.definition(n, nil); err != nil {
				return nil, err
			}
		}
	}
	return refs, nil
}

// definition handles a function or class at module or function scope.
func (w *walker) definition(n *sitter.Node, stack []string) error {
	def := unwrapDecorated(n)
	switch def.Type() {
	case "function_definition":
		return w.function(def, stack)
	case "class_definition":
		return w.classOrEnum(def, stack)
	}
	return nil
}

func (w *walker) function(def *sitter.Node, stack []string) error {
	name := w.f.text(def.ChildByFieldName("name"))
	ret, err := w.f.returnType(def, name)
	if err != nil {
		return err
	}
	w.out.AddFunction(&model.Function{
		Name:       qualify(stack, name),
		Args:       argsOf(w.f.params(def)),
		ReturnType: ret,
	})
	inner := push(stack, name)
	for _, n := range namedChildren(def.ChildByFieldName("body")) {
		if err := w.definition(n, inner); err != nil {
			return err
		}
	}
	return nil
}

// classOrEnum classifies a class declaration once, by its bases.
func (w *walker) classOrEnum(def *sitter.Node, stack []string) error {
	bases := w.f.bases(def)
	if slices.ContainsFunc(bases, isEnumBase) {
		return w.enum(def, stack)
	}
	return w.class(def, stack, bases)
}

func isEnumBase(base string) bool {
	return enumBases[strings.TrimPrefix(base, "enum.")]
}

func (w *walker) class(def *sitter.Node, stack, bases []string) error {
	name := w.f.text(def.ChildByFieldName("name"))
	c := &model.Class{Name: qualify(stack, name)}
	for _, b := range bases {
		c.InheritFrom.Add(b)
	}
	sink := &members{
		owner:      c.Name,
		methods:    &c.Methods,
		properties: &c.Properties,
		attributes: &c.Attributes,
		aggregate:  &c.Aggregate,
		composite:  &c.Composite,
	}
	nested, err := w.body(def, sink, func(target *sitter.Node, annotation, value *sitter.Node) error {
		attr := w.f.text(target)
		typ, err := w.f.valueType(annotation, value, target.StartPoint().Row)
		if err != nil {
			return err
		}
		c.Attributes.Set(attr, model.Attribute{Type: typ, Visibility: model.VisibilityOf(attr)})
		return nil
	})
	if err != nil {
		return err
	}
	w.out.AddClass(c)
	return w.nested(nested, push(stack, name))
}

func (w *walker) enum(def *sitter.Node, stack []string) error {
	name := w.f.text(def.ChildByFieldName("name"))
	e := &model.Enum{Name: qualify(stack, name)}
	sink := &members{
		owner:      e.Name,
		methods:    &e.Methods,
		properties: &e.Properties,
	}
	nested, err := w.body(def, sink, func(target *sitter.Node, _, _ *sitter.Node) error {
		e.Values.Add(w.f.text(target))
		return nil
	})
	if err != nil {
		return err
	}
	w.out.AddEnum(e)
	return w.nested(nested, push(stack, name))
}

func (w *walker) nested(defs []*sitter.Node, stack []string) error {
	for _, n := range defs {
		if err := w.classOrEnum(n, stack); err != nil {
			return err
		}
	}
	return nil
}

// body walks a class body: callables go to sink, plain-name assignment
// targets go to assign, and nested class declarations are returned so
// they are registered after their owner.
func (w *walker) body(def *sitter.Node, sink *members, assign func(target, annotation, value *sitter.Node) error) ([]*sitter.Node, error) {
	var nested []*sitter.Node
	for _, st := range namedChildren(def.ChildByFieldName("body")) {
		inner := unwrapDecorated(st)
		switch inner.Type() {
		case "function_definition":
			if err := w.callable(sink, inner, w.f.decorators(st)); err != nil {
				return nil, err
			}
		case "class_definition":
			nested = append(nested, inner)
		case "expression_statement":
			for _, a := range namedChildren(inner) {
				if a.Type() != "assignment" {
					continue
				}
				targets, annotation, value := assignmentParts(a)
				for _, t := range targets {
					if t.Type() != "identifier" {
						continue
					}
					if err := assign(t, annotation, value); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return nested, nil
}

// globals records module-level assignments to plain names.
func (w *walker) globals(stmt *sitter.Node) error {
	for _, a := range namedChildren(stmt) {
		if a.Type() != "assignment" {
			continue
		}
		targets, annotation, value := assignmentParts(a)
		for _, t := range targets {
			if t.Type() != "identifier" {
				continue
			}
			typ, err := w.f.valueType(annotation, value, t.StartPoint().Row)
			if err != nil {
				return err
			}
			w.out.AddGlobal(&model.GlobalVariable{Name: w.f.text(t), Type: typ})
		}
	}
	return nil
}

// assignmentParts flattens a possibly chained assignment (a = b = value)
// into its targets, its annotation and the assigned value.
func assignmentParts(a *sitter.Node) (targets []*sitter.Node, annotation, value *sitter.Node) {
	for a != nil && a.Type() == "assignment" {
		if left := a.ChildByFieldName("left"); left != nil {
			targets = append(targets, left)
		}
		if t := a.ChildByFieldName("type"); t != nil && annotation == nil {
			annotation = t
		}
		right := a.ChildByFieldName("right")
		if right == nil || right.Type() != "assignment" {
			return targets, annotation, right
		}
		a = right
	}
	return targets, annotation, nil
}

// bases renders the declared base classes of a class definition, skipping
// keyword arguments such as metaclass=.
func (f *sourceFile) bases(def *sitter.Node) []string {
	var out []string
	for _, b := range namedChildren(def.ChildByFieldName("superclasses")) {
		switch b.Type() {
		case "keyword_argument", "list_splat", "dictionary_splat", "comment":
			continue
		}
		out = append(out, f.renderType(b))
	}
	return out
}

// decorators returns the dotted names of the decorators of a
// decorated_definition; calls contribute their callee.
func (f *sourceFile) decorators(n *sitter.Node) []string {
	if n.Type() != "decorated_definition" {
		return nil
	}
	var out []string
	for _, d := range namedChildren(n) {
		if d.Type() != "decorator" || d.NamedChildCount() == 0 {
			continue
		}
		expr := d.NamedChild(0)
		if expr.Type() == "call" {
			expr = expr.ChildByFieldName("function")
		}
		out = append(out, f.renderType(expr))
	}
	return out
}

func unwrapDecorated(n *sitter.Node) *sitter.Node {
	if n.Type() == "decorated_definition" {
		if def := n.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return n
}

func qualify(stack []string, name string) string {
	return strings.Join(push(stack, name), ".")
}

func push(stack []string, name string) []string {
	return slices.Concat(stack, []string{name})
}
