package python

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/diagramtool/diagramtool/pkg/model"
)

// members is where the callables and attributes of one class or enum go.
// Enums have no attributes and no relations, so those fields are nil.
type members struct {
	owner      string
	methods    *model.OrderedMap[model.Method]
	properties *model.OrderedMap[model.Property]
	attributes *model.OrderedMap[model.Attribute]
	aggregate  *model.Names
	composite  *model.Names
}

// callable is the classification of a function declared in a class body:
// either a methodDecl or a propertyDecl.
type callable interface{ isCallable() }

type methodDecl struct {
	static bool
}

type propertyDecl struct {
	name    string
	mode    model.Mode
	deleter bool
}

func (methodDecl) isCallable()   {}
func (propertyDecl) isCallable() {}

// classifyCallable decides once, from its decorators, whether a function
// in a class body is a method or a property accessor.
func classifyCallable(name string, decorators []string) callable {
	static := false
	for _, d := range decorators {
		switch {
		case d == "property" || d == "cached_property" || strings.HasSuffix(d, ".cached_property"):
			return propertyDecl{name: name, mode: model.ModeRead}
		case strings.HasSuffix(d, ".setter"):
			return propertyDecl{name: strings.TrimSuffix(d, ".setter"), mode: model.ModeWrite}
		case strings.HasSuffix(d, ".deleter"):
			return propertyDecl{name: strings.TrimSuffix(d, ".deleter"), deleter: true}
		case d == "staticmethod":
			static = true
		}
	}
	return methodDecl{static: static}
}

// param is a formal parameter together with its annotation node, if any.
type param struct {
	arg        model.Arg
	annotation *sitter.Node
}

// params lists the named parameters of a function definition. Splat
// parameters (*args, **kwargs) are skipped.
func (f *sourceFile) params(def *sitter.Node) []param {
	var out []param
	for _, p := range namedChildren(def.ChildByFieldName("parameters")) {
		var name, ann *sitter.Node
		switch p.Type() {
		case "identifier":
			name = p
		case "typed_parameter":
			if first := p.NamedChild(0); first != nil && first.Type() == "identifier" {
				name = first
			}
			ann = p.ChildByFieldName("type")
		case "default_parameter":
			name = p.ChildByFieldName("name")
		case "typed_default_parameter":
			name = p.ChildByFieldName("name")
			ann = p.ChildByFieldName("type")
		}
		if name == nil || name.Type() != "identifier" {
			continue
		}
		typ := model.Unknown
		if ann != nil {
			typ = f.renderType(ann)
		}
		out = append(out, param{arg: model.Arg{Name: f.text(name), Type: typ}, annotation: ann})
	}
	return out
}

func argsOf(params []param) []model.Arg {
	out := make([]model.Arg, 0, len(params))
	for _, p := range params {
		out = append(out, p.arg)
	}
	return out
}

// callable records a function declared in a class body.
func (w *walker) callable(sink *members, def *sitter.Node, decorators []string) error {
	name := w.f.text(def.ChildByFieldName("name"))
	params := w.f.params(def)

	switch d := classifyCallable(name, decorators).(type) {
	case propertyDecl:
		if err := w.property(sink, def, d, params); err != nil {
			return err
		}
	case methodDecl:
		ret, err := w.f.returnType(def, name)
		if err != nil {
			return err
		}
		sink.methods.Set(name, model.Method{
			Args:       argsOf(params),
			ReturnType: ret,
			IsStatic:   d.static,
			Visibility: model.VisibilityOf(name),
		})
	}

	w.aggregates(sink, params)
	if name == "__init__" && sink.attributes != nil {
		return w.selfAttributes(sink, def, params)
	}
	return nil
}

// property records a getter or setter. A getter and a setter for the same
// name combine into one read-write property; the getter's type wins.
func (w *walker) property(sink *members, def *sitter.Node, d propertyDecl, params []param) error {
	old, exists := sink.properties.Get(d.name)
	if d.deleter {
		return nil
	}

	var typ string
	var err error
	if d.mode == model.ModeRead {
		typ, err = w.f.returnType(def, d.name)
	} else {
		typ, err = w.setterType(def, params)
	}
	if err != nil {
		return err
	}

	p := model.Property{Type: typ, Visibility: model.VisibilityOf(d.name), Mode: d.mode}
	if exists {
		p.Mode = old.Mode.With(d.mode)
		if p.Type == model.Unknown || (d.mode == model.ModeWrite && old.Type != model.Unknown) {
			p.Type = old.Type
		}
	}
	sink.properties.Set(d.name, p)
	return nil
}

// setterType is the annotation of the value parameter, else a same-line
// type comment, else unknown.
func (w *walker) setterType(def *sitter.Node, params []param) (string, error) {
	if len(params) > 1 && params[1].annotation != nil {
		return params[1].arg.Type, nil
	}
	if t, ok, err := w.f.typeComment(def.StartPoint().Row); err != nil || ok {
		return t, err
	}
	return model.Unknown, nil
}

// aggregates adds every known class referenced by a parameter annotation
// to the owner's aggregate set, the owner itself included. The receiver
// parameter is skipped.
func (w *walker) aggregates(sink *members, params []param) {
	if sink.aggregate == nil {
		return
	}
	for _, p := range params {
		if p.annotation == nil || p.arg.Name == "self" || p.arg.Name == "cls" {
			continue
		}
		for _, ref := range w.f.referencedNames(p.annotation) {
			if cls := w.known.match(ref); cls != "" {
				sink.aggregate.Add(cls)
			}
		}
	}
}

// selfAttributes records "self.<name> = value" assignments in a
// constructor body as attributes. Constructing a known class marks it as
// a composite of the owner.
func (w *walker) selfAttributes(sink *members, def *sitter.Node, params []param) error {
	return w.visitAssignments(def.ChildByFieldName("body"), func(a *sitter.Node) error {
		targets, annotation, value := assignmentParts(a)
		for _, t := range targets {
			name, ok := w.selfTarget(t)
			if !ok || sink.properties.Has(name) {
				continue
			}
			if old, ok := sink.attributes.Get(name); ok && old.Type != model.Unknown {
				continue
			}
			typ, err := w.selfAttributeType(sink, annotation, value, params, t.StartPoint().Row)
			if err != nil {
				return err
			}
			sink.attributes.Set(name, model.Attribute{Type: typ, Visibility: model.VisibilityOf(name)})
		}
		return nil
	})
}

// selfTarget returns the attribute name of a self.<name> target.
func (w *walker) selfTarget(t *sitter.Node) (string, bool) {
	if t.Type() != "attribute" {
		return "", false
	}
	obj := t.ChildByFieldName("object")
	if obj == nil || obj.Type() != "identifier" || w.f.text(obj) != "self" {
		return "", false
	}
	return w.f.text(t.ChildByFieldName("attribute")), true
}

// selfAttributeType resolves a constructor-assigned attribute: annotation,
// then the annotated constructor parameter it copies, then the known class
// it constructs, then literal kind, type comment and unknown.
func (w *walker) selfAttributeType(sink *members, annotation, value *sitter.Node, params []param, row uint32) (string, error) {
	if annotation != nil {
		return w.f.renderType(annotation), nil
	}
	if value != nil {
		switch value.Type() {
		case "identifier":
			name := w.f.text(value)
			for _, p := range params {
				if p.arg.Name == name && p.annotation != nil {
					return p.arg.Type, nil
				}
			}
		case "call":
			if cls := w.known.match(w.f.renderType(value.ChildByFieldName("function"))); cls != "" {
				if cls != sink.owner {
					sink.composite.Add(cls)
				}
				return cls, nil
			}
		}
	}
	return w.f.valueType(nil, value, row)
}

// visitAssignments calls visit for every outermost assignment under n,
// without descending into nested function, class or lambda scopes.
func (w *walker) visitAssignments(n *sitter.Node, visit func(a *sitter.Node) error) error {
	for _, ch := range namedChildren(n) {
		switch ch.Type() {
		case "function_definition", "class_definition", "decorated_definition", "lambda":
			continue
		case "assignment":
			if err := visit(ch); err != nil {
				return err
			}
			continue
		}
		if err := w.visitAssignments(ch, visit); err != nil {
			return err
		}
	}
	return nil
}
