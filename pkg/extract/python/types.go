package python

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/diagramtool/diagramtool/pkg/errors"
	"github.com/diagramtool/diagramtool/pkg/model"
)

// typeCommentMarkers are the accepted spellings of a trailing type comment.
var typeCommentMarkers = []string{"# type: ", "#type:"}

// conventionalReturns maps special method names to the type the language
// requires them to return.
var conventionalReturns = map[string]string{
	"__init__":     "None",
	"__del__":      "None",
	"__setattr__":  "None",
	"__delattr__":  "None",
	"__setitem__":  "None",
	"__delitem__":  "None",
	"__str__":      "str",
	"__repr__":     "str",
	"__format__":   "str",
	"__bytes__":    "bytes",
	"__len__":      "int",
	"__hash__":     "int",
	"__index__":    "int",
	"__int__":      "int",
	"__float__":    "float",
	"__complex__":  "complex",
	"__bool__":     "bool",
	"__eq__":       "bool",
	"__ne__":       "bool",
	"__lt__":       "bool",
	"__le__":       "bool",
	"__gt__":       "bool",
	"__ge__":       "bool",
	"__contains__": "bool",
}

// typeComment returns the text after a "# type:" marker on the given
// zero-based source row. A row past the end of the file is an input error.
func (f *sourceFile) typeComment(row uint32) (string, bool, error) {
	if int(row) >= len(f.lines) {
		return "", false, errors.New(errors.ErrCodeLineOutOfRange,
			"line %d not found in file %s (%d lines)", row+1, f.label(), len(f.lines))
	}
	line := f.lines[row]
	for _, marker := range typeCommentMarkers {
		if _, after, ok := strings.Cut(line, marker); ok {
			return strings.TrimSpace(after), true, nil
		}
	}
	return "", false, nil
}

// returnType resolves the type of a callable: explicit annotation, then a
// same-line type comment, then the conventional type of a special method,
// then unknown.
func (f *sourceFile) returnType(def *sitter.Node, name string) (string, error) {
	if ann := def.ChildByFieldName("return_type"); ann != nil {
		return f.renderType(ann), nil
	}
	if t, ok, err := f.typeComment(def.StartPoint().Row); err != nil || ok {
		return t, err
	}
	if t, ok := conventionalReturns[name]; ok {
		return t, nil
	}
	return model.Unknown, nil
}

// valueType resolves the type of an assignment target: explicit annotation,
// then the runtime kind of a literal value, then a same-line type comment,
// then unknown.
func (f *sourceFile) valueType(annotation, value *sitter.Node, row uint32) (string, error) {
	if annotation != nil {
		return f.renderType(annotation), nil
	}
	if t, ok := f.literalKind(value); ok {
		return t, nil
	}
	if t, ok, err := f.typeComment(row); err != nil || ok {
		return t, err
	}
	return model.Unknown, nil
}

// literalKind returns the runtime type name of a literal constant.
func (f *sourceFile) literalKind(n *sitter.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case "string", "concatenated_string":
		if isBytesLiteral(f.text(n)) {
			return "bytes", true
		}
		return "str", true
	case "integer":
		return "int", true
	case "float":
		return "float", true
	case "true", "false":
		return "bool", true
	case "unary_operator":
		return f.literalKind(n.ChildByFieldName("argument"))
	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return f.literalKind(n.NamedChild(0))
		}
	}
	return "", false
}

func isBytesLiteral(s string) bool {
	prefix := strings.ToLower(s[:strings.IndexAny(s+"'", `'"`)])
	return strings.Contains(prefix, "b")
}

// renderType renders a type expression. Composite forms are rendered
// recursively: subscripts as Base[Arg, ...], lists as [A, B], tuples as
// (A, B), unions as A | B. String forward references lose their quotes.
func (f *sourceFile) renderType(n *sitter.Node) string {
	if n == nil {
		return model.Unknown
	}
	switch n.Type() {
	case "type", "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return f.renderType(n.NamedChild(0))
		}
	case "identifier":
		return f.text(n)
	case "attribute":
		return f.renderType(n.ChildByFieldName("object")) + "." + f.text(n.ChildByFieldName("attribute"))
	case "subscript":
		children := namedChildren(n)
		return f.renderType(children[0]) + "[" + f.renderList(children[1:]) + "]"
	case "generic_type":
		children := namedChildren(n)
		if len(children) == 2 {
			return f.renderType(children[0]) + "[" + f.renderList(namedChildren(children[1])) + "]"
		}
	case "list":
		return "[" + f.renderList(namedChildren(n)) + "]"
	case "tuple":
		return "(" + f.renderList(namedChildren(n)) + ")"
	case "string":
		return unquote(f.text(n))
	case "none":
		return "None"
	case "union_type":
		return f.renderJoined(namedChildren(n), " | ")
	case "binary_operator":
		if op := n.ChildByFieldName("operator"); op != nil && f.text(op) == "|" {
			return f.renderType(n.ChildByFieldName("left")) + " | " + f.renderType(n.ChildByFieldName("right"))
		}
	}
	return strings.Join(strings.Fields(f.text(n)), " ")
}

func (f *sourceFile) renderList(nodes []*sitter.Node) string {
	return f.renderJoined(nodes, ", ")
}

func (f *sourceFile) renderJoined(nodes []*sitter.Node, sep string) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, f.renderType(n))
	}
	return strings.Join(parts, sep)
}

// referencedNames lists every type name mentioned in a type expression,
// including names inside string forward references.
func (f *sourceFile) referencedNames(n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier":
		return []string{f.text(n)}
	case "attribute", "member_type":
		return []string{f.renderType(n)}
	case "string":
		return strings.FieldsFunc(unquote(f.text(n)), func(r rune) bool {
			return !(r == '_' || r == '.' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
		})
	}
	var out []string
	for _, ch := range namedChildren(n) {
		out = append(out, f.referencedNames(ch)...)
	}
	return out
}

// unquote strips a string literal's prefix and quotes.
func unquote(s string) string {
	s = strings.TrimLeft(s, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(s) >= 2*len(q) && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}
