package diagram

import (
	"strings"
	"unicode/utf8"

	"github.com/diagramtool/diagramtool/pkg/model"
)

// Box metrics in diagram units. Text is monospaced: every character is
// CharWidth wide and every line LineHeight tall.
const (
	FontSize   = 16
	CharWidth  = 10 * (FontSize / 16)
	LineHeight = FontSize + 5
	BoxPadding = 10
)

// EnumStereotype heads the box of an enum.
const EnumStereotype = "«enumeration»"

// Member is one text line of a box compartment.
type Member struct {
	Text   string `json:"text"`
	Static bool   `json:"static,omitempty"`
}

// memberName drops the owner prefix of a dotted member name.
func memberName(name string) string {
	return name[strings.LastIndex(name, ".")+1:]
}

// AttributeText renders an attribute or property line: "+ name : type".
func AttributeText(name, typ string, v model.Visibility) string {
	return v.Symbol() + " " + memberName(name) + " : " + typ
}

// OperationText renders a method line: "+ name(arg : T, ...) : R".
func OperationText(name string, m model.Method) string {
	args := make([]string, len(m.Args))
	for i, a := range m.Args {
		args[i] = a.Name + " : " + a.Type
	}
	return m.Visibility.Symbol() + " " + memberName(name) + "(" + strings.Join(args, ", ") + ") : " + m.ReturnType
}

func operations(methods model.OrderedMap[model.Method]) []Member {
	out := make([]Member, 0, methods.Len())
	for name, m := range methods.All() {
		out = append(out, Member{Text: OperationText(name, m), Static: m.IsStatic})
	}
	return out
}

func properties(props model.OrderedMap[model.Property]) []Member {
	out := make([]Member, 0, props.Len())
	for name, p := range props.All() {
		out = append(out, Member{Text: AttributeText(name, p.Type, p.Visibility)})
	}
	return out
}

// classMembers lists attributes then properties in the first compartment
// and methods in the second.
func classMembers(c *model.Class) (attrs, ops []Member) {
	for name, a := range c.Attributes.All() {
		attrs = append(attrs, Member{Text: AttributeText(name, a.Type, a.Visibility)})
	}
	attrs = append(attrs, properties(c.Properties)...)
	return attrs, operations(c.Methods)
}

// enumMembers lists values then properties in the first compartment.
func enumMembers(e *model.Enum) (attrs, ops []Member) {
	for _, v := range e.Values {
		attrs = append(attrs, Member{Text: v})
	}
	attrs = append(attrs, properties(e.Properties)...)
	return attrs, operations(e.Methods)
}

// TextWidth is the rendered width of s.
func TextWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s) * CharWidth)
}

// boxSize fits a box around its header lines and both compartments.
func boxSize(header []string, attrs, ops []Member) (w, h float64) {
	var widest float64
	for _, s := range header {
		widest = max(widest, TextWidth(s))
	}
	for _, m := range append(attrs[:len(attrs):len(attrs)], ops...) {
		widest = max(widest, TextWidth(m.Text))
	}
	lines := len(header) + len(attrs) + len(ops)
	return widest + 2*BoxPadding, float64(lines*LineHeight) + 2*BoxPadding
}
