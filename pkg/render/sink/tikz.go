package sink

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/diagramtool/diagramtool/pkg/diagram"
)

// Diagram units per TeX length unit. One em is the font size and one ex
// half of it.
const (
	pxPerEm = diagram.FontSize
	pxPerEx = diagram.FontSize / 2.0
)

// texEscaper quotes the characters TeX treats specially in member text.
var texEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"{", `\{`,
	"}", `\}`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
	"_", `\string_`,
	"#", `\#`,
	"%", `\%`,
	"&", `\&`,
	"$", `\$`,
)

// TikZOption configures TikZ rendering.
type TikZOption func(*tikzRenderer)

type tikzRenderer struct {
	standalone bool
}

// WithStandalone wraps the picture in a compilable standalone document that
// loads pgf-umlcd.
func WithStandalone() TikZOption { return func(r *tikzRenderer) { r.standalone = true } }

// RenderTikZ writes the diagram as a tikzpicture of pgf-umlcd class
// environments. Each box is anchored at the middle of its top edge; the y
// axis points up, so diagram y is negated.
func RenderTikZ(l *diagram.Layout, opts ...TikZOption) []byte {
	r := tikzRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	if r.standalone {
		buf.WriteString("\\documentclass[border=10pt]{standalone}\n")
		buf.WriteString("\\usepackage{pgf-umlcd}\n")
		buf.WriteString("\\begin{document}\n")
	}
	buf.WriteString("\\begin{tikzpicture}\n")
	for i := range l.Entities {
		buf.WriteString(tikzClass(&l.Entities[i]))
	}
	buf.WriteString("\\end{tikzpicture}\n")
	if r.standalone {
		buf.WriteString("\\end{document}\n")
	}
	return buf.Bytes()
}

func tikzClass(e *diagram.Entity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\\begin{class}[text width=%sem]{%s}{%sem ,%sex}\n",
		texNumber(e.Width/pxPerEm), texEscaper.Replace(e.Name), texNumber((e.X+e.Width/2)/pxPerEm), texNumber(-e.Y/pxPerEx))
	for _, p := range e.Parents {
		fmt.Fprintf(&b, "\\inherit{%s}\n", texEscaper.Replace(p))
	}
	for _, m := range e.Attributes {
		fmt.Fprintf(&b, "\\attribute{%s}\n", texEscaper.Replace(m.Text))
	}
	for _, m := range e.Operations {
		if m.Static {
			fmt.Fprintf(&b, "\\operation{\\underline{%s}}\n", texEscaper.Replace(m.Text))
		} else {
			fmt.Fprintf(&b, "\\operation{%s}\n", texEscaper.Replace(m.Text))
		}
	}
	b.WriteString("\\end{class}\n")
	return b.String()
}

// texNumber formats a length with at most three decimals.
func texNumber(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
