package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/diagramtool/diagramtool/pkg/diagram"
)

const diagramCSS = `
    .entity rect { fill: white; stroke: black; stroke-width: 1.5; }
    .entity.stub rect { stroke-dasharray: 6 4; }
    .entity line { stroke: black; stroke-width: 1; }
    .entity text { font-family: monospace; font-size: %dpx; fill: black; }
    .entity .header { font-weight: bold; }
    .entity .stereotype { font-style: italic; font-weight: normal; }
    .entity .static { text-decoration: underline; }
    .relation { stroke: #444; stroke-width: 1.5; fill: none; }`

// Relation end markers. Inheritance points at the parent, the diamonds sit
// on the owning class.
const markerDefs = `  <defs>
    <marker id="inheritance" viewBox="0 0 20 20" refX="20" refY="10" markerWidth="14" markerHeight="14" markerUnits="userSpaceOnUse" orient="auto">
      <path d="M0,0 L20,10 L0,20 Z" fill="white" stroke="#444"/>
    </marker>
    <marker id="composition" viewBox="0 0 24 12" refX="0" refY="6" markerWidth="20" markerHeight="10" markerUnits="userSpaceOnUse" orient="auto-start-reverse">
      <path d="M0,6 L12,0 L24,6 L12,12 Z" fill="#444" stroke="#444"/>
    </marker>
    <marker id="aggregation" viewBox="0 0 24 12" refX="0" refY="6" markerWidth="20" markerHeight="10" markerUnits="userSpaceOnUse" orient="auto-start-reverse">
      <path d="M0,6 L12,0 L24,6 L12,12 Z" fill="white" stroke="#444"/>
    </marker>
  </defs>
`

// textBaseline lifts text off the bottom of its line box.
const textBaseline = 5

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	border    bool
	relations bool
}

// WithBorder draws a red frame around the diagram bounds.
func WithBorder() SVGOption { return func(r *svgRenderer) { r.border = true } }

// WithoutRelations omits the relation lines.
func WithoutRelations() SVGOption { return func(r *svgRenderer) { r.relations = false } }

// RenderSVG draws every entity as a UML box with its header, attribute and
// operation compartments, and every relation as a line with a UML end
// marker. The view box is the layout bounds.
func RenderSVG(l *diagram.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{relations: true}
	for _, opt := range opts {
		opt(&r)
	}

	b := l.Bounds
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		b.X, b.Y, b.Width, b.Height, b.Width, b.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", fmt.Sprintf(diagramCSS, diagram.FontSize))
	buf.WriteString(markerDefs)

	if r.border {
		fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="red" stroke-width="1"/>`+"\n",
			b.X, b.Y, b.Width, b.Height)
	}
	if r.relations {
		for _, rel := range l.Relations {
			renderRelation(&buf, l, rel)
		}
	}
	for i := range l.Entities {
		renderEntity(&buf, &l.Entities[i])
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderEntity(buf *bytes.Buffer, e *diagram.Entity) {
	class := "entity"
	if e.Stub {
		class += " stub"
	}
	fmt.Fprintf(buf, `  <g class="%s" id="entity-%s">`+"\n", class, escapeXML(e.Name))
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n", e.X, e.Y, e.Width, e.Height)

	y := e.Y + diagram.BoxPadding
	header := e.Header()
	for i, line := range header {
		y += diagram.LineHeight
		cls := "header"
		if e.IsEnum() && i == 0 {
			cls += " stereotype"
		}
		fmt.Fprintf(buf, `    <text class="%s" x="%.1f" y="%.1f" text-anchor="middle">%s</text>`+"\n",
			cls, e.X+e.Width/2, y-textBaseline, escapeXML(line))
	}

	for _, compartment := range [][]diagram.Member{e.Attributes, e.Operations} {
		if len(compartment) == 0 {
			continue
		}
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", e.X, y, e.X+e.Width, y)
		for _, m := range compartment {
			y += diagram.LineHeight
			cls := ""
			if m.Static {
				cls = ` class="static"`
			}
			fmt.Fprintf(buf, `    <text%s x="%.1f" y="%.1f">%s</text>`+"\n",
				cls, e.X+diagram.BoxPadding, y-textBaseline, escapeXML(m.Text))
		}
	}
	buf.WriteString("  </g>\n")
}

func renderRelation(buf *bytes.Buffer, l *diagram.Layout, rel diagram.Relation) {
	src, okS := l.Entity(rel.Source)
	dst, okD := l.Entity(rel.Target)
	if !okS || !okD || src == dst {
		return
	}
	x1, y1, x2, y2, ok := connect(src, dst)
	if !ok {
		return
	}

	var marker string
	switch rel.Kind {
	case diagram.Inheritance:
		marker = `marker-end="url(#inheritance)"`
	case diagram.Composition:
		marker = `marker-start="url(#composition)"`
	case diagram.Aggregation:
		marker = `marker-start="url(#aggregation)"`
	}
	fmt.Fprintf(buf, `  <line class="relation %s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" %s/>`+"\n",
		strings.ToLower(string(rel.Kind)), x1, y1, x2, y2, marker)
}

// connect returns the segment between the borders of a and b along the
// line joining their centres. ok is false when the centres coincide.
func connect(a, b *diagram.Entity) (x1, y1, x2, y2 float64, ok bool) {
	ax, ay := a.X+a.Width/2, a.Y+a.Height/2
	bx, by := b.X+b.Width/2, b.Y+b.Height/2
	dx, dy := bx-ax, by-ay
	if dx == 0 && dy == 0 {
		return 0, 0, 0, 0, false
	}
	ta := borderT(a.Width, a.Height, dx, dy)
	tb := borderT(b.Width, b.Height, dx, dy)
	return ax + ta*dx, ay + ta*dy, bx - tb*dx, by - tb*dy, true
}

// borderT is the fraction of (dx, dy) from the centre of a w×h box to its
// border.
func borderT(w, h, dx, dy float64) float64 {
	t := math.Inf(1)
	if dx != 0 {
		t = w / 2 / math.Abs(dx)
	}
	if dy != 0 {
		t = min(t, h/2/math.Abs(dy))
	}
	return t
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
