package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/diagramtool/diagramtool/pkg/diagram"
	"github.com/diagramtool/diagramtool/pkg/render"
)

// Options configures DOT generation.
type Options struct {
	// NamesOnly drops the member compartments and labels each node with
	// its name alone.
	NamesOnly bool
}

var recordEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"{", `\{`,
	"}", `\}`,
	"|", `\|`,
	"<", `\<`,
	">", `\>`,
)

// ToDOT converts a placed diagram to Graphviz DOT. Classes become record
// nodes with a header and two member compartments; Graphviz computes its own
// placement, with parents ranked above their subclasses.
func ToDOT(l *diagram.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=record, style=filled, fillcolor=white, fontname=\"monospace\", fontsize=%d];\n", diagram.FontSize)
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for i := range l.Entities {
		e := &l.Entities[i]
		attrs := []string{fmt.Sprintf(`label="%s"`, fmtLabel(e, opts.NamesOnly))}
		if e.Stub {
			attrs = append(attrs, `style="filled,dashed"`)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", e.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, r := range l.Relations {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", r.Source, r.Target, edgeAttrs(r.Kind))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(e *diagram.Entity, namesOnly bool) string {
	header := make([]string, 0, 2)
	for _, h := range e.Header() {
		header = append(header, recordEscaper.Replace(h))
	}
	if namesOnly {
		return "{" + strings.Join(header, `\n`) + "}"
	}
	return "{" + strings.Join(header, `\n`) + "|" + compartment(e.Attributes) + "|" + compartment(e.Operations) + "}"
}

// compartment left-aligns each member line with the record \l terminator.
func compartment(members []diagram.Member) string {
	var b strings.Builder
	for _, m := range members {
		b.WriteString(recordEscaper.Replace(m.Text))
		b.WriteString(`\l`)
	}
	return b.String()
}

func edgeAttrs(kind diagram.RelationKind) string {
	switch kind {
	case diagram.Composition:
		return "dir=back, arrowtail=diamond"
	case diagram.Aggregation:
		return "dir=back, arrowtail=odiamond"
	default:
		return "arrowhead=onormal"
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg tag, sized in points, with one
// sized in user units.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
