// Package render turns placed class diagrams into output documents.
//
// # Overview
//
// Renderers consume a [diagram.Layout], the exported form of a placed
// diagram, and never see the structural model. This package holds the
// shared pieces:
//
//   - [Format] names and parsing (svg, tex, dot, json, pdf, png)
//   - SVG to PDF/PNG conversion through rsvg-convert
//
// The emitters live in subpackages:
//
//   - [sink]: SVG, TikZ, JSON, and the PDF/PNG wrappers around SVG
//   - [nodelink]: Graphviz DOT with record-shaped class nodes
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG using the external
// rsvg-convert tool (from librsvg). When it is missing they fail with an
// UNSUPPORTED error that carries install instructions.
//
//	svg := sink.RenderSVG(l)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [diagram.Layout]: github.com/diagramtool/diagramtool/pkg/diagram#Layout
// [sink]: github.com/diagramtool/diagramtool/pkg/render/sink
// [nodelink]: github.com/diagramtool/diagramtool/pkg/render/nodelink
package render
