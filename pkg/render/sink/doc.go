// Package sink writes placed class diagrams as SVG, TikZ and JSON, and as
// PDF or PNG through SVG conversion.
//
// # SVG
//
// [RenderSVG] draws each entity as a three-part UML box: a bold header
// (enums carry an italic «enumeration» line above the name), the attribute
// compartment and the operation compartment. Static operations are
// underlined and stub classes get a dashed frame. Relations are straight
// lines between box borders:
//
//   - INHERITANCE: hollow triangle at the parent
//   - COMPOSITION: filled diamond at the owner
//   - AGGREGATION: hollow diamond at the owner
//
// [WithBorder] adds a red frame around the diagram bounds.
//
// # TikZ
//
// [RenderTikZ] emits pgf-umlcd environments:
//
//	\begin{class}[text width=12.5em]{Shape}{6.25em ,-6.25ex}
//	\inherit{Base}
//	\attribute{+ area : float}
//	\operation{\underline{+ unit() : Shape}}
//	\end{class}
//
// Underscores become \string_ so identifiers survive TeX.
//
// # JSON
//
// [RenderJSON] writes the layout document itself, which makes a rendered
// layout re-renderable without the source.
package sink
