// Package nodelink renders class diagrams as Graphviz node-link graphs.
//
// # Overview
//
// Where the SVG and TikZ sinks draw boxes at the positions computed by the
// layout engine, this package hands the entities and relations to Graphviz
// and lets dot place them. Each class is a record node:
//
//	{Name|+ attr : int\l|+ op() : None\l}
//
// Inheritance edges point at the parent with a hollow arrowhead and the
// graph is ranked bottom to top, so base classes end up on top.
// Composition and aggregation edges carry a filled or hollow diamond at the
// owning class.
//
// # Usage
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
