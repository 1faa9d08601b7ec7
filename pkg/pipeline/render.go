package pipeline

import (
	"context"
	"fmt"

	"github.com/diagramtool/diagramtool/pkg/diagram"
	"github.com/diagramtool/diagramtool/pkg/render"
	"github.com/diagramtool/diagramtool/pkg/render/nodelink"
	"github.com/diagramtool/diagramtool/pkg/render/sink"
)

// Render generates output artifacts in the requested formats, keyed by
// format name.
func Render(ctx context.Context, l *diagram.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, name := range opts.Formats {
		format := render.Format(name)
		data, err := renderFormat(ctx, l, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[name] = data
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, l *diagram.Layout, format render.Format, opts Options) ([]byte, error) {
	if opts.Graphviz && (format == render.FormatSVG || format.Binary()) {
		return renderGraphviz(ctx, l, format, opts)
	}

	svgOpts := buildSVGOptions(opts)
	switch format {
	case render.FormatSVG:
		return sink.RenderSVG(l, svgOpts...), nil
	case render.FormatTikZ:
		var tikzOpts []sink.TikZOption
		if opts.Standalone {
			tikzOpts = append(tikzOpts, sink.WithStandalone())
		}
		return sink.RenderTikZ(l, tikzOpts...), nil
	case render.FormatDOT:
		return []byte(toDOT(l, opts)), nil
	case render.FormatJSON:
		return sink.RenderJSON(l)
	case render.FormatPDF:
		return sink.RenderPDF(ctx, l, sink.WithPDFSVGOptions(svgOpts...))
	case render.FormatPNG:
		return sink.RenderPNG(ctx, l, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// renderGraphviz lets Graphviz place the diagram instead of drawing the
// computed positions.
func renderGraphviz(ctx context.Context, l *diagram.Layout, format render.Format, opts Options) ([]byte, error) {
	dot := toDOT(l, opts)
	switch format {
	case render.FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	case render.FormatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.Scale)
	default:
		return nodelink.RenderSVG(ctx, dot)
	}
}

func toDOT(l *diagram.Layout, opts Options) string {
	return nodelink.ToDOT(l, nodelink.Options{NamesOnly: opts.NamesOnly})
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.Border {
		svgOpts = append(svgOpts, sink.WithBorder())
	}
	return svgOpts
}

// RenderFromLayoutData renders output from serialized layout data, such as
// a layout.json written by an earlier run.
func RenderFromLayoutData(ctx context.Context, layoutData []byte, opts Options) (map[string][]byte, error) {
	l, err := diagram.UnmarshalLayout(layoutData)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return Render(ctx, l, opts)
}
