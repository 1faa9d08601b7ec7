package render

import (
	"slices"
	"strings"

	"github.com/diagramtool/diagramtool/pkg/errors"
)

// Format is an output format of the diagram renderers.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatTikZ Format = "tex"
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
)

// Formats lists every supported format in preference order.
func Formats() []Format {
	return []Format{FormatSVG, FormatTikZ, FormatDOT, FormatJSON, FormatPDF, FormatPNG}
}

// Extension is the file extension for f, including the dot.
func (f Format) Extension() string { return "." + string(f) }

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	case FormatTikZ:
		return "application/x-tex"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Binary reports whether f needs the external SVG converter.
func (f Format) Binary() bool { return f == FormatPDF || f == FormatPNG }

// ParseFormat validates a single format name. "tikz" is accepted for tex.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "tikz" {
		return FormatTikZ, nil
	}
	f := Format(name)
	if !slices.Contains(Formats(), f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q", s)
	}
	return f, nil
}

// ParseFormats parses a comma-separated format list, dropping duplicates.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	for part := range strings.SplitSeq(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "no output format given")
	}
	return out, nil
}
