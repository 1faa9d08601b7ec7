package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/diagramtool/diagramtool/pkg/diagram"
)

func sampleLayout() *diagram.Layout {
	return &diagram.Layout{
		Entities: []diagram.Entity{
			{
				Name: "Base", Kind: diagram.KindClass,
				Attributes: []diagram.Member{{Text: "+ items : dict[str, Part]"}},
				Operations: []diagram.Member{{Text: "+ run() : None"}},
			},
			{Name: "Derived", Kind: diagram.KindClass, Parents: []string{"Base"}},
			{Name: "Part", Kind: diagram.KindClass},
			{Name: "QObject", Kind: diagram.KindClass, Stub: true},
			{Name: "Color", Kind: diagram.KindEnum, Attributes: []diagram.Member{{Text: "RED"}}},
		},
		Relations: []diagram.Relation{
			{Source: "Derived", Target: "Base", Kind: diagram.Inheritance},
			{Source: "Base", Target: "Part", Kind: diagram.Composition},
			{Source: "Derived", Target: "Color", Kind: diagram.Aggregation},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleLayout(), Options{})

	for _, want := range []string{
		"digraph G",
		"rankdir=BT",
		`"Base" [label="{Base|+ items : dict[str, Part]\l|+ run() : None\l}"]`,
		`"QObject" [label="{QObject||}", style="filled,dashed"]`,
		`"Color" [label="{«enumeration»\nColor|RED\l|}"]`,
		`"Derived" -> "Base" [arrowhead=onormal]`,
		`"Base" -> "Part" [dir=back, arrowtail=diamond]`,
		`"Derived" -> "Color" [dir=back, arrowtail=odiamond]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in\n%s", want, dot)
		}
	}
}

func TestToDOTNamesOnly(t *testing.T) {
	dot := ToDOT(sampleLayout(), Options{NamesOnly: true})
	if !strings.Contains(dot, `"Base" [label="{Base}"]`) {
		t.Errorf("names-only label missing in\n%s", dot)
	}
	if strings.Contains(dot, "items") {
		t.Error("names-only output still lists members")
	}
}

func TestFmtLabelEscapesRecordSyntax(t *testing.T) {
	e := &diagram.Entity{
		Name: "A", Kind: diagram.KindClass,
		Operations: []diagram.Member{{Text: `+ f(x : Callable[[int], str | None]) : "B"`}},
	}
	want := `{A||+ f(x : Callable[[int], str \| None]) : \"B\"\l}`
	if got := fmtLabel(e, false); got != want {
		t.Errorf("fmtLabel() = %q, want %q", got, want)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sampleLayout(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
