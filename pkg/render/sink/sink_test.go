package sink

import (
	"reflect"
	"strings"
	"testing"

	"github.com/diagramtool/diagramtool/pkg/diagram"
	"github.com/diagramtool/diagramtool/pkg/layout"
	"github.com/diagramtool/diagramtool/pkg/model"
)

func sampleLayout() *diagram.Layout {
	return &diagram.Layout{
		Strategy: layout.StrategyRows,
		Margin:   50,
		Bounds:   layout.Rect{X: 0, Y: 0, Width: 500, Height: 300},
		Entities: []diagram.Entity{
			{
				Name: "Base", Kind: diagram.KindClass, X: 50, Y: 50, Width: 160, Height: 83,
				Attributes: []diagram.Member{{Text: "+ items : Map<str>"}},
				Operations: []diagram.Member{{Text: "+ make() : Base", Static: true}},
			},
			{
				Name: "Derived", Kind: diagram.KindClass, X: 50, Y: 200, Width: 100, Height: 41,
				Parents:    []string{"Base"},
				Operations: []diagram.Member{{Text: "+ run() : None"}},
			},
			{
				Name: "Color", Kind: diagram.KindEnum, X: 300, Y: 50, Width: 150, Height: 83,
				Attributes: []diagram.Member{{Text: "RED"}, {Text: "GREEN"}},
			},
		},
		Relations: []diagram.Relation{
			{Source: "Derived", Target: "Base", Kind: diagram.Inheritance},
			{Source: "Base", Target: "Color", Kind: diagram.Composition},
			{Source: "Derived", Target: "Color", Kind: diagram.Aggregation},
		},
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(sampleLayout()))

	for _, want := range []string{
		`viewBox="0.0 0.0 500.0 300.0" width="500" height="300"`,
		`id="entity-Base"`,
		`id="entity-Derived"`,
		`>Base</text>`,
		`class="header stereotype"`,
		`>«enumeration»</text>`,
		`<text class="static"`,
		`+ items : Map&lt;str&gt;`,
		`marker-end="url(#inheritance)"`,
		`marker-start="url(#composition)"`,
		`marker-start="url(#aggregation)"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(svg, `stroke="red"`) {
		t.Error("border drawn without WithBorder")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("SVG not closed")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	svg := string(RenderSVG(sampleLayout(), WithBorder(), WithoutRelations()))
	if !strings.Contains(svg, `<rect x="0.0" y="0.0" width="500.0" height="300.0" fill="none" stroke="red" stroke-width="1"/>`) {
		t.Error("WithBorder did not draw the red frame")
	}
	if strings.Contains(svg, `class="relation`) {
		t.Error("WithoutRelations still drew relations")
	}
}

func TestRenderSVGStubIsDashed(t *testing.T) {
	l := &diagram.Layout{
		Bounds:   layout.Rect{Width: 100, Height: 100},
		Entities: []diagram.Entity{{Name: "QObject", Kind: diagram.KindClass, Stub: true, Width: 90, Height: 41}},
	}
	if !strings.Contains(string(RenderSVG(l)), `class="entity stub"`) {
		t.Error("stub entity not marked")
	}
}

func TestConnect(t *testing.T) {
	tests := []struct {
		name           string
		a, b           diagram.Entity
		x1, y1, x2, y2 float64
		ok             bool
	}{
		{
			name: "side by side",
			a:    diagram.Entity{X: 0, Y: 0, Width: 100, Height: 50},
			b:    diagram.Entity{X: 200, Y: 0, Width: 100, Height: 50},
			x1:   100, y1: 25, x2: 200, y2: 25, ok: true,
		},
		{
			name: "stacked",
			a:    diagram.Entity{X: 0, Y: 100, Width: 100, Height: 50},
			b:    diagram.Entity{X: 0, Y: 0, Width: 100, Height: 50},
			x1:   50, y1: 100, x2: 50, y2: 50, ok: true,
		},
		{
			name: "same centre",
			a:    diagram.Entity{Width: 10, Height: 10},
			b:    diagram.Entity{Width: 10, Height: 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x1, y1, x2, y2, ok := connect(&tt.a, &tt.b)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (x1 != tt.x1 || y1 != tt.y1 || x2 != tt.x2 || y2 != tt.y2) {
				t.Errorf("segment = (%g,%g)-(%g,%g), want (%g,%g)-(%g,%g)", x1, y1, x2, y2, tt.x1, tt.y1, tt.x2, tt.y2)
			}
		})
	}
}

func TestRenderTikZ(t *testing.T) {
	l := &diagram.Layout{
		Entities: []diagram.Entity{{
			Name: "my_class", Kind: diagram.KindClass, X: 50, Y: 50, Width: 160, Height: 83,
			Parents: []string{"Base"},
			Attributes: []diagram.Member{
				{Text: "+ x_val : int"},
				{Text: "# _p : str"},
			},
			Operations: []diagram.Member{{Text: "+ make() : my_class", Static: true}},
		}},
	}
	want := `\begin{tikzpicture}
\begin{class}[text width=10em]{my\string_class}{8.125em ,-6.25ex}
\inherit{Base}
\attribute{+ x\string_val : int}
\attribute{\# \string_p : str}
\operation{\underline{+ make() : my\string_class}}
\end{class}
\end{tikzpicture}
`
	if got := string(RenderTikZ(l)); got != want {
		t.Errorf("RenderTikZ() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderTikZEscapesMembers(t *testing.T) {
	l := &diagram.Layout{
		Entities: []diagram.Entity{{
			Name: "Parser", Kind: diagram.KindClass, Width: 160, Height: 50,
			Attributes: []diagram.Member{
				{Text: "+ open : Literal['{']"},
				{Text: `+ sep : Literal['\\']`},
				{Text: "+ mark : Literal['~^']"},
			},
		}},
	}
	got := string(RenderTikZ(l))
	for _, want := range []string{
		`\attribute{+ open : Literal['\{']}`,
		`\attribute{+ sep : Literal['\textbackslash{}\textbackslash{}']}`,
		`\attribute{+ mark : Literal['\textasciitilde{}\textasciicircum{}']}`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %s:\n%s", want, got)
		}
	}
}

func TestTexNumber(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "0"},
		{-0.0001, "0"},
		{10, "10"},
		{8.125, "8.125"},
		{1.0 / 3, "0.333"},
		{-6.25, "-6.25"},
	}
	for _, tt := range tests {
		if got := texNumber(tt.v); got != tt.want {
			t.Errorf("texNumber(%g) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestRenderTikZStandalone(t *testing.T) {
	got := string(RenderTikZ(&diagram.Layout{}, WithStandalone()))
	if !strings.HasPrefix(got, "\\documentclass") || !strings.Contains(got, "\\usepackage{pgf-umlcd}") {
		t.Errorf("standalone preamble missing:\n%s", got)
	}
	if !strings.HasSuffix(got, "\\end{document}\n") {
		t.Errorf("document not closed:\n%s", got)
	}
}

func TestRenderJSON(t *testing.T) {
	l := sampleLayout()
	data, err := RenderJSON(l)
	if err != nil {
		t.Fatal(err)
	}
	got, err := diagram.UnmarshalLayout(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, l) {
		t.Errorf("JSON did not reproduce the layout:\n got %+v\nwant %+v", got, l)
	}
}

func TestRenderBuiltDiagram(t *testing.T) {
	m := model.New()
	m.AddClass(&model.Class{Name: "Shape"})
	m.AddClass(&model.Class{Name: "Circle", InheritFrom: model.Names{"Shape"}})
	d, err := diagram.Build(m, layout.Engine{Strategy: layout.Rows{}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	l := d.Export()

	svg := string(RenderSVG(l))
	if strings.Count(svg, `<g class="entity"`) != 2 {
		t.Errorf("want 2 entity groups in\n%s", svg)
	}
	if strings.Count(svg, `class="relation inheritance"`) != 1 {
		t.Errorf("want 1 inheritance line in\n%s", svg)
	}
	tex := string(RenderTikZ(l))
	if strings.Count(tex, `\begin{class}`) != 2 || !strings.Contains(tex, `\inherit{Shape}`) {
		t.Errorf("TikZ output incomplete:\n%s", tex)
	}
}
