package layout

import (
	"math"
	"slices"
	"testing"

	"github.com/diagramtool/diagramtool/pkg/errors"
)

// hierarchy is Base <- {Left, Right} <- Leaf, plus two orphans of
// different sizes.
func hierarchy() Input {
	return Input{
		Classes: []Box{
			{Name: "Base", Width: 120, Height: 80, Level: 0},
			{Name: "Left", Width: 200, Height: 60, Level: 1, Parents: []string{"Base"}},
			{Name: "Right", Width: 90, Height: 140, Level: 1, Parents: []string{"Base"}},
			{Name: "Leaf", Width: 70, Height: 40, Level: 2, Parents: []string{"Left", "Right"}},
			{Name: "Solo", Width: 60, Height: 30, Orphan: true},
			{Name: "Wide", Width: 900, Height: 30, Orphan: true},
		},
		Edges: []Edge{
			{From: "Left", To: "Base"},
			{From: "Right", To: "Base"},
			{From: "Leaf", To: "Left"},
			{From: "Leaf", To: "Right"},
		},
	}
}

func TestRowsNoOverlapWithinRow(t *testing.T) {
	in := hierarchy()
	res, err := Engine{Strategy: Rows{}}.Layout(in)
	if err != nil {
		t.Fatal(err)
	}

	for i, a := range in.Classes {
		for _, b := range in.Classes[i+1:] {
			pa, pb := res.Positions[a.Name], res.Positions[b.Name]
			if Overlaps(a, pa, b, pb) {
				t.Errorf("%s at %v overlaps %s at %v", a.Name, pa, b.Name, pb)
			}
		}
	}

	// Rows by level, top to bottom.
	y := func(n string) float64 { return res.Positions[n].Y }
	if !(y("Base") < y("Left") && y("Left") == y("Right") && y("Right") < y("Leaf")) {
		t.Errorf("rows not ordered by level: %v", res.Positions)
	}
	if y("Left") < y("Base")+80+DefaultMargin {
		t.Errorf("rows overlap vertically: Base at %g, Left at %g", y("Base"), y("Left"))
	}
}

func TestRowsOrphans(t *testing.T) {
	in := hierarchy()
	res, err := Engine{Strategy: Rows{}}.Layout(in)
	if err != nil {
		t.Fatal(err)
	}
	// Solo fits beside Base in the first row; Wide is wider than any row
	// and opens its own row below Leaf.
	if got, want := res.Positions["Solo"].Y, res.Positions["Base"].Y; got != want {
		t.Errorf("Solo y = %g, want first row %g", got, want)
	}
	if res.Positions["Wide"].Y <= res.Positions["Leaf"].Y {
		t.Errorf("Wide should start a new row below Leaf: %v", res.Positions)
	}
	if res.Positions["Wide"].X != DefaultMargin {
		t.Errorf("Wide x = %g, want margin", res.Positions["Wide"].X)
	}
}

func TestRowsOnlyOrphans(t *testing.T) {
	in := Input{Classes: []Box{
		{Name: "A", Width: 100, Height: 50, Orphan: true},
		{Name: "B", Width: 100, Height: 50, Orphan: true},
	}}
	res, err := Engine{Strategy: Rows{MaxRowWidth: 400}, Margin: 10}.Layout(in)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]Point{"A": {X: 10, Y: 10}, "B": {X: 120, Y: 10}}
	for n, p := range want {
		if res.Positions[n] != p {
			t.Errorf("%s at %v, want %v", n, res.Positions[n], p)
		}
	}
}

func TestRowsOrphanGrid(t *testing.T) {
	var in Input
	for _, n := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"} {
		in.Classes = append(in.Classes, Box{Name: n, Width: 100, Height: 50, Orphan: true})
	}
	res, err := Engine{Strategy: Rows{}, Margin: 10}.Layout(in)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]Point{
		"A": {X: 10, Y: 10}, "B": {X: 120, Y: 10}, "C": {X: 230, Y: 10},
		"D": {X: 10, Y: 70}, "F": {X: 230, Y: 70},
		"G": {X: 10, Y: 130}, "I": {X: 230, Y: 130},
	}
	for n, p := range want {
		if res.Positions[n] != p {
			t.Errorf("%s at %v, want %v", n, res.Positions[n], p)
		}
	}
}

func TestRowsCentresChildrenUnderParents(t *testing.T) {
	in := Input{Classes: []Box{
		{Name: "P", Width: 300, Height: 50},
		{Name: "C", Width: 100, Height: 50, Level: 1, Parents: []string{"P"}},
	}}
	res, err := Engine{Strategy: Rows{}, Margin: 10}.Layout(in)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Positions["C"].X; got != 110 {
		t.Errorf("C x = %g, want 110 (centred under P)", got)
	}
}

func TestAssignmentBijection(t *testing.T) {
	for _, n := range []int{1, 2, 5, 9, 10, 17} {
		in := Input{}
		for i := range n {
			in.Classes = append(in.Classes, Box{Name: string(rune('A' + i)), Width: float64(20 + 7*i), Height: float64(90 - 3*i)})
		}
		for i := 1; i < n; i++ {
			in.Edges = append(in.Edges, Edge{From: in.Classes[i].Name, To: in.Classes[i/2].Name})
		}
		res, err := Engine{}.Layout(in)
		if err != nil {
			t.Fatal(err)
		}
		seen := map[Point]string{}
		for _, b := range in.Classes {
			p, ok := res.Positions[b.Name]
			if !ok {
				t.Fatalf("n=%d: %s not placed", n, b.Name)
			}
			if other, dup := seen[p]; dup {
				t.Fatalf("n=%d: %s and %s share %v", n, b.Name, other, p)
			}
			seen[p] = b.Name
		}
		for i, a := range in.Classes {
			for _, b := range in.Classes[i+1:] {
				if Overlaps(a, res.Positions[a.Name], b, res.Positions[b.Name]) {
					t.Errorf("n=%d: %s overlaps %s", n, a.Name, b.Name)
				}
			}
		}
	}
}

func TestAssignmentTranslatedByMargin(t *testing.T) {
	in := Input{Classes: []Box{{Name: "A", Width: 10, Height: 10}}}
	res, err := Engine{Margin: 7}.Layout(in)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Positions["A"]; got != (Point{X: 7, Y: 7}) {
		t.Errorf("A at %v, want (7,7)", got)
	}
}

func TestBreadthFirstOrder(t *testing.T) {
	classes := []Box{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}, {Name: "E"}}
	edges := []Edge{
		{From: "A", To: "D"},
		{From: "D", To: "B"},
		{From: "A", To: "Missing"},
		{From: "C", To: "C"},
	}
	var got []string
	for _, b := range breadthFirstOrder(classes, edges) {
		got = append(got, b.Name)
	}
	if want := []string{"A", "D", "B", "C", "E"}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestEnumRow(t *testing.T) {
	in := hierarchy()
	in.Enums = []Box{
		{Name: "Color", Width: 80, Height: 60},
		{Name: "Size", Width: 50, Height: 40},
	}
	for _, s := range []Strategy{Rows{}, Assignment{}} {
		t.Run(s.Name(), func(t *testing.T) {
			res, err := Engine{Strategy: s}.Layout(in)
			if err != nil {
				t.Fatal(err)
			}
			bottom := Bounds(in.Classes, res.Positions, 0)
			wantY := bottom.Y + bottom.Height + DefaultMargin
			color, size := res.Positions["Color"], res.Positions["Size"]
			if color.Y != wantY || size.Y != wantY {
				t.Errorf("enum row y = %g/%g, want %g", color.Y, size.Y, wantY)
			}
			if color.X != DefaultMargin || size.X != DefaultMargin+80+DefaultEnumSpacing {
				t.Errorf("enum x = %g/%g", color.X, size.X)
			}
		})
	}
}

func TestRecenter(t *testing.T) {
	in := hierarchy()
	in.Enums = []Box{{Name: "Color", Width: 80, Height: 60}}
	res, err := Engine{Strategy: Rows{}, Recenter: true}.Layout(in)
	if err != nil {
		t.Fatal(err)
	}
	var cx, cy float64
	all := slices.Concat(in.Classes, in.Enums)
	for _, b := range all {
		p := res.Positions[b.Name]
		cx += p.X + b.Width/2
		cy += p.Y + b.Height/2
	}
	if math.Abs(cx) > 1e-9 || math.Abs(cy) > 1e-9 {
		t.Errorf("mean centre = (%g, %g), want origin", cx/float64(len(all)), cy/float64(len(all)))
	}
}

func TestEngineValidation(t *testing.T) {
	dup := Input{Classes: []Box{{Name: "A"}}, Enums: []Box{{Name: "A"}}}
	if _, err := (Engine{}).Layout(dup); !errors.Is(err, errors.ErrCodeInvariant) {
		t.Errorf("duplicate name: err = %v", err)
	}
	neg := Input{Classes: []Box{{Name: "A", Width: -1}}}
	if _, err := (Engine{}).Layout(neg); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative width: err = %v", err)
	}
}

func TestEmptyInput(t *testing.T) {
	for _, s := range []Strategy{Rows{}, Assignment{}} {
		res, err := Engine{Strategy: s}.Layout(Input{})
		if err != nil {
			t.Fatalf("%s: %v", s.Name(), err)
		}
		if len(res.Positions) != 0 {
			t.Errorf("%s: positions = %v", s.Name(), res.Positions)
		}
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		want string
		code errors.Code
	}{
		{"", StrategyGraph, ""},
		{"graph", StrategyGraph, ""},
		{"ROWS", StrategyRows, ""},
		{"spiral", "", errors.ErrCodeInvalidStrategy},
	}
	for _, tt := range tests {
		s, err := ByName(tt.name)
		if tt.code != "" {
			if !errors.Is(err, tt.code) {
				t.Errorf("ByName(%q) err = %v, want %s", tt.name, err, tt.code)
			}
			continue
		}
		if err != nil || s.Name() != tt.want {
			t.Errorf("ByName(%q) = %v, %v; want %s", tt.name, s, err, tt.want)
		}
	}
}

func TestBounds(t *testing.T) {
	boxes := []Box{{Name: "A", Width: 10, Height: 20}, {Name: "B", Width: 5, Height: 5}, {Name: "C"}}
	pos := map[string]Point{"A": {X: 50, Y: 50}, "B": {X: 100, Y: 0}}
	got := Bounds(boxes, pos, 5)
	want := Rect{X: 45, Y: -5, Width: 65, Height: 80}
	if got != want {
		t.Errorf("Bounds = %+v, want %+v", got, want)
	}
}
