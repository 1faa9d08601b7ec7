package model

import (
	"bytes"
	"slices"
	"testing"
)

func TestMergeIdempotent(t *testing.T) {
	m := sampleModel()
	want := mustJSON(t, m)

	Merge(m, m)
	if got := mustJSON(t, m); got != want {
		t.Errorf("Merge(M, M) changed the model\ngot:  %s\nwant: %s", got, want)
	}

	cp := m.Clone()
	Merge(m, cp)
	if got := mustJSON(t, m); got != want {
		t.Errorf("Merge(M, clone(M)) changed the model\ngot:  %s\nwant: %s", got, want)
	}
}

func TestMergeRules(t *testing.T) {
	dst := New()
	a := &Class{Name: "A", InheritFrom: Names{"Base"}}
	a.Attributes.Set("x", Attribute{Type: Unknown, Visibility: Public})
	a.Methods.Set("run", Method{Args: []Arg{{Name: "self", Type: Unknown}}, ReturnType: Unknown, Visibility: Public})
	dst.AddClass(a)
	dst.AddGlobal(&GlobalVariable{Name: "N", Type: Unknown})

	src := New()
	a2 := &Class{Name: "A", InheritFrom: Names{"Mixin", "Base"}}
	a2.Attributes.Set("y", Attribute{Type: "int", Visibility: Protected})
	a2.Attributes.Set("x", Attribute{Type: "str", Visibility: Public})
	a2.Methods.Set("run", Method{
		Args:       []Arg{{Name: "self", Type: Unknown}, {Name: "n", Type: "int"}},
		ReturnType: "bool",
		IsStatic:   true,
		Visibility: Public,
	})
	src.AddClass(a2)
	src.AddClass(&Class{Name: "B"})
	src.AddGlobal(&GlobalVariable{Name: "N", Type: "int"})

	Merge(dst, src)

	got, _ := dst.Classes.Get("A")
	if !slices.Equal(got.InheritFrom, Names{"Base", "Mixin"}) {
		t.Errorf("InheritFrom = %v, want [Base Mixin]", got.InheritFrom)
	}
	if keys := got.Attributes.Keys(); !slices.Equal(keys, []string{"x", "y"}) {
		t.Errorf("attribute order = %v, want [x y]", keys)
	}
	if x, _ := got.Attributes.Get("x"); x.Type != "str" {
		t.Errorf("scalar should take incoming value, got %q", x.Type)
	}
	run, _ := got.Methods.Get("run")
	if len(run.Args) != 2 || run.ReturnType != "bool" || !run.IsStatic {
		t.Errorf("run = %+v", run)
	}
	if !slices.Equal(dst.ClassNames(), []string{"A", "B"}) {
		t.Errorf("class order = %v", dst.ClassNames())
	}
	if g, _ := dst.Globals.Get("N"); g.Type != "int" {
		t.Errorf("global type = %q, want int", g.Type)
	}

	// src must not alias dst after the merge
	b, _ := dst.Classes.Get("B")
	b.InheritFrom.Add("Z")
	srcB, _ := src.Classes.Get("B")
	if srcB.InheritFrom.Has("Z") {
		t.Error("merged entity aliases source entity")
	}
}

func TestMergeEnumAndFunction(t *testing.T) {
	dst := New()
	dst.AddEnum(&Enum{Name: "Color", Values: Names{"RED"}})
	dst.AddFunction(&Function{Name: "f", Args: []Arg{{Name: "a", Type: Unknown}}, ReturnType: Unknown})

	src := New()
	src.AddEnum(&Enum{Name: "Color", Values: Names{"GREEN", "RED"}})
	src.AddFunction(&Function{Name: "f", Args: []Arg{{Name: "b", Type: "int"}}, ReturnType: "int"})

	Merge(dst, src)

	e, _ := dst.Enums.Get("Color")
	if !slices.Equal(e.Values, Names{"RED", "GREEN"}) {
		t.Errorf("enum values = %v", e.Values)
	}
	f, _ := dst.Functions.Get("f")
	if len(f.Args) != 2 || f.ReturnType != "int" {
		t.Errorf("function = %+v", f)
	}
}

func mustJSON(t *testing.T, m *Model) string {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteJSON(m, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	return buf.String()
}
