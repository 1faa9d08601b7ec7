package model

import (
	"slices"
	"strings"
)

// Unknown is the type of a declaration whose type could not be inferred.
const Unknown = "unknown"

// Visibility is derived from the name-mangling convention of a member name.
type Visibility string

const (
	Public    Visibility = "public"
	Protected Visibility = "protected"
	Private   Visibility = "private"
)

// VisibilityOf classifies name: two leading underscores are private, one is
// protected, anything else is public. Dunder names such as __init__ do not
// mangle and are public.
func VisibilityOf(name string) Visibility {
	switch {
	case len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"):
		return Public
	case strings.HasPrefix(name, "__"):
		return Private
	case strings.HasPrefix(name, "_"):
		return Protected
	default:
		return Public
	}
}

// Symbol returns the UML glyph for v.
func (v Visibility) Symbol() string {
	switch v {
	case Private:
		return "-"
	case Protected:
		return "#"
	case Public:
		return "+"
	default:
		return "?"
	}
}

// Mode is the access mode of a property.
type Mode string

const (
	ModeRead      Mode = "r"
	ModeWrite     Mode = "w"
	ModeReadWrite Mode = "rw"
)

// With combines two observed accessors for the same property. A getter and
// a setter together give ModeReadWrite.
func (m Mode) With(other Mode) Mode {
	switch {
	case m == "":
		return other
	case other == "" || m == other:
		return m
	default:
		return ModeReadWrite
	}
}

// Attribute is a data member of a class.
type Attribute struct {
	Type       string     `json:"type"`
	Visibility Visibility `json:"visibility"`
}

// Property is an accessor-backed member of a class or enum.
type Property struct {
	Type       string     `json:"type"`
	Visibility Visibility `json:"visibility"`
	Mode       Mode       `json:"mode"`
}

// Arg is one formal parameter of a callable.
type Arg struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Method is a callable member of a class or enum.
type Method struct {
	Args       []Arg      `json:"args"`
	ReturnType string     `json:"returnType"`
	IsStatic   bool       `json:"isStatic"`
	Visibility Visibility `json:"visibility"`
}

// Class is a class declaration. Name is a dotted path for nested classes
// and is the class's unique key in the model.
type Class struct {
	Name        string                `json:"-"`
	Attributes  OrderedMap[Attribute] `json:"attributes"`
	Properties  OrderedMap[Property]  `json:"properties"`
	Methods     OrderedMap[Method]    `json:"methods"`
	InheritFrom Names                 `json:"inheritFrom"`
	Aggregate   Names                 `json:"aggregate"`
	Composite   Names                 `json:"composite"`
}

// IsStub reports whether c carries no members and no relations, as created
// for a parent that is referenced but never declared.
func (c *Class) IsStub() bool {
	return c.Attributes.Len() == 0 && c.Properties.Len() == 0 && c.Methods.Len() == 0 &&
		len(c.InheritFrom) == 0 && len(c.Aggregate) == 0 && len(c.Composite) == 0
}

// Clone returns a deep copy of c.
func (c *Class) Clone() *Class { return cloneClass(c) }

// Enum is an enumeration declaration.
type Enum struct {
	Name       string               `json:"-"`
	Values     Names                `json:"values"`
	Methods    OrderedMap[Method]   `json:"methods"`
	Properties OrderedMap[Property] `json:"properties"`
}

// Clone returns a deep copy of e.
func (e *Enum) Clone() *Enum { return cloneEnum(e) }

// Function is a free function. Name is a dotted path for nested functions.
type Function struct {
	Name       string `json:"-"`
	Args       []Arg  `json:"args"`
	ReturnType string `json:"returnType"`
}

// GlobalVariable is a module-level assignment target.
type GlobalVariable struct {
	Name string `json:"-"`
	Type string `json:"type"`
}

// Model is the merged structural record of one or more source files.
type Model struct {
	Classes   OrderedMap[*Class]          `json:"classes"`
	Enums     OrderedMap[*Enum]           `json:"enums"`
	Functions OrderedMap[*Function]       `json:"functions"`
	Globals   OrderedMap[*GlobalVariable] `json:"globalVariables"`
}

// New returns an empty model.
func New() *Model { return &Model{} }

// AddClass registers c under its name, merging into an existing entry.
func (m *Model) AddClass(c *Class) {
	if old, ok := m.Classes.Get(c.Name); ok {
		mergeClass(old, c)
		return
	}
	m.Classes.Set(c.Name, c)
}

// AddEnum registers e under its name, merging into an existing entry.
func (m *Model) AddEnum(e *Enum) {
	if old, ok := m.Enums.Get(e.Name); ok {
		mergeEnum(old, e)
		return
	}
	m.Enums.Set(e.Name, e)
}

// AddFunction registers f under its name, merging into an existing entry.
func (m *Model) AddFunction(f *Function) {
	if old, ok := m.Functions.Get(f.Name); ok {
		mergeFunction(old, f)
		return
	}
	m.Functions.Set(f.Name, f)
}

// AddGlobal registers g under its name; a later assignment overwrites the type.
func (m *Model) AddGlobal(g *GlobalVariable) {
	if old, ok := m.Globals.Get(g.Name); ok {
		old.Type = g.Type
		return
	}
	m.Globals.Set(g.Name, g)
}

// HasEntity reports whether name is a class or enum of m.
func (m *Model) HasEntity(name string) bool {
	return m.Classes.Has(name) || m.Enums.Has(name)
}

// ClassNames returns the class keys in discovery order.
func (m *Model) ClassNames() []string { return m.Classes.Keys() }

// Clone returns a deep copy of m.
func (m *Model) Clone() *Model {
	return &Model{
		Classes:   m.Classes.clone(cloneClass),
		Enums:     m.Enums.clone(cloneEnum),
		Functions: m.Functions.clone(cloneFunction),
		Globals: m.Globals.clone(func(g *GlobalVariable) *GlobalVariable {
			cp := *g
			return &cp
		}),
	}
}

func cloneMethod(v Method) Method {
	v.Args = slices.Clone(v.Args)
	return v
}

func same[V any](v V) V { return v }

func cloneClass(c *Class) *Class {
	return &Class{
		Name:        c.Name,
		Attributes:  c.Attributes.clone(same[Attribute]),
		Properties:  c.Properties.clone(same[Property]),
		Methods:     c.Methods.clone(cloneMethod),
		InheritFrom: slices.Clone(c.InheritFrom),
		Aggregate:   slices.Clone(c.Aggregate),
		Composite:   slices.Clone(c.Composite),
	}
}

func cloneEnum(e *Enum) *Enum {
	return &Enum{
		Name:       e.Name,
		Values:     slices.Clone(e.Values),
		Methods:    e.Methods.clone(cloneMethod),
		Properties: e.Properties.clone(same[Property]),
	}
}

func cloneFunction(f *Function) *Function {
	return &Function{Name: f.Name, Args: slices.Clone(f.Args), ReturnType: f.ReturnType}
}
