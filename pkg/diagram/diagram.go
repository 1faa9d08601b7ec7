package diagram

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/diagramtool/diagramtool/pkg/errors"
	"github.com/diagramtool/diagramtool/pkg/layout"
	"github.com/diagramtool/diagramtool/pkg/model"
)

// Entity kinds.
const (
	KindClass = "class"
	KindEnum  = "enum"
)

type phase int

const (
	building phase = iota
	placing
	rendering
)

func (p phase) String() string {
	return [...]string{"building", "placing", "rendering"}[p]
}

// node is the registry record of one class or enum.
type node struct {
	name   string
	kind   string
	stub   bool
	header []string
	attrs  []Member
	ops    []Member
	width  float64
	height float64
	level  int
	orphan bool
	pos    layout.Point
}

// state is shared by the handles of one diagram. Only the handle of the
// current phase may use it.
type state struct {
	phase     phase
	model     *model.Model
	registry  map[string]*node
	order     []string
	relations []Relation
	bounds    layout.Rect
	strategy  string
	margin    float64
	logger    *log.Logger
}

func (s *state) check(want phase, op string) error {
	if s.phase != want {
		return errors.New(errors.ErrCodeInvariant, "%s on a %s handle, diagram is %s", op, want, s.phase)
	}
	return nil
}

func (s *state) lookup(name string) (*node, error) {
	n, ok := s.registry[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeLookupMiss, "no entity named %s", name)
	}
	return n, nil
}

func (s *state) lookupClass(name string) (*node, error) {
	n, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	if n.kind != KindClass {
		return nil, errors.New(errors.ErrCodeLookupMiss, "%s is an enum, not a class", name)
	}
	return n, nil
}

// Builder collects the classes and enums of a diagram.
type Builder struct {
	st *state
}

// NewBuilder returns an empty builder. A nil logger discards output.
func NewBuilder(logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{st: &state{model: model.New(), logger: logger}}
}

// FromModel returns a builder holding a copy of every class and enum of m.
// Functions and globals are not part of a class diagram.
func FromModel(m *model.Model, logger *log.Logger) (*Builder, error) {
	b := NewBuilder(logger)
	for _, c := range m.Classes.Values() {
		if err := b.AddClass(c); err != nil {
			return nil, err
		}
	}
	for _, e := range m.Enums.Values() {
		if err := b.AddEnum(e); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Builder) add(name string) error {
	if err := b.st.check(building, "add entity"); err != nil {
		return err
	}
	if name == "" {
		return errors.New(errors.ErrCodeInvalidInput, "entity name is empty")
	}
	if b.st.model.HasEntity(name) {
		return errors.New(errors.ErrCodeInvariant, "entity %s added twice", name)
	}
	return nil
}

// AddClass registers a copy of c.
func (b *Builder) AddClass(c *model.Class) error {
	if err := b.add(c.Name); err != nil {
		return err
	}
	b.st.model.Classes.Set(c.Name, c.Clone())
	return nil
}

// AddEnum registers a copy of e.
func (b *Builder) AddEnum(e *model.Enum) error {
	if err := b.add(e.Name); err != nil {
		return err
	}
	b.st.model.Enums.Set(e.Name, e.Clone())
	return nil
}

// Seal ends the building phase: it creates stub classes for undeclared
// parents, runs the inheritance analysis and sizes every box. The builder
// is unusable afterwards.
func (b *Builder) Seal() (*Placing, error) {
	st := b.st
	if err := st.check(building, "seal"); err != nil {
		return nil, err
	}
	stubs := st.model.MaterializeStubs()
	if len(stubs) > 0 {
		st.logger.Debug("created stub classes", "stubs", stubs)
	}
	a, err := analyze(st.model)
	if err != nil {
		return nil, err
	}

	st.registry = make(map[string]*node, st.model.Classes.Len()+st.model.Enums.Len())
	isStub := make(map[string]bool, len(stubs))
	for _, s := range stubs {
		isStub[s] = true
	}
	for name, c := range st.model.Classes.All() {
		n := &node{
			name:   name,
			kind:   KindClass,
			stub:   isStub[name],
			header: []string{name},
			level:  a.levels[name],
			orphan: a.orphans[name],
		}
		n.attrs, n.ops = classMembers(c)
		n.width, n.height = boxSize(n.header, n.attrs, n.ops)
		st.register(n)
	}
	for name, e := range st.model.Enums.All() {
		n := &node{name: name, kind: KindEnum, header: []string{EnumStereotype, name}}
		n.attrs, n.ops = enumMembers(e)
		n.width, n.height = boxSize(n.header, n.attrs, n.ops)
		st.register(n)
	}

	st.phase = placing
	st.logger.Debug("diagram sealed",
		"classes", st.model.Classes.Len(),
		"enums", st.model.Enums.Len(),
		"stubs", len(stubs))
	return &Placing{st: st}, nil
}

func (s *state) register(n *node) {
	s.registry[n.name] = n
	s.order = append(s.order, n.name)
}

// Placing is a sealed diagram whose inheritance levels are known.
type Placing struct {
	st *state
}

// Level returns the inheritance level of the class name.
func (p *Placing) Level(name string) (int, error) {
	if err := p.st.check(placing, "level"); err != nil {
		return 0, err
	}
	n, err := p.st.lookupClass(name)
	if err != nil {
		return 0, err
	}
	return n.level, nil
}

// IsOrphan reports whether the class name has no parents and no children.
func (p *Placing) IsOrphan(name string) (bool, error) {
	if err := p.st.check(placing, "orphan check"); err != nil {
		return false, err
	}
	n, err := p.st.lookupClass(name)
	if err != nil {
		return false, err
	}
	return n.orphan, nil
}

// Place resolves the relations of the diagram, positions every entity with
// engine and ends the placing phase.
func (p *Placing) Place(engine layout.Engine) (*Diagram, error) {
	st := p.st
	if err := st.check(placing, "place"); err != nil {
		return nil, err
	}
	rels, err := resolveRelations(st.model, st.registry)
	if err != nil {
		return nil, err
	}

	engine = engine.WithDefaults()
	in := layout.Input{}
	for _, name := range st.order {
		n := st.registry[name]
		box := layout.Box{Name: name, Width: n.width, Height: n.height, Level: n.level, Orphan: n.orphan}
		if n.kind == KindEnum {
			in.Enums = append(in.Enums, box)
			continue
		}
		c, _ := st.model.Classes.Get(name)
		box.Parents = c.InheritFrom
		in.Classes = append(in.Classes, box)
	}
	for _, r := range rels {
		in.Edges = append(in.Edges, layout.Edge{From: r.Source, To: r.Target})
	}

	res, err := engine.Layout(in)
	if err != nil {
		return nil, err
	}
	for _, name := range st.order {
		st.registry[name].pos = res.Positions[name]
	}
	st.relations = rels
	st.bounds = layout.Bounds(append(in.Classes, in.Enums...), res.Positions, engine.Margin)
	st.strategy = engine.Strategy.Name()
	st.margin = engine.Margin
	st.phase = rendering
	return &Diagram{st: st}, nil
}

// Diagram is a placed diagram with resolved relations. It is read-only.
type Diagram struct {
	st *state
}

// Level returns the inheritance level of the class name.
func (d *Diagram) Level(name string) (int, error) {
	n, err := d.st.lookupClass(name)
	if err != nil {
		return 0, err
	}
	return n.level, nil
}

// IsOrphan reports whether the class name has no parents and no children.
func (d *Diagram) IsOrphan(name string) (bool, error) {
	n, err := d.st.lookupClass(name)
	if err != nil {
		return false, err
	}
	return n.orphan, nil
}

// Entity returns the placed entity name.
func (d *Diagram) Entity(name string) (Entity, error) {
	n, err := d.st.lookup(name)
	if err != nil {
		return Entity{}, err
	}
	return d.entity(n), nil
}

// Entities returns every placed entity, classes first, in discovery order.
func (d *Diagram) Entities() []Entity {
	out := make([]Entity, 0, len(d.st.order))
	for _, name := range d.st.order {
		out = append(out, d.entity(d.st.registry[name]))
	}
	return out
}

// Relations returns the resolved relations.
func (d *Diagram) Relations() []Relation {
	return append([]Relation(nil), d.st.relations...)
}

// Bounds returns the frame enclosing every box plus the margin.
func (d *Diagram) Bounds() layout.Rect { return d.st.bounds }

func (d *Diagram) entity(n *node) Entity {
	e := Entity{
		Name:       n.name,
		Kind:       n.kind,
		Stub:       n.stub,
		X:          n.pos.X,
		Y:          n.pos.Y,
		Width:      n.width,
		Height:     n.height,
		Level:      n.level,
		Orphan:     n.orphan,
		Attributes: append([]Member{}, n.attrs...),
		Operations: append([]Member{}, n.ops...),
	}
	if c, ok := d.st.model.Classes.Get(n.name); ok {
		e.Parents = append([]string(nil), c.InheritFrom...)
	}
	return e
}

// Export returns the layout document of d.
func (d *Diagram) Export() *Layout {
	return &Layout{
		Strategy:  d.st.strategy,
		Margin:    d.st.margin,
		Bounds:    d.st.bounds,
		Entities:  d.Entities(),
		Relations: d.Relations(),
	}
}

// Build runs the three phases for m: seal, place with engine, and return
// the placed diagram.
func Build(m *model.Model, engine layout.Engine, logger *log.Logger) (*Diagram, error) {
	b, err := FromModel(m, logger)
	if err != nil {
		return nil, err
	}
	p, err := b.Seal()
	if err != nil {
		return nil, err
	}
	return p.Place(engine)
}
