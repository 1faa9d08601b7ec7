// Package diagram turns a structural model into a placed class diagram.
//
// # Phases
//
// A diagram moves through three phases, each with its own handle type:
//
//	b := diagram.NewBuilder(logger)   // Building: AddClass, AddEnum
//	p, err := b.Seal()                // Placing: Level, IsOrphan
//	d, err := p.Place(engine)         // Rendering: Entities, Relations, Export
//
// Operations of a later phase do not exist on an earlier handle. A handle
// whose phase has ended fails every call with an INVARIANT error, so a
// builder cannot add classes to a sealed diagram and a placing handle
// cannot place twice.
//
// # Analysis
//
// Seal first creates an empty stub class for every parent name that is
// declared nowhere, so every inheritance edge resolves. It then computes,
// per class, the inheritance level (0 for classes without parents, else one
// more than the deepest parent) and the orphan flag (level 0 and no class
// inherits from it). Cyclic inheritance fails with INHERITANCE_CYCLE.
//
// # Relations
//
// Place derives one relation per InheritFrom, Composite and Aggregate name
// (INHERITANCE, COMPOSITION, AGGREGATION) by exact-name lookup among the
// registered entities; a miss is a LOOKUP_MISS error.
//
// # Layout Documents
//
// [Diagram.Export] produces a [Layout], the JSON document consumed by the
// renderers. Box sizes come from the member text: every line is
// [LineHeight] tall and every character [CharWidth] wide, plus
// [BoxPadding] on each side.
package diagram
