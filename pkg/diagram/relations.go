package diagram

import (
	"github.com/diagramtool/diagramtool/pkg/errors"
	"github.com/diagramtool/diagramtool/pkg/model"
)

// RelationKind is the type of a directed edge between two entities.
type RelationKind string

const (
	Inheritance RelationKind = "INHERITANCE"
	Composition RelationKind = "COMPOSITION"
	Aggregation RelationKind = "AGGREGATION"
)

// Relation is a directed edge from Source to Target.
type Relation struct {
	Source string       `json:"source"`
	Target string       `json:"target"`
	Kind   RelationKind `json:"kind"`
}

// resolveRelations derives the typed edges of every class: one per
// InheritFrom, Composite and Aggregate name, in that order. Targets are
// looked up by exact name among the registered entities; a miss is a
// LOOKUP_MISS error.
func resolveRelations(m *model.Model, registry map[string]*node) ([]Relation, error) {
	var out []Relation
	for name, c := range m.Classes.All() {
		for _, set := range []struct {
			names model.Names
			kind  RelationKind
		}{
			{c.InheritFrom, Inheritance},
			{c.Composite, Composition},
			{c.Aggregate, Aggregation},
		} {
			for _, target := range set.names {
				if _, ok := registry[target]; !ok {
					return nil, errors.New(errors.ErrCodeLookupMiss,
						"%s relation from %s to unknown entity %s", set.kind, name, target)
				}
				out = append(out, Relation{Source: name, Target: target, Kind: set.kind})
			}
		}
	}
	return out, nil
}
