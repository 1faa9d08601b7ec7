package diagram

import (
	"slices"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/diagramtool/diagramtool/pkg/errors"
	"github.com/diagramtool/diagramtool/pkg/model"
)

// analysis is the result of the inheritance analysis of a sealed model.
type analysis struct {
	levels  map[string]int
	orphans map[string]bool
}

// analyze computes the inheritance level and orphan flag of every class.
//
// level(c) is 0 when c inherits from nothing, else one more than the
// deepest parent; a parent that is not a class (an enum) counts as level 0.
// c is an orphan when its level is 0 and no class inherits from it.
// Cyclic inheritance is an INHERITANCE_CYCLE error.
func analyze(m *model.Model) (analysis, error) {
	if err := checkCycles(m); err != nil {
		return analysis{}, err
	}

	a := analysis{
		levels:  make(map[string]int, m.Classes.Len()),
		orphans: make(map[string]bool, m.Classes.Len()),
	}
	var level func(name string) int
	level = func(name string) int {
		if l, ok := a.levels[name]; ok {
			return l
		}
		l := 0
		if c, ok := m.Classes.Get(name); ok {
			for _, p := range c.InheritFrom {
				l = max(l, level(p)+1)
			}
		}
		a.levels[name] = l
		return l
	}

	inherited := make(map[string]bool)
	for _, c := range m.Classes.Values() {
		for _, p := range c.InheritFrom {
			inherited[p] = true
		}
	}
	for _, name := range m.ClassNames() {
		a.orphans[name] = level(name) == 0 && !inherited[name]
	}
	// Enum parents were memoized as level 0 on the way; keep classes only.
	for name := range a.levels {
		if !m.Classes.Has(name) {
			delete(a.levels, name)
		}
	}
	return a, nil
}

// checkCycles fails when the class inheritance graph has a cycle.
func checkCycles(m *model.Model) error {
	names := m.ClassNames()
	ids := make(map[string]int64, len(names))
	g := simple.NewDirectedGraph()
	for i, name := range names {
		ids[name] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for i, name := range names {
		c, _ := m.Classes.Get(name)
		for _, p := range c.InheritFrom {
			j, ok := ids[p]
			if !ok {
				continue
			}
			if j == int64(i) {
				return errors.New(errors.ErrCodeInheritanceCycle, "class %s inherits from itself", name)
			}
			g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
		}
	}

	_, err := topo.Sort(g)
	if err == nil {
		return nil
	}
	unorderable, ok := err.(topo.Unorderable)
	if !ok {
		return errors.Wrap(errors.ErrCodeInternal, err, "sort inheritance graph")
	}
	var cycles []string
	for _, component := range unorderable {
		members := make([]string, 0, len(component))
		for _, n := range component {
			members = append(members, names[n.ID()])
		}
		slices.Sort(members)
		cycles = append(cycles, strings.Join(members, ", "))
	}
	slices.Sort(cycles)
	return errors.New(errors.ErrCodeInheritanceCycle, "inheritance cycle among classes: %s", strings.Join(cycles, "; "))
}
