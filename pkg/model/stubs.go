package model

// MaterializeStubs adds an empty class for every parent name that some
// class inherits from but that is declared nowhere in m. Parents that are
// enums are left alone since they already have an entity. It returns the
// names of the stubs created, in discovery order.
//
// After MaterializeStubs every InheritFrom entry resolves to an entity.
func (m *Model) MaterializeStubs() []string {
	var created []string
	for _, c := range m.Classes.Values() {
		for _, parent := range c.InheritFrom {
			if m.HasEntity(parent) {
				continue
			}
			m.Classes.Set(parent, &Class{Name: parent})
			created = append(created, parent)
		}
	}
	return created
}

// Dangling returns the relation targets of m that name no entity, as
// "class -> target" pairs. It is empty once stubs are materialized and no
// aggregate or composite references a missing class.
func (m *Model) Dangling() []string {
	var out []string
	for name, c := range m.Classes.All() {
		for _, set := range []Names{c.InheritFrom, c.Composite, c.Aggregate} {
			for _, target := range set {
				if !m.HasEntity(target) {
					out = append(out, name+" -> "+target)
				}
			}
		}
	}
	return out
}
