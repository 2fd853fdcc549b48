package enum

import (
	"golang.org/x/text/cases"

	"github.com/mcncl/jsoncompat/internal/naming"
)

// Collision records two members that resolve to the same wire name. The
// later member wins every lookup.
type Collision struct {
	WireName string
	Earlier  string
	Later    string
}

// Table is the alias table for one enum type under one naming transform.
// It is immutable once built and safe for concurrent reads.
type Table struct {
	desc Descriptor

	// writeOverrides: canonical name -> explicit wire name.
	writeOverrides map[string]string
	// readExact and readFold: wire name -> member, from overrides and
	// transform-derived names.
	readExact map[string]Member
	readFold  map[string]Member

	byName     map[string]Member
	byFoldName map[string]Member
	byValue    map[int64]Member

	collisions []Collision
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// BuildTable derives the alias table for d. A nil transform leaves members
// without an override under their canonical names.
func BuildTable(d Descriptor, transform naming.Transform) *Table {
	t := &Table{
		desc:           d,
		writeOverrides: make(map[string]string),
		readExact:      make(map[string]Member),
		readFold:       make(map[string]Member),
		byName:         make(map[string]Member, len(d.Members)),
		byFoldName:     make(map[string]Member, len(d.Members)),
		byValue:        make(map[int64]Member, len(d.Members)),
	}

	for _, m := range d.Members {
		if _, ok := t.byName[m.Name]; !ok {
			t.byName[m.Name] = m
		}
		if _, ok := t.byFoldName[fold(m.Name)]; !ok {
			t.byFoldName[fold(m.Name)] = m
		}
		if _, ok := t.byValue[m.Value]; !ok {
			t.byValue[m.Value] = m
		}

		wire := m.WireName
		explicit := wire != ""
		if !explicit && transform != nil {
			wire = transform.Convert(m.Name)
		}
		if wire == "" || wire == m.Name {
			continue
		}

		if explicit {
			t.writeOverrides[m.Name] = wire
		}
		if prev, ok := t.readExact[wire]; ok && prev.Name != m.Name {
			t.collisions = append(t.collisions, Collision{WireName: wire, Earlier: prev.Name, Later: m.Name})
		}
		t.readExact[wire] = m
		t.readFold[fold(wire)] = m
	}
	return t
}

// Descriptor returns the descriptor the table was built from.
func (t *Table) Descriptor() Descriptor { return t.desc }

// Collisions lists wire names claimed by more than one member.
func (t *Table) Collisions() []Collision { return t.collisions }

// Aliases is the number of read aliases.
func (t *Table) Aliases() int { return len(t.readExact) }

// Overrides is the number of explicit write overrides.
func (t *Table) Overrides() int { return len(t.writeOverrides) }

// Lookup finds the member for a wire string: exact alias, case-insensitive
// alias, canonical name, then canonical name ignoring case.
func (t *Table) Lookup(s string) (Member, bool) {
	if m, ok := t.readExact[s]; ok {
		return m, true
	}
	f := fold(s)
	if m, ok := t.readFold[f]; ok {
		return m, true
	}
	if m, ok := t.byName[s]; ok {
		return m, true
	}
	m, ok := t.byFoldName[f]
	return m, ok
}

// Member returns the first declared member with value v.
func (t *Table) Member(v int64) (Member, bool) {
	m, ok := t.byValue[v]
	return m, ok
}

// WireName returns the name m is written under: its explicit override, else
// its canonical name under transform.
func (t *Table) WireName(m Member, transform naming.Transform) string {
	if wire, ok := t.writeOverrides[m.Name]; ok {
		return wire
	}
	return naming.Apply(transform, m.Name)
}
