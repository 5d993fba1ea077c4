// Package names provides a reference NameID-interning table: the external
// collaborator a lattice.Store expects to supply stable, totally-ordered
// component identifiers.
package names

import (
	"fmt"

	"github.com/latticeecs/lattice"
)

// Table interns component names to NameIDs. NameID 0 is reserved by
// lattice for the id pseudo-component, so the first interned name gets 1.
type Table struct {
	byName  map[string]lattice.NameID
	byID    []string // byID[0] is the reserved "id" entry, unused
	maxSize int       // 0 means unbounded
}

// NewTable creates an empty Table. maxSize bounds the number of entries it
// holds, the reserved id entry included; 0 means unbounded.
func NewTable(maxSize int) *Table {
	return &Table{
		byName:  make(map[string]lattice.NameID),
		byID:    []string{"id"},
		maxSize: maxSize,
	}
}

// Intern returns the NameID for name, assigning a new one on first sight.
// It returns an error only once the table already holds maxSize entries
// (the reserved id entry counts as one, so maxSize-1 names fit).
func (t *Table) Intern(name string) (lattice.NameID, error) {
	if id, ok := t.byName[name]; ok {
		return id, nil
	}
	if t.maxSize > 0 && len(t.byID) >= t.maxSize {
		return 0, fmt.Errorf("names: table at capacity (%d)", t.maxSize)
	}
	id := lattice.NameID(len(t.byID))
	t.byID = append(t.byID, name)
	t.byName[name] = id
	return id, nil
}

// Lookup returns the NameID already assigned to name, if any.
func (t *Table) Lookup(name string) (lattice.NameID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Name returns the string a NameID was interned from.
func (t *Table) Name(id lattice.NameID) (string, bool) {
	if int(id) >= len(t.byID) {
		return "", false
	}
	return t.byID[id], true
}

// Len returns the number of distinct names interned, including the
// reserved id entry.
func (t *Table) Len() int { return len(t.byID) }
