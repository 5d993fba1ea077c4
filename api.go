package lattice

// ArchetypeHandle is a read/write view onto one archetype's dense rows,
// yielded by Store.Query and Cursor. A handle is only valid up to the
// store's next mutating call; see Store.Generation.
type ArchetypeHandle interface {
	// Len is the number of live rows (entities) in the archetype.
	Len() int

	// Names is the archetype's component set in canonical order.
	Names() []NameID

	HasComponent(name NameID) bool

	// HasComponents reports whether every name in names is present.
	HasComponents(names []NameID) bool

	// EntityAt returns the id of the entity occupying row.
	EntityAt(row int) EntityID

	GetRaw(row int, name NameID) ([]byte, bool)
	SetRaw(row int, name NameID, value []byte)

	// RawColumn returns the full backing slice for name, Len()*size
	// bytes, or (nil, false) if the archetype does not carry name.
	RawColumn(name NameID) ([]byte, bool)

	// ColumnTypeID returns the type_id recorded for name's column, for
	// debug-mode mismatch checks before an unsafe reinterpret cast.
	ColumnTypeID(name NameID) (uint32, bool)
}

type archetypeHandle struct {
	arch *archetype
}

func (h archetypeHandle) Len() int                     { return int(h.arch.len) }
func (h archetypeHandle) Names() []NameID               { return h.arch.names() }
func (h archetypeHandle) HasComponent(name NameID) bool { return h.arch.hasComponent(name) }

func (h archetypeHandle) HasComponents(names []NameID) bool { return h.arch.hasComponents(names) }
func (h archetypeHandle) EntityAt(row int) EntityID     { return h.arch.idAt(uint32(row)) }

func (h archetypeHandle) GetRaw(row int, name NameID) ([]byte, bool) {
	return h.arch.getRaw(uint32(row), name)
}

func (h archetypeHandle) SetRaw(row int, name NameID, value []byte) {
	h.arch.setRaw(uint32(row), name, value)
}

func (h archetypeHandle) RawColumn(name NameID) ([]byte, bool) {
	c, ok := h.arch.columnByName(name)
	if !ok {
		return nil, false
	}
	return c.values[:h.arch.len*c.size], true
}

func (h archetypeHandle) ColumnTypeID(name NameID) (uint32, bool) {
	c, ok := h.arch.columnByName(name)
	if !ok {
		return 0, false
	}
	return c.typeID, true
}
