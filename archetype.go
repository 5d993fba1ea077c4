package lattice

import (
	"sort"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
)

// maxMaskedName is the highest NameID tracked by an archetype's fast-path
// bitset. NameIDs at or above this bound still participate in archetype
// identity and the binary-search column lookup; they just fall outside the O(1)
// mask short-circuit used by query evaluation.
const maxMaskedName = 256

// archetype is a dense, column-oriented table: one row per entity sharing
// an exact component set, one column per component in that set, columns
// sorted ascending by NameID. Every archetype carries the reserved id
// column at NameID 0.
type archetype struct {
	columns []column
	len     uint32
	cap     uint32
	hash    uint64
	next    *archetype // collision-chain link within a hash bucket
	node    uint32     // index of the tree node this archetype materializes

	fastMask mask.Mask256 // query fast-path: bit i set iff NameID i is present and i < maxMaskedName
}

func newArchetype(names []NameID, types []ComponentType, hash uint64) *archetype {
	a := &archetype{
		columns: make([]column, len(names)),
		hash:    hash,
	}
	for i, n := range names {
		a.columns[i] = newColumn(n, types[i])
		if n < maxMaskedName {
			a.fastMask.Mark(uint32(n))
		}
	}
	return a
}

// columnByName returns the column for name via binary search (columns are
// kept sorted ascending by NameID), and whether it was found.
func (a *archetype) columnByName(name NameID) (*column, bool) {
	i := sort.Search(len(a.columns), func(i int) bool { return a.columns[i].name >= name })
	if i < len(a.columns) && a.columns[i].name == name {
		return &a.columns[i], true
	}
	return nil, false
}

func (a *archetype) hasComponent(name NameID) bool {
	if name < maxMaskedName {
		var bit mask.Mask256
		bit.Mark(uint32(name))
		return a.fastMask.ContainsAll(bit)
	}
	_, ok := a.columnByName(name)
	return ok
}

func (a *archetype) hasComponents(names []NameID) bool {
	for _, n := range names {
		if !a.hasComponent(n) {
			return false
		}
	}
	return true
}

// names returns the archetype's component NameIDs in canonical (ascending)
// order, including the reserved id component.
func (a *archetype) names() []NameID {
	out := make([]NameID, len(a.columns))
	for i, c := range a.columns {
		out[i] = c.name
	}
	return out
}

// ensureTotalCapacity grows every column's buffer to hold at least n rows.
// It never shrinks. Growth is attempted column-by-column; archetype.cap is
// only advanced once every column has succeeded, so after a mid-way
// allocation failure the columns already grown keep their larger buffers
// but the archetype's published capacity is unchanged.
func (a *archetype) ensureTotalCapacity(n uint32, alloc Allocator) error {
	if n <= a.cap {
		return nil
	}
	for i := range a.columns {
		if err := a.columns[i].ensureCapacity(n, alloc); err != nil {
			return err
		}
	}
	a.cap = n
	return nil
}

// appendUndefined reserves a new, uninitialized row and returns its index.
func (a *archetype) appendUndefined(alloc Allocator) (uint32, error) {
	if a.len == a.cap {
		if err := a.ensureTotalCapacity(growRowCapacity(a.cap), alloc); err != nil {
			return 0, err
		}
	}
	row := a.len
	a.len++
	return row, nil
}

// rawField is a single positional field supplied to append.
type rawField struct {
	name  NameID
	bytes []byte
}

// append reserves a new row and writes each field into the column whose
// name matches by positional correspondence, returning the new row index.
func (a *archetype) append(fields []rawField, alloc Allocator) (uint32, error) {
	row, err := a.appendUndefined(alloc)
	if err != nil {
		return 0, err
	}
	for _, f := range fields {
		a.setRaw(row, f.name, f.bytes)
	}
	return row, nil
}

// setRaw writes bytes into column name at row. Misuse (wrong size, missing
// column, out-of-range row) is a programmer error and panics.
func (a *archetype) setRaw(row uint32, name NameID, bytes []byte) {
	c, ok := a.columnByName(name)
	if !ok {
		panic(bark.AddTrace(UnknownComponentError{Name: name}))
	}
	if row >= a.len {
		panic(bark.AddTrace(WrongSizeError{Name: name, Expected: c.size, Got: len(bytes)}))
	}
	if uint32(len(bytes)) != c.size {
		panic(bark.AddTrace(WrongSizeError{Name: name, Expected: c.size, Got: len(bytes)}))
	}
	if c.size == 0 {
		return
	}
	copy(c.rowBytes(row), bytes)
}

// getRaw returns the byte slice for column name at row, or (nil, false) if
// no such column exists on this archetype.
func (a *archetype) getRaw(row uint32, name NameID) ([]byte, bool) {
	c, ok := a.columnByName(name)
	if !ok {
		return nil, false
	}
	if row >= a.len {
		panic(bark.AddTrace(WrongSizeError{Name: name, Expected: c.size, Got: 0}))
	}
	return c.rowBytes(row), true
}

// remove swap-removes row: the last row's bytes are copied over row in
// every column and len is decremented. It reports whether a relocation
// happened and, if so, the row that used to be last (now living at row)
// so the caller can patch the relocated entity's directory entry.
func (a *archetype) remove(row uint32) (relocatedFrom uint32, relocated bool) {
	last := a.len - 1
	if row < last {
		for i := range a.columns {
			a.columns[i].copyRow(row, last)
		}
		relocatedFrom, relocated = last, true
	}
	a.len--
	return relocatedFrom, relocated
}

// idAt returns the EntityID stored in the reserved id column at row.
func (a *archetype) idAt(row uint32) EntityID {
	b, _ := a.getRaw(row, IDName)
	return EntityID(byteOrder.Uint64(b))
}

func (a *archetype) setID(row uint32, id EntityID) {
	var buf [8]byte
	byteOrder.PutUint64(buf[:], uint64(id))
	a.setRaw(row, IDName, buf[:])
}

// UnknownComponentError is a ProgrammerError: the caller addressed a
// column that does not exist on this archetype.
type UnknownComponentError struct {
	Name NameID
}

func (e UnknownComponentError) Error() string {
	return "lattice: no such component on archetype"
}
