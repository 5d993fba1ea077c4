package lattice

import "math"

// column is a single component's contiguous backing buffer within an
// archetype. Every column in an archetype shares the same logical length
// and capacity (the archetype's len/cap); only the byte width differs.
type column struct {
	name      NameID
	typeID    uint32
	size      uint32
	alignment uint16
	values    []byte // len(values) == capacity*size
}

func newColumn(name NameID, ct ComponentType) column {
	return column{
		name:      name,
		typeID:    ct.TypeID,
		size:      ct.Size,
		alignment: ct.Alignment,
	}
}

// growRowCapacity implements the spec's geometric growth formula,
// saturating on overflow: new = old + old/2 + 8.
func growRowCapacity(old uint32) uint32 {
	grown := uint64(old) + uint64(old)/2 + 8
	if grown > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(grown)
}

// ensureCapacity grows the column's buffer to hold at least newCap rows,
// preserving existing bytes. It never shrinks and is a no-op for
// zero-sized components.
func (c *column) ensureCapacity(newCap uint32, alloc Allocator) error {
	if c.size == 0 {
		return nil
	}
	curCap := uint32(0)
	if c.size > 0 {
		curCap = uint32(len(c.values)) / c.size
	}
	if newCap <= curCap {
		return nil
	}
	buf, err := alloc.Alloc(int(newCap) * int(c.size))
	if err != nil {
		return OutOfMemoryError{Op: "column.ensureCapacity", Err: err}
	}
	copy(buf, c.values)
	c.values = buf
	return nil
}

// rowBytes returns the byte slice backing row, or nil for a zero-sized
// component (membership is still tracked, but there is nothing to slice).
func (c *column) rowBytes(row uint32) []byte {
	if c.size == 0 {
		return nil
	}
	start := row * c.size
	return c.values[start : start+c.size]
}

// copyRow copies the bytes of row src onto row dst within the same column.
func (c *column) copyRow(dst, src uint32) {
	if c.size == 0 || dst == src {
		return
	}
	copy(c.rowBytes(dst), c.rowBytes(src))
}
