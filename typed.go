package lattice

import (
	"reflect"
	"unsafe"

	"github.com/TheBitDrifter/bark"
)

// typeIDFor assigns a stable, process-lifetime type_id to T, used in place
// of "address of a static byte" since Go generics give no per-type static
// storage to take the address of. IDs start at 1; 0 is reserved for the
// id pseudo-component (see idComponentType).
var (
	typeIDCounter uint32
	typeIDs       = map[reflect.Type]uint32{}
)

func typeIDFor[T any]() uint32 {
	var zero T
	rt := reflect.TypeOf(zero)
	if id, ok := typeIDs[rt]; ok {
		return id
	}
	typeIDCounter++
	typeIDs[rt] = typeIDCounter
	return typeIDCounter
}

// Typed binds a NameID to a concrete Go type T, giving Set/Get/Slice a
// typed surface over the raw byte columns a Store actually stores. It
// carries no state tied to any one Store; the same Typed[T] value can
// address the same-named component across many stores.
type Typed[T any] struct {
	name NameID
	ct   ComponentType
}

// NewTyped binds name to T, computing T's storage shape via
// unsafe.Sizeof/Alignof.
func NewTyped[T any](name NameID) Typed[T] {
	var zero T
	return Typed[T]{
		name: name,
		ct: ComponentType{
			TypeID:    typeIDFor[T](),
			Size:      uint32(unsafe.Sizeof(zero)),
			Alignment: uint16(unsafe.Alignof(zero)),
		},
	}
}

func (t Typed[T]) Name() NameID { return t.name }

// Set writes value onto entity, migrating its archetype if it did not
// already carry this component.
func (t Typed[T]) Set(s Store, entity EntityID, value T) error {
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(&value)), unsafe.Sizeof(value))
	return s.SetComponent(entity, t.name, bytes, t.ct)
}

// Get returns a pointer into the entity's current archetype row, valid
// only until the next mutation that migrates or removes the entity.
func (t Typed[T]) Get(s Store, entity EntityID) (*T, bool, error) {
	b, ok, err := s.GetComponent(entity, t.name)
	if err != nil || !ok {
		return nil, ok, err
	}
	return (*T)(unsafe.Pointer(&b[0])), true, nil
}

func (t Typed[T]) Has(s Store, entity EntityID) (bool, error) {
	return s.HasComponent(entity, t.name)
}

func (t Typed[T]) Remove(s Store, entity EntityID) error {
	return s.RemoveComponent(entity, t.name)
}

// Slice reinterprets an archetype handle's entire backing column for this
// component as a []T, in row order, for batch processing across a query
// result. Returns nil if the handle's archetype does not carry this
// component.
func (t Typed[T]) Slice(h ArchetypeHandle) []T {
	checkTypeID[T](h, t.name)
	b, ok := h.RawColumn(t.name)
	if !ok || len(b) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), len(b)/size)
}

// At reinterprets a single row of h's column for this component.
func (t Typed[T]) At(h ArchetypeHandle, row int) *T {
	checkTypeID[T](h, t.name)
	b, ok := h.GetRaw(row, t.name)
	if !ok {
		return nil
	}
	return (*T)(unsafe.Pointer(&b[0]))
}

// checkTypeID is elided outside debug mode; see Config.SetDebug.
func checkTypeID[T any](h ArchetypeHandle, name NameID) {
	if !Config.Debug {
		return
	}
	got, ok := h.ColumnTypeID(name)
	if !ok {
		return
	}
	want := typeIDFor[T]()
	if got != want {
		panic(bark.AddTrace(TypeMismatchError{Name: name, Expected: want, Got: got}))
	}
}
