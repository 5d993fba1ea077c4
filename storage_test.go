package lattice

import (
	"encoding/binary"
	"errors"
	"testing"
)

var ct32 = ComponentType{TypeID: 100, Size: 4, Alignment: 4}

func i32Bytes(v int32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	return b[:]
}

func i32FromBytes(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

const (
	locationName NameID = 10
	rotationName NameID = 11
	nameA        NameID = 12
	nameB        NameID = 13
	nameC        NameID = 14
)

// S1 — add/remove ordering independence.
func TestStoreArchetypeIdentityIsOrderIndependent(t *testing.T) {
	s := Factory.NewStore()

	e1, err := s.NewEntity()
	if err != nil {
		t.Fatalf("NewEntity: %v", err)
	}
	if err := s.SetComponent(e1, locationName, i32Bytes(1), ct32); err != nil {
		t.Fatalf("SetComponent(e1, location): %v", err)
	}
	if err := s.SetComponent(e1, rotationName, i32Bytes(2), ct32); err != nil {
		t.Fatalf("SetComponent(e1, rotation): %v", err)
	}

	e2, err := s.NewEntity()
	if err != nil {
		t.Fatalf("NewEntity: %v", err)
	}
	if err := s.SetComponent(e2, rotationName, i32Bytes(3), ct32); err != nil {
		t.Fatalf("SetComponent(e2, rotation): %v", err)
	}
	if err := s.SetComponent(e2, locationName, i32Bytes(4), ct32); err != nil {
		t.Fatalf("SetComponent(e2, location): %v", err)
	}

	impl := s.(*store)
	loc1, _ := impl.dir.lookup(e1)
	loc2, _ := impl.dir.lookup(e2)
	if loc1.node != loc2.node {
		t.Fatalf("e1 and e2 landed on different archetype nodes: %d vs %d", loc1.node, loc2.node)
	}
}

// S2 — dense layout after deletes.
func TestStoreDenseLayoutAfterDelete(t *testing.T) {
	s := Factory.NewStore()

	entities := make([]EntityID, 5)
	for i := range entities {
		e, err := s.NewEntity()
		if err != nil {
			t.Fatalf("NewEntity: %v", err)
		}
		if err := s.SetComponent(e, nameA, i32Bytes(int32(i+1)), ct32); err != nil {
			t.Fatalf("SetComponent: %v", err)
		}
		entities[i] = e
	}

	if err := s.DeleteEntity(entities[2]); err != nil { // e3
		t.Fatalf("DeleteEntity: %v", err)
	}

	impl := s.(*store)
	loc5, ok := impl.dir.lookup(entities[4])
	if !ok {
		t.Fatalf("e5 missing from directory after delete")
	}
	arch := impl.tree.nodes[loc5.node].arch
	if arch.len != 4 {
		t.Fatalf("archetype {id,A}.len = %d, want 4", arch.len)
	}
	if loc5.row != 2 {
		t.Fatalf("e5's row = %d, want 2 (the slot vacated by e3)", loc5.row)
	}

	want := map[int32]bool{1: true, 2: true, 4: true, 5: true}
	got := map[int32]bool{}
	for row := uint32(0); row < arch.len; row++ {
		b, _ := arch.getRaw(row, nameA)
		got[i32FromBytes(b)] = true
	}
	if len(got) != len(want) {
		t.Fatalf("A column values = %v, want %v", got, want)
	}
	for v := range want {
		if !got[v] {
			t.Errorf("A column missing value %d", v)
		}
	}
}

// S3 — migration preserves values.
func TestStoreMigrationPreservesValues(t *testing.T) {
	s := Factory.NewStore()

	e, err := s.NewEntity()
	if err != nil {
		t.Fatalf("NewEntity: %v", err)
	}
	if err := s.SetComponent(e, nameA, i32Bytes(10), ct32); err != nil {
		t.Fatalf("SetComponent A: %v", err)
	}
	if err := s.SetComponent(e, nameB, i32Bytes(20), ct32); err != nil {
		t.Fatalf("SetComponent B: %v", err)
	}
	if err := s.SetComponent(e, nameC, i32Bytes(30), ct32); err != nil {
		t.Fatalf("SetComponent C: %v", err)
	}

	assertComponent := func(name NameID, want int32) {
		t.Helper()
		b, ok, err := s.GetComponent(e, name)
		if err != nil || !ok {
			t.Fatalf("GetComponent(%d): %v, %v", name, ok, err)
		}
		if got := i32FromBytes(b); got != want {
			t.Errorf("GetComponent(%d) = %d, want %d", name, got, want)
		}
	}
	assertComponent(nameA, 10)
	assertComponent(nameB, 20)
	assertComponent(nameC, 30)

	if err := s.RemoveComponent(e, nameB); err != nil {
		t.Fatalf("RemoveComponent B: %v", err)
	}
	assertComponent(nameA, 10)
	assertComponent(nameC, 30)
	if _, ok, _ := s.GetComponent(e, nameB); ok {
		t.Errorf("GetComponent(B) found a value after remove")
	}
	if has, _ := s.HasComponent(e, nameB); has {
		t.Errorf("HasComponent(B) = true after remove")
	}
}

// Universal invariant 4: round-trip and no-op remove of an absent component.
func TestStoreRoundTripAndNoopRemove(t *testing.T) {
	s := Factory.NewStore()
	e, _ := s.NewEntity()

	if err := s.RemoveComponent(e, nameA); err != nil {
		t.Fatalf("RemoveComponent of absent component: %v", err)
	}
	if has, _ := s.HasComponent(e, nameA); has {
		t.Fatalf("HasComponent true for component never set")
	}

	if err := s.SetComponent(e, nameA, i32Bytes(42), ct32); err != nil {
		t.Fatalf("SetComponent: %v", err)
	}
	b, ok, err := s.GetComponent(e, nameA)
	if err != nil || !ok || i32FromBytes(b) != 42 {
		t.Fatalf("GetComponent after set = %v, %v, %v, want 42, true, nil", b, ok, err)
	}
}

// Universal invariant 1 & 5: id column matches directory entry, and
// swap-remove keeps relocated entities correctly addressed.
func TestStoreSwapRemoveKeepsDirectoryConsistent(t *testing.T) {
	s := Factory.NewStore()
	impl := s.(*store)

	entities := make([]EntityID, 6)
	for i := range entities {
		e, err := s.NewEntity()
		if err != nil {
			t.Fatalf("NewEntity: %v", err)
		}
		if err := s.SetComponent(e, nameA, i32Bytes(int32(i)), ct32); err != nil {
			t.Fatalf("SetComponent: %v", err)
		}
		entities[i] = e
	}

	if err := s.DeleteEntity(entities[1]); err != nil {
		t.Fatalf("DeleteEntity: %v", err)
	}
	if err := s.DeleteEntity(entities[3]); err != nil {
		t.Fatalf("DeleteEntity: %v", err)
	}

	for i, e := range entities {
		if i == 1 || i == 3 {
			if _, ok := impl.dir.lookup(e); ok {
				t.Errorf("deleted entity %d still in directory", i)
			}
			continue
		}
		loc, ok := impl.dir.lookup(e)
		if !ok {
			t.Fatalf("entity %d missing from directory", i)
		}
		arch := impl.tree.nodes[loc.node].arch
		if arch.idAt(loc.row) != e {
			t.Errorf("entity %d: id column at its row is %d, want %d", i, arch.idAt(loc.row), e)
		}
	}
}

// S6 — OOM atomicity: a failure while growing the destination archetype
// for a migrating SetComponent must leave the entity exactly where it was.
func TestStoreSetComponentOOMIsTransactional(t *testing.T) {
	alloc := &failNthAllocator{failOn: -1}
	s := Factory.NewStoreWithAllocator(alloc)

	control, err := s.NewEntity()
	if err != nil {
		t.Fatalf("NewEntity: %v", err)
	}
	if err := s.SetComponent(control, nameA, i32Bytes(99), ct32); err != nil {
		t.Fatalf("SetComponent(control): %v", err)
	}

	e, err := s.NewEntity()
	if err != nil {
		t.Fatalf("NewEntity: %v", err)
	}

	// Fail on the second allocation from here: growing the fresh {id,nameB}
	// archetype's second column (nameB itself, after its id column already
	// succeeded).
	alloc.calls = 0
	alloc.failOn = 2

	if err := s.SetComponent(e, nameB, i32Bytes(7), ct32); err == nil {
		t.Fatalf("SetComponent: expected OutOfMemoryError, got nil")
	} else if !errors.As(err, &OutOfMemoryError{}) {
		t.Fatalf("SetComponent error = %v, want OutOfMemoryError", err)
	}

	if has, _ := s.HasComponent(e, nameB); has {
		t.Errorf("entity has nameB after a failed migration")
	}
	impl := s.(*store)
	loc, ok := impl.dir.lookup(e)
	if !ok {
		t.Fatalf("entity dropped from directory after failed migration")
	}
	if impl.tree.nodes[loc.node].arch.hasComponent(nameB) {
		t.Errorf("entity's archetype after failed migration unexpectedly carries nameB")
	}

	b, ok, err := s.GetComponent(control, nameA)
	if err != nil || !ok || i32FromBytes(b) != 99 {
		t.Fatalf("control entity's pre-existing component corrupted: %v, %v, %v", b, ok, err)
	}
}

// failNthAllocator fails exactly its failOn-th call (1-indexed) and
// succeeds on every other call.
type failNthAllocator struct {
	calls  int
	failOn int
}

func (a *failNthAllocator) Alloc(n int) ([]byte, error) {
	a.calls++
	if a.calls == a.failOn {
		return nil, errors.New("injected allocation failure")
	}
	return make([]byte, n), nil
}

func TestStoreEnqueueDefersUntilUnlock(t *testing.T) {
	s := Factory.NewStore()
	e, _ := s.NewEntity()

	s.Lock()
	if err := s.EnqueueSetComponent(e, nameA, i32Bytes(5), ct32); err != nil {
		t.Fatalf("EnqueueSetComponent: %v", err)
	}
	if has, _ := s.HasComponent(e, nameA); has {
		t.Fatalf("queued SetComponent applied before Unlock")
	}
	s.Unlock()

	if has, _ := s.HasComponent(e, nameA); !has {
		t.Fatalf("queued SetComponent did not apply after Unlock")
	}
}
