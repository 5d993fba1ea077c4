package lattice

import (
	"fmt"
	"iter"

	"github.com/TheBitDrifter/bark"
)

// Store is the single-writer façade over the archetype tree and entity
// directory: the full new/delete/set/get/remove/query mutation surface.
// There is exactly one logical writer at a time; outstanding query handles
// are valid only until the next mutating call (see Generation).
type Store interface {
	NewEntity() (EntityID, error)
	DeleteEntity(entity EntityID) error
	SetComponent(entity EntityID, name NameID, value []byte, ct ComponentType) error
	GetComponent(entity EntityID, name NameID) ([]byte, bool, error)
	HasComponent(entity EntityID, name NameID) (bool, error)
	RemoveComponent(entity EntityID, name NameID) error

	Query(QueryNode) iter.Seq[ArchetypeHandle]
	ClearCache()

	// Lock/Unlock defer mutation while a Cursor is iterating (see
	// cursor.go); the EnqueueX methods run immediately when unlocked and
	// queue otherwise, draining in submission order on the final Unlock.
	Lock()
	Unlock()
	Locked() bool
	EnqueueSetComponent(entity EntityID, name NameID, value []byte, ct ComponentType) error
	EnqueueRemoveComponent(entity EntityID, name NameID) error
	EnqueueDeleteEntity(entity EntityID) error

	// Generation increments on every successful mutation. A Cursor or raw
	// column slice captured under one generation is stale once the
	// generation has moved on.
	Generation() uint64
}

var _ Store = (*store)(nil)

type store struct {
	tree       *archetypeTree
	dir        *directory
	alloc      Allocator
	generation uint64
	lockDepth  int
	queue      []queuedOp
}

func newStore(alloc Allocator) *store {
	if alloc == nil {
		alloc = Config.Allocator
	}
	s := &store{
		tree:  newArchetypeTree(),
		dir:   newDirectory(),
		alloc: alloc,
	}
	s.tree.ensureArchetype(rootIdx, nil)
	return s
}

func (s *store) bumpGeneration() { s.generation++ }

func (s *store) Generation() uint64 { return s.generation }

// NewEntity allocates a fresh id and places it in the root archetype,
// which holds only the reserved id column.
func (s *store) NewEntity() (EntityID, error) {
	root := s.tree.ensureArchetype(rootIdx, nil)
	id := s.dir.allocate()
	var buf [8]byte
	byteOrder.PutUint64(buf[:], uint64(id))
	row, err := root.append([]rawField{{name: IDName, bytes: buf[:]}}, s.alloc)
	if err != nil {
		return 0, err
	}
	s.dir.set(id, location{node: rootIdx, row: row})
	s.bumpGeneration()
	return id, nil
}

func (s *store) DeleteEntity(entity EntityID) error {
	loc, ok := s.dir.lookup(entity)
	if !ok {
		return UnknownEntityError{Entity: entity}
	}
	arch := s.tree.nodes[loc.node].arch
	relocateRow(arch, loc, s.dir)
	s.dir.delete(entity)
	s.bumpGeneration()
	return nil
}

// SetComponent writes in place if the entity already carries name, else
// migrates it to the archetype for its current set plus name, copying
// every existing field across and swap-removing the old row. The
// migration is transactional with respect to allocation failure: if
// growing the destination archetype fails, the entity is left exactly
// where it was.
func (s *store) SetComponent(entity EntityID, name NameID, value []byte, ct ComponentType) error {
	loc, ok := s.dir.lookup(entity)
	if !ok {
		return UnknownEntityError{Entity: entity}
	}
	curArch := s.tree.nodes[loc.node].arch

	if curArch.hasComponent(name) {
		curArch.setRaw(loc.row, name, value)
		s.bumpGeneration()
		return nil
	}

	oldColumns := curArch.columns
	newArch, newIdx := s.tree.resolveAdd(loc.node, curArch.names(), name, func(n NameID) ComponentType {
		if n == name {
			return ct
		}
		return typeOf(oldColumns, n)
	})

	newRow, err := newArch.appendUndefined(s.alloc)
	if err != nil {
		return err
	}
	copyShared(oldColumns, curArch, loc.row, newArch, newRow)
	newArch.setRaw(newRow, name, value)
	newArch.setID(newRow, entity)

	relocateRow(curArch, loc, s.dir)
	s.dir.set(entity, location{node: newIdx, row: newRow})
	s.bumpGeneration()
	return nil
}

func (s *store) GetComponent(entity EntityID, name NameID) ([]byte, bool, error) {
	loc, ok := s.dir.lookup(entity)
	if !ok {
		return nil, false, UnknownEntityError{Entity: entity}
	}
	b, found := s.tree.nodes[loc.node].arch.getRaw(loc.row, name)
	return b, found, nil
}

func (s *store) HasComponent(entity EntityID, name NameID) (bool, error) {
	loc, ok := s.dir.lookup(entity)
	if !ok {
		return false, UnknownEntityError{Entity: entity}
	}
	return s.tree.nodes[loc.node].arch.hasComponent(name), nil
}

// RemoveComponent migrates the entity to the archetype for its current set
// minus name. A no-op if the component is absent or name is the reserved id.
func (s *store) RemoveComponent(entity EntityID, name NameID) error {
	loc, ok := s.dir.lookup(entity)
	if !ok {
		return UnknownEntityError{Entity: entity}
	}
	curArch := s.tree.nodes[loc.node].arch
	if name == IDName || !curArch.hasComponent(name) {
		return nil
	}

	oldColumns := curArch.columns
	newArch, newIdx := s.tree.resolveRemove(loc.node, curArch.names(), name, func(n NameID) ComponentType {
		return typeOf(oldColumns, n)
	})

	newRow, err := newArch.appendUndefined(s.alloc)
	if err != nil {
		return err
	}
	copySharedExcept(oldColumns, curArch, loc.row, newArch, newRow, name)
	newArch.setID(newRow, entity)

	relocateRow(curArch, loc, s.dir)
	s.dir.set(entity, location{node: newIdx, row: newRow})
	s.bumpGeneration()
	return nil
}

func (s *store) exists(entity EntityID) bool {
	_, ok := s.dir.lookup(entity)
	return ok
}

func (s *store) ClearCache() {
	// clearCache compacts node indices, so remember each entity's archetype
	// and re-point the directory and every archetype's node index afterwards.
	archOf := make(map[EntityID]*archetype, len(s.dir.slots))
	for e, loc := range s.dir.slots {
		archOf[e] = s.tree.nodes[loc.node].arch
	}
	s.tree.clearCache()
	for i := range s.tree.nodes {
		if a := s.tree.nodes[i].arch; a != nil {
			a.node = uint32(i)
		}
	}
	for e, a := range archOf {
		s.dir.set(e, location{node: a.node, row: s.dir.slots[e].row})
	}
	s.bumpGeneration()
}

func (s *store) Query(node QueryNode) iter.Seq[ArchetypeHandle] {
	return queryArchetypes(s, node)
}

// Lock defers EnqueueX mutation while set; nested locks are allowed, the
// queue drains only once the outermost Unlock brings the depth back to 0.
func (s *store) Lock() { s.lockDepth++ }

func (s *store) Unlock() {
	if s.lockDepth == 0 {
		return
	}
	s.lockDepth--
	if s.lockDepth == 0 {
		s.drainQueue()
	}
}

func (s *store) Locked() bool { return s.lockDepth > 0 }

// drainQueue replays the queued mutations built up while locked, in
// submission order. A deferred operation's caller already returned, so a
// failure here (e.g. an allocation failure) can no longer be reported
// through a normal error return and is raised as a panic instead. An op
// whose entity was deleted by an earlier queued op is skipped, not an error.
func (s *store) drainQueue() {
	pending := s.queue
	s.queue = nil
	for _, op := range pending {
		if err := op.apply(s); err != nil {
			panic(fmt.Errorf("lattice: error processing queued operation: %w", err))
		}
	}
}

func (s *store) EnqueueSetComponent(entity EntityID, name NameID, value []byte, ct ComponentType) error {
	if s.Locked() {
		cp := append([]byte(nil), value...)
		s.queue = append(s.queue, setComponentOp{entity: entity, name: name, value: cp, ct: ct})
		return nil
	}
	return s.SetComponent(entity, name, value, ct)
}

func (s *store) EnqueueRemoveComponent(entity EntityID, name NameID) error {
	if s.Locked() {
		s.queue = append(s.queue, removeComponentOp{entity: entity, name: name})
		return nil
	}
	return s.RemoveComponent(entity, name)
}

func (s *store) EnqueueDeleteEntity(entity EntityID) error {
	if s.Locked() {
		s.queue = append(s.queue, deleteEntityOp{entity: entity})
		return nil
	}
	return s.DeleteEntity(entity)
}

// typeOf looks up the ComponentType of name among an archetype's existing
// columns. It is only ever called for names already known to be present.
func typeOf(columns []column, name NameID) ComponentType {
	for _, c := range columns {
		if c.name == name {
			return ComponentType{TypeID: c.typeID, Size: c.size, Alignment: c.alignment}
		}
	}
	panic(bark.AddTrace(UnknownComponentError{Name: name}))
}

func copyShared(oldColumns []column, oldArch *archetype, oldRow uint32, newArch *archetype, newRow uint32) {
	for _, c := range oldColumns {
		if c.name == IDName {
			continue
		}
		b, _ := oldArch.getRaw(oldRow, c.name)
		newArch.setRaw(newRow, c.name, b)
	}
}

func copySharedExcept(oldColumns []column, oldArch *archetype, oldRow uint32, newArch *archetype, newRow uint32, except NameID) {
	for _, c := range oldColumns {
		if c.name == IDName || c.name == except {
			continue
		}
		b, _ := oldArch.getRaw(oldRow, c.name)
		newArch.setRaw(newRow, c.name, b)
	}
}

// relocateRow swap-removes loc.row from arch and, if that relocated
// another entity's row, patches that entity's directory entry to point at
// the vacated slot.
func relocateRow(arch *archetype, loc location, dir *directory) {
	_, relocated := arch.remove(loc.row)
	if !relocated {
		return
	}
	relocatedID := arch.idAt(loc.row)
	dir.set(relocatedID, location{node: loc.node, row: loc.row})
}
