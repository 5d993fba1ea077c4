package lattice

// treeNode is one node of the flat archetype-tree arena. Its component set
// is the multiset of `name`s along the parent chain up to and including
// the root (the path-encoding invariant): because children strictly
// increase name, root→leaf always yields ascending NameIDs with no
// duplicates.
type treeNode struct {
	name      NameID
	parentIdx uint32
	arch      *archetype // materialized iff some entity currently has (or recently had) this exact set
}

type edgeKey struct {
	parent uint32
	name   NameID
}

// archetypeTree deduplicates archetypes and makes "the archetype obtained
// by adding/removing one component" a pointer-chase rather than a hash
// rebuild. Node 0 is the root and represents the base set {IDName}; it is
// its own parent.
type archetypeTree struct {
	nodes      []treeNode
	childCount []uint32
	edges      map[edgeKey]uint32    // (parent, name) -> child node, dedupes shared prefixes
	buckets    map[uint64]*archetype // hash -> head of the collision chain (via archetype.next)

	materialized []*archetype // every currently-materialized archetype, for query iteration
}

const rootIdx uint32 = 0

func newArchetypeTree() *archetypeTree {
	return &archetypeTree{
		nodes:      []treeNode{{name: IDName, parentIdx: rootIdx}},
		childCount: []uint32{0},
		edges:      make(map[edgeKey]uint32),
		buckets:    make(map[uint64]*archetype),
	}
}

// insert returns the node for (parent, name), creating and caching it if
// it doesn't already exist. This is what dedupes shared prefixes.
func (t *archetypeTree) insert(parent uint32, name NameID) uint32 {
	key := edgeKey{parent, name}
	if idx, ok := t.edges[key]; ok {
		return idx
	}
	idx := uint32(len(t.nodes))
	t.nodes = append(t.nodes, treeNode{name: name, parentIdx: parent})
	t.childCount = append(t.childCount, 0)
	t.childCount[parent]++
	t.edges[key] = idx
	return idx
}

// add returns the node representing idx's component set plus name,
// inserting name at the position that keeps the chain ascending. Adding a
// component already present, or the reserved id, is a no-op.
func (t *archetypeTree) add(idx uint32, name NameID) uint32 {
	if name == IDName {
		return idx
	}

	var scratch []uint32
	var pivot uint32
	cur := idx
	for {
		if cur == rootIdx {
			pivot = rootIdx
			break
		}
		n := t.nodes[cur]
		if n.name == name {
			return idx
		}
		if n.name < name {
			pivot = cur
			break
		}
		scratch = append(scratch, cur)
		cur = n.parentIdx
	}

	current := pivot
	inserted := false
	for i := len(scratch) - 1; i >= 0; i-- {
		origName := t.nodes[scratch[i]].name
		if !inserted && name < origName {
			current = t.insert(current, name)
			inserted = true
		}
		current = t.insert(current, origName)
	}
	if !inserted {
		current = t.insert(current, name)
	}
	return current
}

// remove returns the node representing idx's component set minus name.
// Removing an absent component, or the reserved id, is a no-op.
func (t *archetypeTree) remove(idx uint32, name NameID) uint32 {
	if name == IDName {
		return idx
	}

	var scratch []uint32
	cur := idx
	for {
		if cur == rootIdx {
			return idx // never found: no-op
		}
		n := t.nodes[cur]
		if n.name == name {
			current := n.parentIdx
			for i := len(scratch) - 1; i >= 0; i-- {
				current = t.insert(current, t.nodes[scratch[i]].name)
			}
			return current
		}
		if n.name < name {
			return idx // passed the insertion point: not present, no-op
		}
		scratch = append(scratch, cur)
		cur = n.parentIdx
	}
}

// contains reports whether idx's component set includes name. The
// reserved id is present on every node.
func (t *archetypeTree) contains(idx uint32, name NameID) bool {
	if name == IDName {
		return true
	}
	cur := idx
	for {
		if cur == rootIdx {
			return false
		}
		n := t.nodes[cur]
		if n.name == name {
			return true
		}
		if n.name < name {
			return false
		}
		cur = n.parentIdx
	}
}

// componentNames returns idx's component set in canonical (ascending)
// order, including the reserved id.
func (t *archetypeTree) componentNames(idx uint32) []NameID {
	var descending []NameID
	cur := idx
	for {
		descending = append(descending, t.nodes[cur].name)
		if cur == rootIdx {
			break
		}
		cur = t.nodes[cur].parentIdx
	}
	for i, j := 0, len(descending)-1; i < j; i, j = i+1, j-1 {
		descending[i], descending[j] = descending[j], descending[i]
	}
	return descending
}

// ensureArchetype returns idx's materialized archetype, building it (via
// typeFor for every non-id component) if it isn't materialized yet.
func (t *archetypeTree) ensureArchetype(idx uint32, typeFor func(NameID) ComponentType) *archetype {
	node := &t.nodes[idx]
	if node.arch != nil {
		return node.arch
	}
	names := t.componentNames(idx)
	types := make([]ComponentType, len(names))
	for i, n := range names {
		if n == IDName {
			types[i] = idComponentType
		} else {
			types[i] = typeFor(n)
		}
	}
	hash := hashNames(names)
	a := newArchetype(names, types, hash)
	a.node = idx
	node.arch = a
	t.linkBucket(hash, a)
	t.materialized = append(t.materialized, a)
	return a
}

// resolveAdd returns the materialized archetype for idx's component set plus
// name, and the node index it lives at. It first probes the hash bucket for
// an archetype with that exact target set (the O(1) path §4.2 describes for
// set/remove migration); only on a miss does it fall back to the tree's
// pivot-walk canonicalization to create the node and materialize it.
func (t *archetypeTree) resolveAdd(idx uint32, curNames []NameID, name NameID, typeFor func(NameID) ComponentType) (*archetype, uint32) {
	target := insertNameID(curNames, name)
	if a := t.findByHash(hashNames(target), target); a != nil {
		return a, a.node
	}
	newIdx := t.add(idx, name)
	return t.ensureArchetype(newIdx, typeFor), newIdx
}

// resolveRemove is resolveAdd's counterpart for dropping name from idx's set.
func (t *archetypeTree) resolveRemove(idx uint32, curNames []NameID, name NameID, typeFor func(NameID) ComponentType) (*archetype, uint32) {
	target := removeNameID(curNames, name)
	if a := t.findByHash(hashNames(target), target); a != nil {
		return a, a.node
	}
	newIdx := t.remove(idx, name)
	return t.ensureArchetype(newIdx, typeFor), newIdx
}

// insertNameID returns names with name inserted at the position that keeps
// the result ascending. names is assumed already sorted and not to contain
// name.
func insertNameID(names []NameID, name NameID) []NameID {
	out := make([]NameID, 0, len(names)+1)
	inserted := false
	for _, n := range names {
		if !inserted && name < n {
			out = append(out, name)
			inserted = true
		}
		out = append(out, n)
	}
	if !inserted {
		out = append(out, name)
	}
	return out
}

// removeNameID returns names with name filtered out.
func removeNameID(names []NameID, name NameID) []NameID {
	out := make([]NameID, 0, len(names)-1)
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// archetypes returns every currently-materialized archetype, in no
// particular order, for query iteration to scan.
func (t *archetypeTree) archetypes() []*archetype {
	return t.materialized
}

func (t *archetypeTree) linkBucket(hash uint64, a *archetype) {
	a.next = t.buckets[hash]
	t.buckets[hash] = a
}

func (t *archetypeTree) unlinkBucket(hash uint64, a *archetype) {
	head := t.buckets[hash]
	if head == a {
		t.buckets[hash] = a.next
		a.next = nil
		return
	}
	for cur := head; cur != nil; cur = cur.next {
		if cur.next == a {
			cur.next = a.next
			a.next = nil
			return
		}
	}
}

// findByHash walks the collision chain for hash looking for an archetype
// whose component set matches names exactly.
func (t *archetypeTree) findByHash(hash uint64, names []NameID) *archetype {
	for cur := t.buckets[hash]; cur != nil; cur = cur.next {
		if sameNameSet(cur.names(), names) {
			return cur
		}
	}
	return nil
}

func sameNameSet(a, b []NameID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// clearCache removes nodes that are not the root, have no materialized
// archetype (or one with len == 0), and are not the parent of any other
// node. Because removing a node can orphan its parent, the procedure
// iterates to a fixed point.
func (t *archetypeTree) clearCache() {
	for {
		removed := make([]bool, len(t.nodes))
		any := false
		for i := 1; i < len(t.nodes); i++ {
			if t.childCount[i] != 0 {
				continue
			}
			n := t.nodes[i]
			if n.arch == nil || n.arch.len == 0 {
				removed[i] = true
				any = true
			}
		}
		if !any {
			return
		}
		evicted := make(map[*archetype]bool)
		for i, r := range removed {
			if r && t.nodes[i].arch != nil {
				t.unlinkBucket(t.nodes[i].arch.hash, t.nodes[i].arch)
				evicted[t.nodes[i].arch] = true
			}
		}
		if len(evicted) > 0 {
			kept := t.materialized[:0]
			for _, a := range t.materialized {
				if !evicted[a] {
					kept = append(kept, a)
				}
			}
			t.materialized = kept
		}
		t.compact(removed)
	}
}

func (t *archetypeTree) compact(removed []bool) {
	oldToNew := make([]uint32, len(t.nodes))
	newNodes := make([]treeNode, 0, len(t.nodes))
	for i, n := range t.nodes {
		if removed[i] {
			continue
		}
		oldToNew[i] = uint32(len(newNodes))
		newNodes = append(newNodes, n)
	}
	for i := range newNodes {
		if i == 0 {
			newNodes[i].parentIdx = rootIdx
			continue
		}
		newNodes[i].parentIdx = oldToNew[newNodes[i].parentIdx]
	}

	t.nodes = newNodes
	t.childCount = make([]uint32, len(newNodes))
	t.edges = make(map[edgeKey]uint32, len(newNodes))
	for i := 1; i < len(newNodes); i++ {
		t.childCount[newNodes[i].parentIdx]++
		t.edges[edgeKey{newNodes[i].parentIdx, newNodes[i].name}] = uint32(i)
	}
}
