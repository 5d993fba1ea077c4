package lattice

import "iter"

// Cursor is a convenience wrapper around Store.Query for per-entity
// iteration: it locks the store for the duration of a range so that
// EnqueueX calls made from inside the loop body are deferred rather than
// invalidating the archetypes currently being walked.
type Cursor struct {
	query QueryNode
	store Store
}

func newCursor(query QueryNode, store Store) *Cursor {
	return &Cursor{query: query, store: store}
}

// EntityRow pairs an entity with its row in the archetype handle it came
// from, so the caller can address its columns directly.
type EntityRow struct {
	Entity EntityID
	Handle ArchetypeHandle
	Row    int
}

// Entities ranges over every (entity, row) pair across every archetype
// matching the cursor's query, locking the store for the duration.
func (c *Cursor) Entities() iter.Seq[EntityRow] {
	return func(yield func(EntityRow) bool) {
		c.store.Lock()
		defer c.store.Unlock()

		for handle := range c.store.Query(c.query) {
			n := handle.Len()
			for row := 0; row < n; row++ {
				er := EntityRow{Entity: handle.EntityAt(row), Handle: handle, Row: row}
				if !yield(er) {
					return
				}
			}
		}
	}
}

// Archetypes ranges over whole archetype handles matching the cursor's
// query, for callers that want to batch-process columns rather than walk
// entity-by-entity. Also locks the store for the duration.
func (c *Cursor) Archetypes() iter.Seq[ArchetypeHandle] {
	return func(yield func(ArchetypeHandle) bool) {
		c.store.Lock()
		defer c.store.Unlock()

		for handle := range c.store.Query(c.query) {
			if !yield(handle) {
				return
			}
		}
	}
}

// TotalMatched counts entities across every archetype matching the
// cursor's query.
func (c *Cursor) TotalMatched() int {
	total := 0
	for handle := range c.store.Query(c.query) {
		total += handle.Len()
	}
	return total
}
