/*
Package lattice implements the storage core of an archetype-based
Entity-Component-System (ECS): a data engine that keeps component data for
entities in dense, column-oriented tables grouped by component set, and
moves entities between tables as components are added or removed.

Core Concepts:

  - Entity: an opaque 64-bit identifier (EntityID).
  - NameID: a 32-bit stable component identifier, produced externally by a
    name-interning collaborator (see the names subpackage for a reference
    implementation) and totally ordered — that order is what makes an
    archetype's identity a function of its component set alone.
  - Archetype: the dense column table holding every entity that currently
    carries an exact set of components.
  - ArchetypeTree: a generational tree of nodes, one per distinct,
    order-normalized component set, used to resolve "add/remove one
    component" as a pointer-chase instead of a hash rebuild.
  - Store: the façade that owns the tree and the entity directory and
    implements the new/delete/set/get/remove/query mutation surface.

Basic Usage:

	store := lattice.Factory.NewStore()

	position := lattice.NewTyped[Position](positionName)
	velocity := lattice.NewTyped[Velocity](velocityName)

	e, _ := store.NewEntity()
	position.Set(store, e, Position{X: 1})
	velocity.Set(store, e, Velocity{X: 2})

	query := lattice.Factory.NewQuery()
	all := query.And(positionName, velocityName)

	for handle := range store.Query(all) {
		positions := position.Slice(handle)
		velocities := velocity.Slice(handle)
		for i := range positions {
			positions[i].X += velocities[i].X
		}
	}

Lattice is the storage core underneath higher-level module/event façades,
but it also works standalone: it does not prescribe an event-dispatch API,
only the component mutation primitives such a façade would wrap.
*/
package lattice
