package lattice

// factory is the single constructor surface for the package's concrete
// types, mirroring the rest of the ecosystem's Factory convention.
type factory struct{}

// Factory is the global factory instance for creating lattice components.
var Factory factory

// NewStore creates a Store backed by Config.Allocator.
func (f factory) NewStore() Store {
	return newStore(nil)
}

// NewStoreWithAllocator creates a Store backed by a specific Allocator,
// bypassing Config.Allocator — mainly useful for OOM-injection tests.
func (f factory) NewStoreWithAllocator(alloc Allocator) Store {
	return newStore(alloc)
}

// NewQuery creates an empty Query to build a predicate from via
// And/Or/Not.
func (f factory) NewQuery() Query {
	return newQuery()
}

// NewCursor creates a Cursor that iterates store for the entities/
// archetypes matching query.
func (f factory) NewCursor(query QueryNode, store Store) *Cursor {
	return newCursor(query, store)
}
