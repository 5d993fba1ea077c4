package lattice

// Config holds global configuration for the storage core. It should be
// set, if at all, before any Store is constructed.
var Config config = config{
	Allocator: defaultAllocator{},
}

type config struct {
	// Debug enables the type_id check made by Typed[T]'s Slice and At,
	// which is otherwise skipped; see ComponentType. Byte-size checks on
	// raw writes run regardless of Debug.
	Debug bool

	// Allocator backs every column/capacity growth. The default
	// allocator never fails; tests substitute one that fails on a
	// chosen call to exercise the OutOfMemory atomicity contract.
	Allocator Allocator
}

// SetDebug toggles the debug-mode type_id check.
func (c *config) SetDebug(enabled bool) {
	c.Debug = enabled
}

// SetAllocator overrides the allocator used for column growth.
func (c *config) SetAllocator(a Allocator) {
	if a == nil {
		a = defaultAllocator{}
	}
	c.Allocator = a
}
