package lattice

import "github.com/TheBitDrifter/bark"

// Allocator backs every byte-buffer growth performed by an archetype's
// columns. Implementations may fail (returning a non-nil error, which the
// column wraps in OutOfMemoryError) to model resource exhaustion; mutation
// call sites are written so that an
// allocator failure never leaves the store in a half-migrated state.
type Allocator interface {
	// Alloc returns a freshly allocated, zeroed buffer of n bytes.
	Alloc(n int) ([]byte, error)
}

// defaultAllocator backs Config.Allocator out of the box and never fails
// except on a negative request, which is a programmer error.
type defaultAllocator struct{}

func (defaultAllocator) Alloc(n int) ([]byte, error) {
	if n < 0 {
		panic(bark.AddTrace(NegativeCapacityError{Requested: n}))
	}
	return make([]byte, n), nil
}
