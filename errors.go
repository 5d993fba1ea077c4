package lattice

import "fmt"

// OutOfMemoryError is returned when a column buffer allocation fails.
// It leaves the store in its pre-call state: set_component/remove_component
// are transactional w.r.t. allocation failure.
type OutOfMemoryError struct {
	Op  string
	Err error
}

func (e OutOfMemoryError) Error() string {
	return fmt.Sprintf("lattice: out of memory during %s: %v", e.Op, e.Err)
}

func (e OutOfMemoryError) Unwrap() error { return e.Err }

// UnknownEntityError is returned when an operation references an EntityID
// that is not present in the store's directory.
type UnknownEntityError struct {
	Entity EntityID
}

func (e UnknownEntityError) Error() string {
	return fmt.Sprintf("lattice: unknown entity %d", e.Entity)
}

// WrongSizeError is a ProgrammerError: the caller supplied a byte slice
// whose length does not match the column's declared element size.
type WrongSizeError struct {
	Name     NameID
	Expected uint32
	Got      int
}

func (e WrongSizeError) Error() string {
	return fmt.Sprintf("lattice: component %d expects %d bytes, got %d", e.Name, e.Expected, e.Got)
}

// TypeMismatchError is a ProgrammerError raised only in debug mode: the
// caller's type_id does not match the column's recorded type_id.
type TypeMismatchError struct {
	Name     NameID
	Expected uint32
	Got      uint32
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("lattice: component %d expects type_id %d, got %d", e.Name, e.Expected, e.Got)
}

// NegativeCapacityError is a ProgrammerError: a negative byte count was
// requested from the allocator.
type NegativeCapacityError struct {
	Requested int
}

func (e NegativeCapacityError) Error() string {
	return fmt.Sprintf("lattice: negative capacity requested: %d", e.Requested)
}
