package alloc

import "github.com/cockroachdb/errors"

var (
	// ErrOutOfMemory indicates that no free block was large enough and the
	// arena could not grow.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrTooLarge indicates a request whose block size cannot be encoded in a
	// 32-bit header, or whose element count overflows.
	ErrTooLarge = errors.New("alloc: request too large")

	// ErrInvalidSize indicates a negative size.
	ErrInvalidSize = errors.New("alloc: negative size")

	// ErrBadPtr indicates a pointer that does not reference a live allocated block.
	ErrBadPtr = errors.New("alloc: bad pointer")

	// ErrCorrupt marks every consistency checker failure.
	ErrCorrupt = errors.New("alloc: heap corrupt")

	// ErrNoArena indicates that New was called without a provider.
	ErrNoArena = errors.New("alloc: nil arena provider")
)
