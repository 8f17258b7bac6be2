package arena

import "github.com/cockroachdb/errors"

var (
	// ErrExhausted indicates that the region cannot grow by the requested amount.
	ErrExhausted = errors.New("arena: region exhausted")

	// ErrClosed indicates the provider's memory has been released.
	ErrClosed = errors.New("arena: provider closed")

	// ErrNegativeGrow indicates a negative growth request.
	ErrNegativeGrow = errors.New("arena: negative grow")
)
