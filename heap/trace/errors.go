package trace

import "github.com/cockroachdb/errors"

var (
	// ErrSyntax indicates a malformed trace line.
	ErrSyntax = errors.New("trace: syntax error")

	// ErrMismatch indicates that the allocator returned a result that breaks
	// the allocation contract during replay.
	ErrMismatch = errors.New("trace: allocator misbehaved")
)
