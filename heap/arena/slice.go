package arena

import "github.com/cockroachdb/errors"

// Slice is a Provider backed by one preallocated byte slice.
type Slice struct {
	buf []byte
	brk int
}

var _ Provider = (*Slice)(nil)

// NewSlice creates a slice-backed provider with room for opts.MaxSize bytes.
func NewSlice(opts *Options) *Slice {
	return &Slice{buf: make([]byte, opts.maxSize())}
}

// Grow advances the break by n bytes.
func (s *Slice) Grow(n int) (int, error) {
	return grow(&s.brk, len(s.buf), n)
}

// Low returns 0.
func (s *Slice) Low() int { return 0 }

// High returns the offset of the last byte in use.
func (s *Slice) High() int { return s.brk - 1 }

// Bytes returns the in-use part of the region.
func (s *Slice) Bytes() []byte { return s.buf[:s.brk:s.brk] }

// Cap returns the maximum size the region can grow to.
func (s *Slice) Cap() int { return len(s.buf) }

// grow implements the shared break arithmetic for both providers.
func grow(brk *int, capacity, n int) (int, error) {
	if n < 0 {
		return 0, ErrNegativeGrow
	}
	if n > capacity-*brk {
		return 0, errors.Wrapf(ErrExhausted, "grow %d bytes at break %d (capacity %d)", n, *brk, capacity)
	}
	prev := *brk
	*brk += n
	return prev, nil
}
