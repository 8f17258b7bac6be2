//go:build linux || darwin

package arena

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// Mmap is a Provider backed by one anonymous private mapping. The whole
// capacity is reserved up front so the region never moves; pages are
// committed by the kernel when first written.
type Mmap struct {
	data []byte
	brk  int
}

var _ Provider = (*Mmap)(nil)

// NewMmap reserves opts.MaxSize bytes of address space.
func NewMmap(opts *Options) (*Mmap, error) {
	size := opts.maxSize()
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errors.Wrapf(err, "arena: mmap reserve of %d bytes failed", size)
	}
	return &Mmap{data: data}, nil
}

// Grow advances the break by n bytes.
func (m *Mmap) Grow(n int) (int, error) {
	if m.data == nil {
		return 0, ErrClosed
	}
	return grow(&m.brk, len(m.data), n)
}

// Low returns 0.
func (m *Mmap) Low() int { return 0 }

// High returns the offset of the last byte in use.
func (m *Mmap) High() int { return m.brk - 1 }

// Bytes returns the in-use part of the mapping.
func (m *Mmap) Bytes() []byte {
	if m.data == nil {
		return nil
	}
	return m.data[:m.brk:m.brk]
}

// Close unmaps the region. Slices previously returned by Bytes become invalid.
func (m *Mmap) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		err = nil
	}
	m.data = nil
	m.brk = 0
	return err
}
