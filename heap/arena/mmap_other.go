//go:build !linux && !darwin

package arena

// Mmap falls back to a slice-backed region where anonymous mappings are not
// available through golang.org/x/sys/unix.
type Mmap struct {
	Slice
	closed bool
}

var _ Provider = (*Mmap)(nil)

// NewMmap allocates opts.MaxSize bytes on the Go heap.
func NewMmap(opts *Options) (*Mmap, error) {
	return &Mmap{Slice: *NewSlice(opts)}, nil
}

// Grow advances the break by n bytes.
func (m *Mmap) Grow(n int) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	return m.Slice.Grow(n)
}

// Close releases the region.
func (m *Mmap) Close() error {
	m.closed = true
	m.buf = nil
	m.brk = 0
	return nil
}
