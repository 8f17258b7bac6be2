// Package arena provides the contiguous, append-only memory regions that the
// allocator in heap/alloc carves blocks out of.
//
// # Overview
//
// A Provider owns one byte range [0, brk) that only ever grows. Growth never
// relocates the range, so payload slices handed out by the allocator stay
// valid for the provider's lifetime. Addresses are byte offsets from the start
// of the range; callers never see absolute addresses.
//
// # Implementations
//
// Slice: a portable provider backed by a single preallocated Go byte slice.
// The capacity is fixed at construction, growth just advances the break.
//
// Mmap: reserves the full capacity as one anonymous private mapping (on
// linux and darwin) and advances the break inside it; the kernel commits pages
// lazily on first touch. Other platforms fall back to Slice.
//
// # Thread Safety
//
// Providers are not thread-safe. The allocator is single-threaded by contract.
package arena

// DefaultMaxSize matches the classic 20 MiB simulated heap.
const DefaultMaxSize = 20 << 20

// maxArenaSize caps the region at 2GB so every offset fits a 32-bit link and
// an int on 32-bit platforms.
const maxArenaSize = 0x7FFFFFF8

// Provider supplies a contiguous, append-only region of raw memory.
type Provider interface {
	// Grow extends the region by n bytes and returns the previous end offset.
	// A provider that cannot grow returns ErrExhausted and leaves the region
	// unchanged.
	Grow(n int) (int, error)

	// Low returns the offset of the lowest byte of the region (always 0).
	Low() int

	// High returns the offset of the highest byte of the region, or -1 when
	// the region is empty.
	High() int

	// Bytes returns the region [Low, High]. The backing array never moves.
	Bytes() []byte
}

// Options configures a provider.
type Options struct {
	// MaxSize is the largest the region may grow to, in bytes.
	// Zero means DefaultMaxSize.
	MaxSize int
}

func (o *Options) maxSize() int {
	if o == nil || o.MaxSize <= 0 {
		return DefaultMaxSize
	}
	if o.MaxSize > maxArenaSize {
		return maxArenaSize
	}
	return o.MaxSize
}
