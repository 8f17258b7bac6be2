package alloc

import (
	"context"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"

	"github.com/joshuapare/memkit/heap/arena"
	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/format"
)

const (
	// goodFitSlack ends the fit search early when a candidate wastes at most
	// this many bytes.
	goodFitSlack = 32

	// maxFitScan bounds how many entries of one class are inspected once a
	// candidate has been found.
	maxFitScan = 3

	// initialSize covers the padding word, the prologue and the epilogue header.
	initialSize = 4 * format.WordSize
)

// Allocator is a segregated-fit allocator with boundary-tag coalescing.
//   - 12 size classes with LIFO insertion
//   - approximate best fit with a bounded scan
//   - eager coalescing on every free
//   - alternating front/back placement when splitting
type Allocator struct {
	arena arena.Provider
	mem   []byte // arena.Bytes(), refreshed after every grow

	cfg      Config
	logger   *slog.Logger
	logAlloc bool

	// Free list heads per size class (0 = empty list).
	heads [numClasses]format.Link

	// Payload offset of the prologue block; 0 until the arena is initialized.
	prologue uint32

	// carveBack selects the back of the free block for the next split.
	// Flipped on every split.
	carveBack bool

	stats Stats
}

// New creates an allocator over p. The arena is not touched until the first
// request that needs it.
//
// Parameters:
//   - p: The arena provider to allocate from
//   - cfg: Allocator configuration (use nil for DefaultConfig)
func New(p arena.Provider, cfg *Config) (*Allocator, error) {
	if p == nil {
		return nil, ErrNoArena
	}
	if cfg == nil {
		cfg = &DefaultConfig
	}
	c := cfg.normalized()
	return &Allocator{
		arena:    p,
		cfg:      c,
		logger:   c.Logger,
		logAlloc: c.Logger.Enabled(context.Background(), slog.LevelDebug),
	}, nil
}

// Alloc returns a block with at least n bytes of 8-byte aligned payload.
// A zero-byte request returns Nil without touching the heap.
func (a *Allocator) Alloc(n int) (Ptr, error) {
	a.stats.AllocCalls++

	if n == 0 {
		return Nil, nil
	}
	asize, err := adjust(n)
	if err != nil {
		return Nil, err
	}
	if err := a.init(); err != nil {
		return Nil, err
	}

	bp, ok := a.findFit(asize)
	if ok {
		a.stats.AllocFastPath++
	} else {
		bp, err = a.extend(max(asize, a.cfg.ChunkSize))
		if err != nil {
			if a.logAlloc {
				a.logger.LogAttrs(context.Background(), slog.LevelDebug, "alloc failed",
					slog.Int("request", n),
					slog.Int("blockSize", int(asize)),
					slog.Any("error", err))
			}
			return Nil, err
		}
		a.stats.AllocSlowPath++
	}

	bp = a.place(bp, asize)
	a.stats.BytesAllocated += int64(format.ReadHeader(a.mem, bp).Size)
	a.debugValidate("Alloc")
	return Ptr(bp), nil
}

// Free returns the block at p to the free lists, merging it with any free
// neighbours. Freeing Nil is a no-op.
func (a *Allocator) Free(p Ptr) error {
	a.stats.FreeCalls++

	if p == Nil {
		return nil
	}
	if err := a.validPtr(p); err != nil {
		return err
	}

	bp := uint32(p)
	h := format.ReadHeader(a.mem, bp)
	a.stats.BytesFreed += int64(h.Size)
	format.PutFree(a.mem, bp, format.Header{Size: h.Size, PrevAllocated: h.PrevAllocated})
	a.coalesce(bp)

	a.debugValidate("Free")
	return nil
}

// Calloc allocates room for count elements of size bytes each and zeroes it.
func (a *Allocator) Calloc(count, size int) (Ptr, error) {
	a.stats.CallocCalls++

	if count < 0 || size < 0 {
		return Nil, ErrInvalidSize
	}
	n, ok := buf.MulOverflowSafe(count, size)
	if !ok {
		return Nil, errors.Wrapf(ErrTooLarge, "%d elements of %d bytes", count, size)
	}

	p, err := a.Alloc(n)
	if err != nil || p == Nil {
		return p, err
	}
	clear(a.mem[p : int(p)+n])

	a.debugValidate("Calloc")
	return p, nil
}

// Bytes returns the payload of the live block at p, or nil when p is Nil or
// does not reference an allocated block. The slice stays valid until the
// block is freed or moved by Realloc.
func (a *Allocator) Bytes(p Ptr) []byte {
	if p == Nil || a.validPtr(p) != nil {
		return nil
	}
	bp := uint32(p)
	end := bp + payloadSize(format.ReadHeader(a.mem, bp).Size)
	return a.mem[bp:end:end]
}

// UsableSize returns the payload capacity of the live block at p.
func (a *Allocator) UsableSize(p Ptr) int {
	return len(a.Bytes(p))
}

// ============================================================================
// Internal helpers
// ============================================================================

// adjust converts a payload request into a block size.
func adjust(n int) (uint32, error) {
	if n < 0 {
		return 0, ErrInvalidSize
	}
	asize := format.AdjustedSize(n)
	if asize > format.MaxBlockSize {
		return 0, errors.Wrapf(ErrTooLarge, "%d bytes", n)
	}
	return uint32(asize), nil
}

// payloadSize returns the payload capacity of an allocated block.
func payloadSize(blockSize uint32) uint32 {
	return blockSize - format.HeaderSize
}

// init lays out the padding word, prologue and epilogue on first use and
// extends the arena by one chunk.
//
//	offset 0   padding (never a payload, so link 0 means "none")
//	offset 4   prologue header  (8 | alloc | prev alloc)
//	offset 8   prologue footer
//	offset 12  epilogue header  (0 | alloc | prev alloc)
func (a *Allocator) init() error {
	if a.prologue != 0 {
		return nil
	}

	base, err := a.arena.Grow(initialSize)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "alloc: initialize arena"), ErrOutOfMemory)
	}
	if !format.IsAligned(base, format.Alignment) {
		return errors.Newf("alloc: arena break %d is not %d-byte aligned", base, format.Alignment)
	}
	a.refresh()

	b := uint32(base)
	format.PutU32(a.mem, b, 0)
	prologue := b + format.DoubleWordSize
	format.PutHeader(a.mem, prologue, format.Header{Size: format.PrologueSize, Allocated: true, PrevAllocated: true})
	format.PutU32(a.mem, format.FooterOffset(prologue, format.PrologueSize),
		format.Header{Size: format.PrologueSize, Allocated: true, PrevAllocated: true}.Pack())
	format.PutHeader(a.mem, prologue+format.PrologueSize, format.Header{Allocated: true, PrevAllocated: true})
	a.prologue = prologue

	if _, err := a.extend(a.cfg.ChunkSize); err != nil {
		return err
	}
	a.debugValidate("init")
	return nil
}

// refresh re-slices the cached arena view after growth.
func (a *Allocator) refresh() {
	a.mem = a.arena.Bytes()
}

// extend grows the arena by size bytes, turns the new span into a free block
// whose header replaces the old epilogue, writes a new epilogue and coalesces
// the span with a trailing free block. Returns the resulting free block.
func (a *Allocator) extend(size uint32) (uint32, error) {
	size = format.AlignUp(size, format.Alignment)

	prev, err := a.arena.Grow(int(size))
	if err != nil {
		a.stats.GrowFailures++
		if a.logAlloc {
			a.logger.LogAttrs(context.Background(), slog.LevelDebug, "arena exhausted",
				slog.Int("grow", int(size)),
				slog.Int("high", a.arena.High()))
		}
		return 0, errors.Mark(errors.Wrapf(err, "alloc: extend arena by %d bytes", size), ErrOutOfMemory)
	}
	a.refresh()
	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(size)

	// The old epilogue header sits just before the new span and becomes its header.
	bp := uint32(prev)
	epilogue := format.ReadHeader(a.mem, bp)
	format.PutFree(a.mem, bp, format.Header{Size: size, PrevAllocated: epilogue.PrevAllocated})
	format.PutHeader(a.mem, bp+size, format.Header{Allocated: true})

	if a.logAlloc {
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "arena extended",
			slog.Int("grow", int(size)),
			slog.Int("high", a.arena.High()),
			slog.Int("growCalls", a.stats.GrowCalls))
	}
	return a.coalesce(bp), nil
}

// coalesce merges the free block at bp with free neighbours, inserts the
// result at the head of its class and clears the successor's prev-allocated
// bit. The block at bp must already carry free header and footer words and
// must not be on a free list.
func (a *Allocator) coalesce(bp uint32) uint32 {
	mem := a.mem
	h := format.ReadHeader(mem, bp)
	size := h.Size
	prevAlloc := h.PrevAllocated

	next := bp + size
	nh := format.ReadHeader(mem, next)

	if !prevAlloc {
		prev := format.PrevBlock(mem, bp)
		ph := format.ReadHeader(mem, prev)
		a.removeFree(prev)
		size += ph.Size
		bp = prev
		prevAlloc = ph.PrevAllocated
		a.stats.CoalesceBackward++
	}

	if !nh.Allocated {
		a.removeFree(next)
		size += nh.Size
		a.stats.CoalesceForward++
	}

	format.PutFree(mem, bp, format.Header{Size: size, PrevAllocated: prevAlloc})
	a.insertFree(bp)
	format.SetPrevAllocated(mem, bp+size, false)
	return bp
}

// validPtr rejects pointers that cannot reference a live allocated block.
func (a *Allocator) validPtr(p Ptr) error {
	bp := uint32(p)
	if a.prologue == 0 {
		return errors.Wrapf(ErrBadPtr, "0x%X: heap not initialized", bp)
	}
	if !format.IsAligned(bp, format.Alignment) || bp <= a.prologue || int(bp) >= len(a.mem) {
		return errors.Wrapf(ErrBadPtr, "0x%X: outside heap", bp)
	}
	h := format.ReadHeader(a.mem, bp)
	if !h.Allocated || h.Size < format.MinBlockSize || !buf.Has(a.mem, int(bp), int(h.Size)) {
		return errors.Wrapf(ErrBadPtr, "0x%X: not an allocated block", bp)
	}
	return nil
}
