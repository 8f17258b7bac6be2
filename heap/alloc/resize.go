package alloc

import (
	"context"

	"golang.org/x/exp/slog"

	"github.com/joshuapare/memkit/internal/format"
)

// Realloc resizes the block at p to hold at least n bytes and returns the
// (possibly moved) pointer.
//
// Realloc(Nil, n) behaves as Alloc(n). Realloc(p, 0) frees p and returns Nil.
// Shrinking and growing into a free successor happen in place; otherwise the
// payload is copied to a new block and p is freed. On failure p is left
// untouched and still owned by the caller.
func (a *Allocator) Realloc(p Ptr, n int) (Ptr, error) {
	a.stats.ReallocCalls++

	if p == Nil {
		return a.Alloc(n)
	}
	if n == 0 {
		return Nil, a.Free(p)
	}
	asize, err := adjust(n)
	if err != nil {
		return Nil, err
	}
	if err := a.validPtr(p); err != nil {
		return Nil, err
	}

	bp := uint32(p)
	h := format.ReadHeader(a.mem, bp)

	if asize <= h.Size {
		a.shrink(bp, h, asize)
		a.debugValidate("Realloc")
		return p, nil
	}
	if a.growInPlace(bp, h, asize) {
		a.debugValidate("Realloc")
		return p, nil
	}

	np, err := a.Alloc(n)
	if err != nil {
		return Nil, err
	}
	// Alloc may have grown the arena; a.mem is current again here.
	copy(a.mem[np:], a.mem[bp:bp+min(payloadSize(h.Size), uint32(n))])
	if err := a.Free(p); err != nil {
		return Nil, err
	}
	a.stats.ReallocMoves++

	if a.logAlloc {
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "realloc moved",
			slog.Int("from", int(bp)),
			slog.Int("to", int(np)),
			slog.Int("oldSize", int(h.Size)),
			slog.Int("request", n))
	}
	return np, nil
}

// shrink truncates the block at bp to asize bytes when the tail is large
// enough to form a free block, merging the tail with a free successor.
func (a *Allocator) shrink(bp uint32, h format.Header, asize uint32) {
	rem := h.Size - asize
	if rem < format.MinBlockSize {
		return
	}
	format.PutHeader(a.mem, bp, format.Header{Size: asize, Allocated: true, PrevAllocated: h.PrevAllocated})
	tail := bp + asize
	format.PutFree(a.mem, tail, format.Header{Size: rem, PrevAllocated: true})
	a.coalesce(tail)
	a.stats.InPlaceShrink++
}

// growInPlace extends the block at bp into its successor when that block is
// free and the two together hold asize bytes. Any leftover of at least
// MinBlockSize is split off and freed again.
func (a *Allocator) growInPlace(bp uint32, h format.Header, asize uint32) bool {
	mem := a.mem
	next := bp + h.Size
	nh := format.ReadHeader(mem, next)
	if nh.Allocated || h.Size+nh.Size < asize {
		return false
	}

	a.removeFree(next)
	total := h.Size + nh.Size
	rem := total - asize

	if rem >= format.MinBlockSize {
		format.PutHeader(mem, bp, format.Header{Size: asize, Allocated: true, PrevAllocated: h.PrevAllocated})
		tail := bp + asize
		format.PutFree(mem, tail, format.Header{Size: rem, PrevAllocated: true})
		a.insertFree(tail)
	} else {
		format.PutHeader(mem, bp, format.Header{Size: total, Allocated: true, PrevAllocated: h.PrevAllocated})
		format.SetPrevAllocated(mem, bp+total, true)
	}
	a.stats.InPlaceGrow++
	return true
}
