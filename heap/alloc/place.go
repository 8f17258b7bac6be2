package alloc

import "github.com/joshuapare/memkit/internal/format"

// place marks asize bytes of the free block at bp as allocated and returns
// the payload offset of the allocated piece. The block is taken off its free
// list first.
//
// When the leftover is at least MinBlockSize the block is split. Splits
// alternate between carving the allocation from the front and from the back
// of the block. The wilderness block (the one bordering the epilogue) is
// always carved from the front so the remainder stays adjacent to the arena
// break and future growth coalesces with it.
func (a *Allocator) place(bp, asize uint32) uint32 {
	mem := a.mem
	h := format.ReadHeader(mem, bp)
	a.removeFree(bp)

	rem := h.Size - asize
	if rem < format.MinBlockSize {
		format.PutHeader(mem, bp, format.Header{Size: h.Size, Allocated: true, PrevAllocated: h.PrevAllocated})
		format.SetPrevAllocated(mem, bp+h.Size, true)
		return bp
	}

	a.stats.SplitCount++
	wilderness := format.ReadHeader(mem, format.NextBlock(mem, bp)).Size == 0
	back := a.carveBack && !wilderness
	a.carveBack = !a.carveBack

	if !back {
		format.PutHeader(mem, bp, format.Header{Size: asize, Allocated: true, PrevAllocated: h.PrevAllocated})
		free := bp + asize
		format.PutFree(mem, free, format.Header{Size: rem, PrevAllocated: true})
		a.insertFree(free)
		return bp
	}

	// Remainder stays at bp; the allocation takes the tail.
	format.PutFree(mem, bp, format.Header{Size: rem, PrevAllocated: h.PrevAllocated})
	a.insertFree(bp)
	ab := bp + rem
	format.PutHeader(mem, ab, format.Header{Size: asize, Allocated: true})
	format.SetPrevAllocated(mem, ab+asize, true)
	return ab
}
