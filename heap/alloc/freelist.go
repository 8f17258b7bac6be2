package alloc

import "github.com/joshuapare/memkit/internal/format"

// insertFree pushes the free block at bp onto the head of its size class.
// O(1) operation; recently freed blocks are reused first.
func (a *Allocator) insertFree(bp uint32) {
	mem := a.mem
	sc := sizeClass(format.ReadHeader(mem, bp).Size)
	head := a.heads[sc]

	format.SetNextLink(mem, bp, head)
	format.SetPrevLink(mem, bp, format.NilLink)
	if head != format.NilLink {
		format.SetPrevLink(mem, uint32(head), format.Link(bp))
	}
	a.heads[sc] = format.Link(bp)
	a.stats.ListInserts++
}

// removeFree unlinks the free block at bp from its size class.
// O(1) operation using the block's own links. The header must still hold the
// size the block was inserted with.
func (a *Allocator) removeFree(bp uint32) {
	mem := a.mem
	sc := sizeClass(format.ReadHeader(mem, bp).Size)
	prev := format.PrevLink(mem, bp)
	next := format.NextLink(mem, bp)

	if prev != format.NilLink {
		format.SetNextLink(mem, uint32(prev), next)
	} else {
		a.heads[sc] = next
	}
	if next != format.NilLink {
		format.SetPrevLink(mem, uint32(next), prev)
	}
	a.stats.ListRemoves++
}

// findFit searches the segregated lists for a free block of at least asize
// bytes, starting at asize's own class. Within a class an exact match wins
// immediately; otherwise the smallest oversized block seen is kept, the
// search ends early once slack is at most goodFitSlack, and at most
// maxFitScan entries are inspected once a candidate exists.
func (a *Allocator) findFit(asize uint32) (uint32, bool) {
	mem := a.mem
	for sc := sizeClass(asize); sc < numClasses; sc++ {
		var best, bestSize uint32
		scanned := 0

		for l := a.heads[sc]; l != format.NilLink; l = format.NextLink(mem, uint32(l)) {
			bp := uint32(l)
			size := format.ReadHeader(mem, bp).Size
			a.stats.FitProbes++

			if size == asize {
				return bp, true
			}
			if size > asize && (best == 0 || size < bestSize) {
				best, bestSize = bp, size
				if size-asize <= goodFitSlack {
					return bp, true
				}
			}

			scanned++
			if scanned >= maxFitScan && best != 0 {
				break
			}
		}

		if best != 0 {
			return best, true
		}
	}
	return 0, false
}
