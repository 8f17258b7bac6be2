package alloc

import (
	"fmt"

	"golang.org/x/exp/slog"

	"github.com/joshuapare/memkit/internal/format"
)

// ConsistencyError describes the first invariant violation found by CheckHeap.
// It matches ErrCorrupt under errors.Is.
type ConsistencyError struct {
	Check   string // Which pass failed ("sentinel", "walk", "freelist", "count")
	Message string // Human-readable description
	Offset  int    // Payload offset of the offending block (-1 if N/A)
	Tag     string // Caller-supplied location
}

func (e *ConsistencyError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("heap check [%s] %s at offset 0x%X: %s", e.Tag, e.Check, e.Offset, e.Message)
	}
	return fmt.Sprintf("heap check [%s] %s: %s", e.Tag, e.Check, e.Message)
}

// Is reports whether target is ErrCorrupt.
func (e *ConsistencyError) Is(target error) bool {
	return target == ErrCorrupt
}

// CheckHeap audits the heap and returns a *ConsistencyError describing the
// first violated invariant, or nil. It never modifies the heap. An allocator
// that has not been initialized yet is trivially consistent.
//
// Passes, in order:
//   - sentinel: prologue and epilogue words
//   - walk: every block in address order (alignment, bounds, size, boundary
//     tags, prev-allocated bits, no adjacent free blocks)
//   - freelist: every list entry (free, in bounds, correct class, symmetric links)
//   - count: free blocks seen by the walk equal entries on the lists
func (a *Allocator) CheckHeap(tag string) error {
	if a.prologue == 0 {
		return nil
	}
	c := checker{a: a, mem: a.mem, tag: tag, lo: a.arena.Low(), hi: a.arena.High()}
	if err := c.sentinels(); err != nil {
		return err
	}
	walked, blocks, err := c.walk()
	if err != nil {
		return err
	}
	listed, err := c.lists(blocks)
	if err != nil {
		return err
	}
	if walked != listed {
		return c.fail("count", -1, "%d free blocks in heap, %d on free lists", walked, listed)
	}
	return nil
}

// MustCheckHeap runs CheckHeap and hands any violation to Config.OnFatal
// after logging it. With the default OnFatal the process exits.
func (a *Allocator) MustCheckHeap(tag string) {
	if err := a.CheckHeap(tag); err != nil {
		a.logger.Error("heap consistency check failed",
			slog.String("tag", tag),
			slog.Any("error", err))
		a.cfg.OnFatal(err)
	}
}

type checker struct {
	a      *Allocator
	mem    []byte
	tag    string
	lo, hi int
}

func (c *checker) fail(check string, off int, msg string, args ...any) error {
	return &ConsistencyError{Check: check, Message: fmt.Sprintf(msg, args...), Offset: off, Tag: c.tag}
}

// epilogue returns the payload offset of the epilogue block.
func (c *checker) epilogue() uint32 {
	return uint32(len(c.mem))
}

func (c *checker) sentinels() error {
	p := c.a.prologue
	h := format.ReadHeader(c.mem, p)
	if h.Size != format.PrologueSize || !h.Allocated {
		return c.fail("sentinel", int(p), "bad prologue header (size %d, allocated %t)", h.Size, h.Allocated)
	}
	if format.ReadWord(c.mem, p) != format.ReadU32(c.mem, format.FooterOffset(p, format.PrologueSize)) {
		return c.fail("sentinel", int(p), "prologue header does not match footer")
	}

	e := c.epilogue()
	eh := format.ReadHeader(c.mem, e)
	if eh.Size != 0 || !eh.Allocated {
		return c.fail("sentinel", int(e), "bad epilogue header (size %d, allocated %t)", eh.Size, eh.Allocated)
	}
	return nil
}

// walk visits every block between the prologue and the epilogue. It returns
// the number of free blocks and the total number of blocks.
func (c *checker) walk() (int, int, error) {
	mem := c.mem
	epi := c.epilogue()
	free, blocks := 0, 0
	prevAlloc := true // the prologue

	bp := c.a.prologue + format.PrologueSize
	for bp < epi {
		if !format.IsAligned(bp, format.Alignment) {
			return 0, 0, c.fail("walk", int(bp), "payload not %d-byte aligned", format.Alignment)
		}
		if int(format.HeaderOffset(bp)) < c.lo {
			return 0, 0, c.fail("walk", int(bp), "block below arena low 0x%X", c.lo)
		}

		h := format.ReadHeader(mem, bp)
		if h.Size < format.MinBlockSize || h.Size%format.Alignment != 0 {
			return 0, 0, c.fail("walk", int(bp), "bad block size %d", h.Size)
		}
		if end := int(bp) + int(h.Size); end > c.hi+1 {
			return 0, 0, c.fail("walk", int(bp), "block of %d bytes extends past arena high 0x%X", h.Size, c.hi)
		}
		if h.PrevAllocated != prevAlloc {
			return 0, 0, c.fail("walk", int(bp), "prev-allocated bit is %t, previous block allocated is %t", h.PrevAllocated, prevAlloc)
		}

		if !h.Allocated {
			if format.ReadWord(mem, bp) != format.ReadFooterWord(mem, bp) {
				return 0, 0, c.fail("walk", int(bp), "header 0x%08X does not match footer 0x%08X",
					format.ReadWord(mem, bp), format.ReadFooterWord(mem, bp))
			}
			if !prevAlloc {
				return 0, 0, c.fail("walk", int(bp), "adjacent free blocks escaped coalescing")
			}
			free++
		}

		blocks++
		prevAlloc = h.Allocated
		bp += h.Size
	}

	if bp != epi {
		return 0, 0, c.fail("walk", int(bp), "walk overran epilogue at 0x%X", epi)
	}
	if format.ReadHeader(mem, epi).PrevAllocated != prevAlloc {
		return 0, 0, c.fail("walk", int(epi), "epilogue prev-allocated bit is stale")
	}
	return free, blocks, nil
}

// lists walks each size class. More entries than blocks in the heap means
// a cycle.
func (c *checker) lists(blocks int) (int, error) {
	mem := c.mem
	lo := c.a.prologue + format.PrologueSize
	epi := c.epilogue()
	total := 0

	for sc, head := range c.a.heads {
		prev := format.NilLink
		for l := head; l != format.NilLink; l = format.NextLink(mem, uint32(l)) {
			bp := uint32(l)
			if bp < lo || bp >= epi || !format.IsAligned(bp, format.Alignment) {
				return 0, c.fail("freelist", int(bp), "class %d links outside heap", sc)
			}
			h := format.ReadHeader(mem, bp)
			if h.Allocated {
				return 0, c.fail("freelist", int(bp), "allocated block on class %d", sc)
			}
			if got := sizeClass(h.Size); got != sc {
				return 0, c.fail("freelist", int(bp), "block of %d bytes belongs to class %d, found on class %d", h.Size, got, sc)
			}
			if p := format.PrevLink(mem, bp); p != prev {
				return 0, c.fail("freelist", int(bp), "prev link 0x%X, expected 0x%X", uint32(p), uint32(prev))
			}

			total++
			if total > blocks {
				return 0, c.fail("freelist", int(bp), "cycle in class %d", sc)
			}
			prev = l
		}
	}
	return total, nil
}
