package alloc

import (
	"fmt"
	"io"

	"github.com/joshuapare/memkit/internal/format"
)

// Stats holds allocator counters for testing and instrumentation.
type Stats struct {
	AllocCalls       int   // Total Alloc() calls, including zero-byte requests
	AllocFastPath    int   // Allocations served from the free lists
	AllocSlowPath    int   // Allocations that required extending the arena
	FreeCalls        int   // Total Free() calls
	ReallocCalls     int   // Total Realloc() calls
	CallocCalls      int   // Total Calloc() calls
	BytesAllocated   int64 // Block bytes handed out (including headers)
	BytesFreed       int64 // Block bytes returned
	GrowCalls        int   // Successful arena extensions
	GrowBytes        int64 // Bytes added by arena extensions
	GrowFailures     int   // Arena extensions refused by the provider
	SplitCount       int   // Free blocks split by place
	CoalesceForward  int   // Merges with the following block
	CoalesceBackward int   // Merges with the preceding block
	InPlaceGrow      int   // Reallocs satisfied by absorbing the successor
	InPlaceShrink    int   // Reallocs that split off a free tail
	ReallocMoves     int   // Reallocs that copied to a new block
	FitProbes        int   // Free-list entries inspected by the fit search
	ListInserts      int   // Free-list pushes
	ListRemoves      int   // Free-list unlinks
}

// Stats returns a snapshot of the allocator counters.
func (a *Allocator) Stats() Stats {
	return a.stats
}

// PrintStats writes a human-readable dump of the counters to w.
func (a *Allocator) PrintStats(w io.Writer) {
	s := a.stats
	fmt.Fprintf(w, "=== ALLOCATOR STATISTICS ===\n")
	fmt.Fprintf(w, "Grow calls:         %d (%d KB added, %d refused)\n", s.GrowCalls, s.GrowBytes/1024, s.GrowFailures)
	fmt.Fprintf(w, "Alloc calls:        %d (fast: %d, slow: %d)\n", s.AllocCalls, s.AllocFastPath, s.AllocSlowPath)
	fmt.Fprintf(w, "Free calls:         %d\n", s.FreeCalls)
	fmt.Fprintf(w, "Realloc calls:      %d (grow: %d, shrink: %d, moved: %d)\n",
		s.ReallocCalls, s.InPlaceGrow, s.InPlaceShrink, s.ReallocMoves)
	fmt.Fprintf(w, "Calloc calls:       %d\n", s.CallocCalls)
	fmt.Fprintf(w, "Bytes allocated:    %d\n", s.BytesAllocated)
	fmt.Fprintf(w, "Bytes freed:        %d\n", s.BytesFreed)
	fmt.Fprintf(w, "Block splits:       %d\n", s.SplitCount)
	fmt.Fprintf(w, "Coalesce fwd:       %d\n", s.CoalesceForward)
	fmt.Fprintf(w, "Coalesce back:      %d\n", s.CoalesceBackward)
	fmt.Fprintf(w, "Fit probes:         %d\n", s.FitProbes)
	fmt.Fprintf(w, "List inserts:       %d\n", s.ListInserts)
	fmt.Fprintf(w, "List removes:       %d\n", s.ListRemoves)
}

// Block describes one block found by Walk.
type Block struct {
	Ptr       Ptr  // Payload offset
	Size      int  // Block size including the header
	Allocated bool // Allocation state
}

// Walk calls fn for every block between the prologue and the epilogue in
// address order. It stops at the first error fn returns. Walk trusts the
// heap; run CheckHeap first when corruption is possible.
func (a *Allocator) Walk(fn func(Block) error) error {
	if a.prologue == 0 {
		return nil
	}
	end := uint32(len(a.mem))
	for bp := a.prologue + format.PrologueSize; bp < end; {
		h := format.ReadHeader(a.mem, bp)
		if h.Size == 0 {
			break
		}
		if err := fn(Block{Ptr: Ptr(bp), Size: int(h.Size), Allocated: h.Allocated}); err != nil {
			return err
		}
		bp = format.NextBlock(a.mem, bp)
	}
	return nil
}

// Summary describes the current heap layout.
type Summary struct {
	HeapSize        int // Arena bytes in use by the allocator
	Blocks          int // Regular blocks (sentinels excluded)
	AllocatedBlocks int
	FreeBlocks      int
	AllocatedBytes  int // Sum of allocated block sizes
	FreeBytes       int // Sum of free block sizes
	LargestFree     int // Largest free block size
	ClassCounts     [numClasses]int
}

// Utilization returns the fraction of the heap held by allocated blocks.
func (s Summary) Utilization() float64 {
	if s.HeapSize == 0 {
		return 0
	}
	return float64(s.AllocatedBytes) / float64(s.HeapSize)
}

// Summary walks the heap and the free lists.
func (a *Allocator) Summary() Summary {
	s := Summary{HeapSize: len(a.mem)}
	_ = a.Walk(func(b Block) error {
		s.Blocks++
		if b.Allocated {
			s.AllocatedBlocks++
			s.AllocatedBytes += b.Size
			return nil
		}
		s.FreeBlocks++
		s.FreeBytes += b.Size
		s.LargestFree = max(s.LargestFree, b.Size)
		return nil
	})
	for sc, head := range a.heads {
		for l := head; l != format.NilLink; l = format.NextLink(a.mem, uint32(l)) {
			s.ClassCounts[sc]++
		}
	}
	return s
}

// ClassCount returns the number of free blocks on the list that holds
// blocks of the given size.
func (a *Allocator) ClassCount(blockSize int) int {
	n := 0
	for l := a.heads[sizeClass(uint32(blockSize))]; l != format.NilLink; l = format.NextLink(a.mem, uint32(l)) {
		n++
	}
	return n
}

// BlockSize returns the block size the allocator uses for an n-byte request.
func BlockSize(n int) int {
	return int(format.AdjustedSize(n))
}

// NumClasses is the number of segregated free lists.
const NumClasses = numClasses

// SizeClass returns the free-list index for a block of the given size.
func SizeClass(blockSize int) int {
	return sizeClass(uint32(blockSize))
}

// ClassLimit returns the largest block size held by class c.
func ClassLimit(c int) int {
	return int(classLimit(c))
}
