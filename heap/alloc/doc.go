// Package alloc implements a general-purpose dynamic memory allocator over a
// single growable arena.
//
// # Overview
//
// The allocator manages one append-only region supplied by an arena.Provider
// and services allocation, deallocation, resize and zeroed-allocation
// requests. Free space is tracked with segregated, doubly linked free lists
// whose links are 32-bit arena-relative offsets stored inside the free blocks
// themselves, so the index owns no memory of its own.
//
// # Allocator Interface
//
//   - Alloc(n): allocate a block with at least n payload bytes
//   - Free(p): return a block, coalescing it with free neighbours
//   - Realloc(p, n): resize in place when possible, otherwise move
//   - Calloc(count, size): allocate and zero
//   - CheckHeap(tag): audit every structural invariant
//
// # Usage Example
//
//	a, err := alloc.New(arena.NewSlice(nil), nil)
//	if err != nil {
//	    return err
//	}
//
//	p, err := a.Alloc(256)
//	if err != nil {
//	    return err
//	}
//	copy(a.Bytes(p), "hello")
//
//	p, err = a.Realloc(p, 1024)
//	if err != nil {
//	    return err
//	}
//
//	_ = a.Free(p)
//
// # Block Layout
//
// Every block starts with a 4-byte header packing its size with an allocated
// bit and a previous-allocated bit (see internal/format). Allocated blocks
// carry no footer; free blocks mirror the header in a footer so the next
// block can find them when coalescing backward. The smallest block is 16
// bytes: header, two links and footer.
//
// # Size Classes
//
// The allocator maintains 12 segregated free-lists:
//
//	Class 0:      16 bytes
//	Class 1:  17 -    32 bytes
//	Class 2:  33 -    64 bytes
//	Class 3:  65 -   128 bytes
//	Class 4: 129 -   256 bytes
//	Class 5: 257 -   512 bytes
//	Class 6: 513 -  1024 bytes
//	Class 7:   1 -     2 KB
//	Class 8:   2 -     4 KB
//	Class 9:   4 -     8 KB
//	Class 10:  8 -    16 KB
//	Class 11: 16+       KB (large blocks)
//
// Freed blocks are pushed at the head of their class. The fit search starts
// at the request's class, returns an exact match immediately and otherwise
// keeps the smallest oversized block seen, inspecting only a few entries per
// class.
//
// # Placement
//
// When a block is split, the allocator alternates between carving the
// allocation from the front and from the back of the free block so neither
// end of a free region is systematically consumed first. The free block that
// borders the end of the arena is always carved from the front, keeping the
// arena tail in one piece.
//
// # Arena Growth
//
// On a miss the arena grows by max(request, Config.ChunkSize). A provider that
// refuses to grow yields ErrOutOfMemory and leaves the heap untouched.
//
// # Consistency Checks
//
// CheckHeap walks the arena and the free lists independently and cross-checks
// them. Build with -tags debug_alloc, or set Config.VerifyEachOp, to run the
// check after every public mutating call; a failure is fatal.
//
// The test suite runs under both builds:
//
//	go test ./heap/alloc/...
//	go test -tags debug_alloc ./heap/alloc/...
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally.
//
// # Related Packages
//
//   - github.com/joshuapare/memkit/heap/arena: arena providers
//   - github.com/joshuapare/memkit/heap/trace: trace replay and analysis
package alloc
