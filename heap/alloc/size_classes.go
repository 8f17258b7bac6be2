package alloc

import (
	"math/bits"

	"github.com/joshuapare/memkit/internal/format"
)

const (
	// numClasses is the number of segregated free lists.
	numClasses = 12

	// classShift maps a 16-byte block (bit length 4) to class 0.
	classShift = 4
)

// sizeClass returns the free-list index for a block of the given size.
// Class c holds sizes in (2^(c+3), 2^(c+4)]; class 0 and the last class
// absorb everything below and above.
func sizeClass(size uint32) int {
	idx := bits.Len32(size-1) - classShift
	if idx < 0 {
		return 0
	}
	if idx >= numClasses {
		return numClasses - 1
	}
	return idx
}

// classLimit returns the largest block size held by class c.
func classLimit(c int) uint32 {
	if c >= numClasses-1 {
		return format.MaxBlockSize
	}
	return 1 << (c + classShift)
}
