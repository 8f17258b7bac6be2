package format

import "golang.org/x/exp/constraints"

// AlignUp rounds value up to a multiple of alignment, which must be a power of two.
//
// Example:
//
//	AlignUp(1, 8)  = 8
//	AlignUp(8, 8)  = 8
//	AlignUp(9, 8)  = 16
func AlignUp[T constraints.Integer](value, alignment T) T {
	return (value + alignment - 1) &^ (alignment - 1)
}

// IsAligned reports whether value is a multiple of alignment (a power of two).
func IsAligned[T constraints.Integer](value, alignment T) bool {
	return value&(alignment-1) == 0
}

// AdjustedSize converts a payload request into a block size: one header word
// of overhead, rounded up to the alignment and raised to MinBlockSize.
// The result is returned as uint64 so oversized requests can be rejected by
// the caller before they are truncated into a header word.
func AdjustedSize(payload int) uint64 {
	asize := AlignUp(uint64(payload)+HeaderSize, Alignment)
	if asize < MinBlockSize {
		asize = MinBlockSize
	}
	return asize
}
