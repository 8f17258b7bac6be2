// Package format houses the block layout codec for the memkit arena. It owns
// every bit-level decision about how a block's size and status flags are
// packed into a header word, where free-list links live inside a free block,
// and how words are laid out in the arena. Nothing outside this package reads
// or writes raw header words.
package format

const (
	// WordSize is the size of a header, footer, or link field in bytes.
	WordSize = 4

	// DoubleWordSize is the size of two words. Block sizes are multiples of it.
	DoubleWordSize = 8

	// Alignment is the payload alignment guaranteed to callers.
	Alignment = 8

	// HeaderSize is the per-block overhead of an allocated block (header only,
	// allocated blocks carry no footer).
	HeaderSize = WordSize

	// MinBlockSize is the smallest legal block: header, next link, prev link
	// and footer. A free block must hold all four even with no payload.
	MinBlockSize = 4 * WordSize

	// PrologueSize is the fixed size of the always-allocated prologue block.
	PrologueSize = DoubleWordSize

	// MaxBlockSize is the largest size a header word can encode.
	MaxBlockSize = 0xFFFFFFF8
)

const (
	// allocBit marks the block itself as allocated.
	allocBit uint32 = 0x1

	// prevAllocBit mirrors the allocation state of the preceding block.
	prevAllocBit uint32 = 0x2

	// sizeMask strips the three low flag bits from a header word.
	sizeMask uint32 = ^uint32(0x7)
)

const (
	// PrevLinkOffset is the position of the backward link relative to a free
	// block's payload start.
	PrevLinkOffset = 0

	// NextLinkOffset is the position of the forward link relative to a free
	// block's payload start.
	NextLinkOffset = WordSize
)
