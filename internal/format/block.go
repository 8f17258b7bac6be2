package format

// Block layout
//
// Allocated block:
//
//	+--------------+-------------------------------+
//	| header (4B)  | payload                       |
//	+--------------+-------------------------------+
//	               ^ bp
//
// Free block (minimum 16 bytes):
//
//	+--------------+--------------+--------------+---------+--------------+
//	| header (4B)  | prev link    | next link    | filler  | footer (4B)  |
//	+--------------+--------------+--------------+---------+--------------+
//	               ^ bp
//
// Blocks are addressed by their payload offset bp. Links are arena-relative
// offsets of other free blocks' payloads, 0 meaning no link.

// Link is an arena-relative offset stored inside a free block. The zero value
// is NilLink.
type Link uint32

// NilLink terminates a free list. Offset 0 is the arena's padding word and is
// never a block payload.
const NilLink Link = 0

// Header is the decoded form of a header or footer word.
type Header struct {
	Size          uint32
	Allocated     bool
	PrevAllocated bool
}

// Pack encodes the header into a single word: size in the high bits, the
// allocated flag in bit 0 and the previous-allocated flag in bit 1.
func (h Header) Pack() uint32 {
	w := h.Size & sizeMask
	if h.Allocated {
		w |= allocBit
	}
	if h.PrevAllocated {
		w |= prevAllocBit
	}
	return w
}

// Unpack decodes a header word.
func Unpack(w uint32) Header {
	return Header{
		Size:          w & sizeMask,
		Allocated:     w&allocBit != 0,
		PrevAllocated: w&prevAllocBit != 0,
	}
}

// HeaderOffset returns the offset of the header word of the block whose
// payload starts at bp.
func HeaderOffset(bp uint32) uint32 {
	return bp - WordSize
}

// FooterOffset returns the offset of the footer word of a block of the given
// size whose payload starts at bp.
func FooterOffset(bp, size uint32) uint32 {
	return bp + size - DoubleWordSize
}

// ReadHeader decodes the header of the block at bp.
func ReadHeader(b []byte, bp uint32) Header {
	return Unpack(ReadU32(b, HeaderOffset(bp)))
}

// ReadWord returns the raw header word of the block at bp.
func ReadWord(b []byte, bp uint32) uint32 {
	return ReadU32(b, HeaderOffset(bp))
}

// ReadFooter decodes the footer of the block at bp using the size recorded in
// its header. Only meaningful for free blocks.
func ReadFooter(b []byte, bp uint32) Header {
	return Unpack(ReadU32(b, FooterOffset(bp, ReadHeader(b, bp).Size)))
}

// ReadFooterWord returns the raw footer word of the free block at bp.
func ReadFooterWord(b []byte, bp uint32) uint32 {
	return ReadU32(b, FooterOffset(bp, ReadHeader(b, bp).Size))
}

// PutHeader writes the header word of the block at bp.
func PutHeader(b []byte, bp uint32, h Header) {
	PutU32(b, HeaderOffset(bp), h.Pack())
}

// PutFree writes matching header and footer words for a free block of
// h.Size bytes at bp. h.Allocated is ignored.
func PutFree(b []byte, bp uint32, h Header) {
	h.Allocated = false
	w := h.Pack()
	PutU32(b, HeaderOffset(bp), w)
	PutU32(b, FooterOffset(bp, h.Size), w)
}

// SetPrevAllocated rewrites the previous-allocated flag of the block at bp.
// Free blocks with a nonzero size get their footer updated as well so header
// and footer stay identical.
func SetPrevAllocated(b []byte, bp uint32, prevAllocated bool) {
	h := ReadHeader(b, bp)
	h.PrevAllocated = prevAllocated
	PutHeader(b, bp, h)
	if !h.Allocated && h.Size > 0 {
		PutU32(b, FooterOffset(bp, h.Size), h.Pack())
	}
}

// NextBlock returns the payload offset of the block following bp in address order.
func NextBlock(b []byte, bp uint32) uint32 {
	return bp + ReadHeader(b, bp).Size
}

// PrevBlock returns the payload offset of the block preceding bp. It reads
// the predecessor's footer and is only valid when that block is free.
func PrevBlock(b []byte, bp uint32) uint32 {
	return bp - Unpack(ReadU32(b, bp-DoubleWordSize)).Size
}

// PrevLink returns the backward free-list link of the free block at bp.
func PrevLink(b []byte, bp uint32) Link {
	return Link(ReadU32(b, bp+PrevLinkOffset))
}

// NextLink returns the forward free-list link of the free block at bp.
func NextLink(b []byte, bp uint32) Link {
	return Link(ReadU32(b, bp+NextLinkOffset))
}

// SetPrevLink stores the backward free-list link of the free block at bp.
func SetPrevLink(b []byte, bp uint32, l Link) {
	PutU32(b, bp+PrevLinkOffset, uint32(l))
}

// SetNextLink stores the forward free-list link of the free block at bp.
func SetNextLink(b []byte, bp uint32, l Link) {
	PutU32(b, bp+NextLinkOffset, uint32(l))
}
