package alloc

// Ptr is the arena-relative offset of a block's payload.
type Ptr uint32

// Nil is the null pointer. Offset 0 holds the arena's padding word and is
// never a payload.
const Nil Ptr = 0

// IsNil reports whether p is the null pointer.
func (p Ptr) IsNil() bool { return p == Nil }
