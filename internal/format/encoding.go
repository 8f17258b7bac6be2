package format

import "encoding/binary"

// Binary encoding utilities for arena words.
//
// Every header, footer and link is a little-endian uint32. The standard
// library's binary.LittleEndian is inlined well by the compiler, so there is
// no unsafe fast path here.

// PutU32 writes a uint32 value to the buffer at the specified offset in little-endian format.
func PutU32(b []byte, off uint32, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+WordSize], v)
}

// ReadU32 reads a uint32 value from the buffer at the specified offset in little-endian format.
func ReadU32(b []byte, off uint32) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+WordSize])
}
