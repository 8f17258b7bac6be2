// Package trace reads allocator workload traces and replays them.
//
// # Trace Format
//
// Traces use the plain-text .rep layout of the CS:APP malloc lab:
//
//	20000     suggested heap size
//	2         number of distinct block ids
//	5         number of operations
//	1         weight
//	a 0 512   allocate 512 bytes for id 0
//	a 1 128
//	r 0 640   resize id 0 to 640 bytes
//	f 1       free id 1
//	f 0
//
// The four header numbers are optional. Blank lines and lines starting with
// '#' are ignored.
//
// # Replay
//
// Replay runs a trace against an alloc.Allocator and checks every result:
// payloads are 8-byte aligned, lie inside the arena, never overlap another
// live payload, and keep their contents until they are freed or resized.
// Optionally the heap checker runs after each operation. The result reports
// peak live payload and utilization (peak payload over heap size).
//
// # Frequency Tables
//
// Frequencies counts request sizes across any number of traces and writes
// them as CSV files sorted by frequency, one table each for allocations,
// reallocations, both combined, and frees.
package trace
