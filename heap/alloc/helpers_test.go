package alloc

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/heap/arena"
)

// newTestAllocator returns an allocator over a slice arena of maxSize bytes
// (0 = arena.DefaultMaxSize). Checker failures fail the test instead of
// exiting the process.
func newTestAllocator(t *testing.T, maxSize int) (*Allocator, *arena.Slice) {
	t.Helper()
	p := arena.NewSlice(&arena.Options{MaxSize: maxSize})
	a, err := New(p, &Config{
		OnFatal: func(err error) { t.Fatalf("heap check failed: %v", err) },
	})
	require.NoError(t, err)
	return a, p
}

// mustAlloc allocates n bytes or fails the test.
func mustAlloc(t *testing.T, a *Allocator, n int) Ptr {
	t.Helper()
	p, err := a.Alloc(n)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	return p
}

// requireConsistent runs the checker and fails the test on any violation.
func requireConsistent(t *testing.T, a *Allocator, tag string) {
	t.Helper()
	require.NoError(t, a.CheckHeap(tag))
}

// fill writes a byte pattern derived from seed into the payload of p.
func fill(a *Allocator, p Ptr, n int, seed byte) {
	b := a.Bytes(p)
	for i := 0; i < n; i++ {
		b[i] = seed + byte(i)
	}
}

// requirePattern checks the first n payload bytes of p against fill's pattern.
func requirePattern(t *testing.T, a *Allocator, p Ptr, n int, seed byte) {
	t.Helper()
	b := a.Bytes(p)
	require.GreaterOrEqual(t, len(b), n)
	for i := 0; i < n; i++ {
		if b[i] != seed+byte(i) {
			t.Fatalf("payload byte %d of 0x%X: got 0x%02X, want 0x%02X", i, p, b[i], seed+byte(i))
		}
	}
}

// requireNoOverlap checks that the payload ranges of the live pointers are
// pairwise disjoint and 8-byte aligned.
func requireNoOverlap(t *testing.T, a *Allocator, live []Ptr) {
	t.Helper()
	sorted := append([]Ptr(nil), live...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i, p := range sorted {
		require.Zero(t, uint32(p)%8, "payload 0x%X not aligned", p)
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		end := int(prev) + a.UsableSize(prev)
		if end > int(p) {
			t.Fatalf("payload 0x%X (end 0x%X) overlaps 0x%X", prev, end, p)
		}
	}
}
