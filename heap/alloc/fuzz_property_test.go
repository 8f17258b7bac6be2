package alloc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type liveBlock struct {
	ptr  Ptr
	size int
	seed byte
}

// runRandomOps drives a random mix of Alloc, Free, Realloc and Calloc and
// audits the heap after every step.
func runRandomOps(t *testing.T, seed int64, steps, maxSize int) {
	t.Helper()
	a, _ := newTestAllocator(t, 0)
	rng := rand.New(rand.NewSource(seed))
	var live []liveBlock

	randSize := func() int {
		if rng.Intn(10) == 0 {
			return rng.Intn(maxSize*8) + 1
		}
		return rng.Intn(maxSize) + 1
	}

	for step := 0; step < steps; step++ {
		switch op := rng.Intn(10); {
		case op < 4 || len(live) == 0:
			n := randSize()
			p := mustAlloc(t, a, n)
			s := byte(rng.Intn(256))
			fill(a, p, n, s)
			live = append(live, liveBlock{p, n, s})

		case op < 7:
			i := rng.Intn(len(live))
			b := live[i]
			requirePattern(t, a, b.ptr, b.size, b.seed)
			require.NoError(t, a.Free(b.ptr))
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]

		case op < 9:
			i := rng.Intn(len(live))
			b := live[i]
			n := randSize()
			p, err := a.Realloc(b.ptr, n)
			require.NoError(t, err)
			requirePattern(t, a, p, min(b.size, n), b.seed)
			fill(a, p, n, b.seed)
			live[i] = liveBlock{p, n, b.seed}

		default:
			count, elem := rng.Intn(16)+1, rng.Intn(maxSize/16+1)+1
			p, err := a.Calloc(count, elem)
			require.NoError(t, err)
			for j, v := range a.Bytes(p)[:count*elem] {
				if v != 0 {
					t.Fatalf("step %d: calloc byte %d is 0x%02X", step, j, v)
				}
			}
			s := byte(rng.Intn(256))
			fill(a, p, count*elem, s)
			live = append(live, liveBlock{p, count * elem, s})
		}

		if err := a.CheckHeap("random"); err != nil {
			t.Fatalf("seed %d step %d: %v", seed, step, err)
		}
		ptrs := make([]Ptr, len(live))
		for i, b := range live {
			ptrs[i] = b.ptr
		}
		requireNoOverlap(t, a, ptrs)
	}

	for _, b := range live {
		requirePattern(t, a, b.ptr, b.size, b.seed)
		require.NoError(t, a.Free(b.ptr))
	}
	requireConsistent(t, a, "drained")
	require.Equal(t, 1, a.Summary().FreeBlocks, "everything coalesces once drained")
}

func Test_Property_RandomSmall(t *testing.T) {
	for seed := int64(1); seed <= 8; seed++ {
		runRandomOps(t, seed, 600, 128)
	}
}

func Test_Property_RandomMixed(t *testing.T) {
	for seed := int64(100); seed < 104; seed++ {
		runRandomOps(t, seed, 800, 2048)
	}
}

func Test_Property_RandomLarge(t *testing.T) {
	if testing.Short() {
		t.Skip("large random workload")
	}
	runRandomOps(t, 7, 400, 16384)
}
