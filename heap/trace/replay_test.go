package trace

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/joshuapare/memkit/heap/alloc"
	"github.com/joshuapare/memkit/heap/arena"
)

func newAllocator(t *testing.T, maxSize int) *alloc.Allocator {
	t.Helper()
	a, err := alloc.New(arena.NewSlice(&arena.Options{MaxSize: maxSize}), nil)
	require.NoError(t, err)
	return a
}

func mustParse(t *testing.T, text string) *Trace {
	t.Helper()
	tr, err := Parse("inline", []byte(text))
	require.NoError(t, err)
	return tr
}

func TestReplay_Short(t *testing.T) {
	res, err := Replay(mustParse(t, shortTrace), newAllocator(t, 0), &ReplayOptions{CheckEach: true})
	require.NoError(t, err)

	assert.Equal(t, "inline", res.Name)
	assert.Equal(t, 5, res.Ops)
	assert.Equal(t, 768, res.PeakPayload) // 640 + 128
	assert.Equal(t, 16+alloc.DefaultChunkSize, res.HeapSize)
	assert.Greater(t, res.Utilization, 0.0)
	assert.LessOrEqual(t, res.Utilization, 1.0)
	assert.Equal(t, 1, res.Stats.ReallocCalls)
}

func TestReplay_DegenerateOps(t *testing.T) {
	text := `a 0 0
r 1 24
r 1 0
f 2
a 3 16
r 3 0
`
	res, err := Replay(mustParse(t, text), newAllocator(t, 0), &ReplayOptions{CheckEach: true})
	require.NoError(t, err)
	assert.Equal(t, 24, res.PeakPayload)
}

func TestReplay_DuplicateID(t *testing.T) {
	_, err := Replay(mustParse(t, "a 0 8\na 0 8\n"), newAllocator(t, 0), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMismatch))
	assert.Contains(t, err.Error(), "inline:2")
}

func TestReplay_OutOfMemory(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Replay(mustParse(t, "a 0 100\na 1 100000\n"), newAllocator(t, 16+alloc.DefaultChunkSize),
		&ReplayOptions{Logger: logger})
	require.Error(t, err)
	assert.True(t, errors.Is(err, alloc.ErrOutOfMemory))
	assert.Contains(t, buf.String(), "replay failed")
	assert.Contains(t, buf.String(), "line=2")
}

// randomTrace builds a valid trace mixing every operation.
func randomTrace(seed int64, ops int) string {
	rng := rand.New(rand.NewSource(seed))
	var b strings.Builder
	live := map[int]bool{}
	next := 0
	for i := 0; i < ops; i++ {
		switch r := rng.Intn(10); {
		case r < 5 || len(live) == 0:
			fmt.Fprintf(&b, "a %d %d\n", next, rng.Intn(3000)+1)
			live[next] = true
			next++
		case r < 7:
			for id := range live {
				fmt.Fprintf(&b, "r %d %d\n", id, rng.Intn(6000)+1)
				break
			}
		default:
			for id := range live {
				fmt.Fprintf(&b, "f %d\n", id)
				delete(live, id)
				break
			}
		}
	}
	return b.String()
}

func TestReplay_RandomTraces(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		tr := mustParse(t, randomTrace(seed, 1500))
		res, err := Replay(tr, newAllocator(t, 0), &ReplayOptions{CheckEach: true})
		require.NoError(t, err, "seed %d", seed)
		assert.Greater(t, res.Utilization, 0.0)
		assert.LessOrEqual(t, res.Utilization, 1.0)
	}
}
