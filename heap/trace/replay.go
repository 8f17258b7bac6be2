package trace

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slog"

	"github.com/joshuapare/memkit/heap/alloc"
)

// ReplayOptions tunes Replay.
type ReplayOptions struct {
	// CheckEach runs the heap checker after every operation.
	CheckEach bool

	// Logger receives one debug record per failed check. Nil discards.
	Logger *slog.Logger
}

// Result summarizes one replay.
type Result struct {
	Name        string
	Ops         int
	PeakPayload int // Largest sum of live requested sizes
	HeapSize    int // Arena bytes used when the trace ended
	Utilization float64
	Stats       alloc.Stats
}

type liveBlock struct {
	ptr  alloc.Ptr
	size int
}

// Replay runs t against a, which should be freshly created. It stops at the
// first contract violation (ErrMismatch), allocator error, or heap check
// failure.
func Replay(t *Trace, a *alloc.Allocator, opts *ReplayOptions) (Result, error) {
	if opts == nil {
		opts = &ReplayOptions{}
	}
	r := replayer{
		t:    t,
		a:    a,
		opts: opts,
		live: swiss.NewMap[int, liveBlock](uint32(max(t.NumIDs, 8))),
	}
	return r.run()
}

type replayer struct {
	t    *Trace
	a    *alloc.Allocator
	opts *ReplayOptions
	live *swiss.Map[int, liveBlock]

	payload, peak int
}

func (r *replayer) run() (Result, error) {
	for _, op := range r.t.Ops {
		if err := r.step(op); err != nil {
			r.logFailure(op, err)
			return Result{}, err
		}
		if r.opts.CheckEach {
			if err := r.a.CheckHeap(r.t.Name + ":" + strconv.Itoa(op.Line)); err != nil {
				r.logFailure(op, err)
				return Result{}, err
			}
		}
	}

	s := r.a.Summary()
	res := Result{
		Name:        r.t.Name,
		Ops:         len(r.t.Ops),
		PeakPayload: r.peak,
		HeapSize:    s.HeapSize,
		Stats:       r.a.Stats(),
	}
	if s.HeapSize > 0 {
		res.Utilization = float64(r.peak) / float64(s.HeapSize)
	}
	return res, nil
}

func (r *replayer) step(op Op) error {
	switch op.Kind {
	case OpAlloc:
		if _, ok := r.live.Get(op.ID); ok {
			return r.mismatch(op, "id already live")
		}
		p, err := r.a.Alloc(op.Size)
		if err != nil {
			return r.wrap(op, err)
		}
		if err := r.admit(op, p); err != nil {
			return err
		}

	case OpRealloc:
		old, ok := r.live.Get(op.ID)
		if ok {
			if err := r.verify(op, old); err != nil {
				return err
			}
			r.live.Delete(op.ID)
			r.payload -= old.size
		}
		p, err := r.a.Realloc(old.ptr, op.Size)
		if err != nil {
			return r.wrap(op, err)
		}
		if ok {
			keep := min(old.size, op.Size)
			if p != alloc.Nil && !r.intact(p, op.ID, keep) {
				return r.mismatch(op, "realloc lost payload contents")
			}
		}
		if err := r.admit(op, p); err != nil {
			return err
		}

	case OpFree:
		b, ok := r.live.Get(op.ID)
		if !ok {
			return r.wrap(op, r.a.Free(alloc.Nil))
		}
		if err := r.verify(op, b); err != nil {
			return err
		}
		r.live.Delete(op.ID)
		r.payload -= b.size
		if err := r.a.Free(b.ptr); err != nil {
			return r.wrap(op, err)
		}
	}
	return nil
}

// admit validates a freshly returned block, fills it with the id's pattern
// and records it as live.
func (r *replayer) admit(op Op, p alloc.Ptr) error {
	if op.Size == 0 {
		if p != alloc.Nil {
			return r.mismatch(op, "zero-byte request returned a block")
		}
		return nil
	}
	if p == alloc.Nil {
		return r.mismatch(op, "null pointer for nonzero request")
	}
	if uint32(p)%8 != 0 {
		return r.mismatch(op, "payload 0x"+strconv.FormatUint(uint64(p), 16)+" not 8-byte aligned")
	}
	b := r.a.Bytes(p)
	if len(b) < op.Size {
		return r.mismatch(op, "payload shorter than request")
	}

	lo, hi := int(p), int(p)+op.Size
	var clash error
	r.live.Iter(func(id int, lb liveBlock) bool {
		if lo < int(lb.ptr)+lb.size && int(lb.ptr) < hi {
			clash = r.mismatch(op, "payload overlaps live id "+strconv.Itoa(id))
			return true
		}
		return false
	})
	if clash != nil {
		return clash
	}

	for i := 0; i < op.Size; i++ {
		b[i] = pattern(op.ID, i)
	}
	r.live.Put(op.ID, liveBlock{ptr: p, size: op.Size})
	r.payload += op.Size
	r.peak = max(r.peak, r.payload)
	return nil
}

func (r *replayer) verify(op Op, b liveBlock) error {
	if !r.intact(b.ptr, op.ID, b.size) {
		return r.mismatch(op, "payload of id "+strconv.Itoa(op.ID)+" was overwritten")
	}
	return nil
}

func (r *replayer) intact(p alloc.Ptr, id, n int) bool {
	b := r.a.Bytes(p)
	if len(b) < n {
		return false
	}
	for i := 0; i < n; i++ {
		if b[i] != pattern(id, i) {
			return false
		}
	}
	return true
}

func (r *replayer) mismatch(op Op, msg string) error {
	return errors.Wrapf(ErrMismatch, "%s:%d: %s id %d: %s", r.t.Name, op.Line, op.Kind, op.ID, msg)
}

func (r *replayer) wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "%s:%d: %s id %d size %d", r.t.Name, op.Line, op.Kind, op.ID, op.Size)
}

func (r *replayer) logFailure(op Op, err error) {
	if r.opts.Logger == nil {
		return
	}
	r.opts.Logger.LogAttrs(context.Background(), slog.LevelDebug, "replay failed",
		slog.String("trace", r.t.Name),
		slog.Int("line", op.Line),
		slog.String("op", op.Kind.String()),
		slog.Int("id", op.ID),
		slog.Any("error", err))
}

// pattern is the byte stored at offset i of id's payload.
func pattern(id, i int) byte {
	return byte(id*31 + i)
}
