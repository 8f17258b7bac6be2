package trace

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/memkit/internal/mmfile"
)

// OpKind identifies a trace operation.
type OpKind byte

const (
	OpAlloc   OpKind = 'a'
	OpRealloc OpKind = 'r'
	OpFree    OpKind = 'f'
)

func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpRealloc:
		return "realloc"
	case OpFree:
		return "free"
	default:
		return "op(" + strconv.Itoa(int(k)) + ")"
	}
}

// Op is one trace line.
type Op struct {
	Kind OpKind
	ID   int
	Size int // 0 for frees
	Line int // 1-based source line
}

// Trace is a parsed workload.
type Trace struct {
	Name string

	// Header fields; zero when the trace has no header.
	SuggestedHeap int
	NumIDs        int
	NumOps        int
	Weight        int

	Ops []Op
}

// ParseFile maps and parses the trace at path. The trace name is the file's
// base name without extension.
func ParseFile(path string) (*Trace, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, errors.Wrapf(err, "trace: open %s", path)
	}
	defer cleanup()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(name, data)
}

// Parse parses trace text. Every op line must be "a id size", "r id size" or
// "f id" with non-negative integers.
func Parse(name string, data []byte) (*Trace, error) {
	t := &Trace{Name: name}
	header := []*int{&t.SuggestedHeap, &t.NumIDs, &t.NumOps, &t.Weight}
	nheader := 0

	lineNo := 0
	for len(data) > 0 {
		var line []byte
		line, data, _ = bytes.Cut(data, []byte{'\n'})
		lineNo++

		fields := strings.Fields(string(line))
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		c := fields[0][0]
		if c >= '0' && c <= '9' {
			if len(t.Ops) > 0 || nheader == len(header) || len(fields) != 1 {
				return nil, syntaxError(name, lineNo, "unexpected header line %q", line)
			}
			v, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, syntaxError(name, lineNo, "bad header number %q", fields[0])
			}
			*header[nheader] = v
			nheader++
			continue
		}

		op, err := parseOp(fields)
		if err != nil {
			return nil, syntaxError(name, lineNo, "%v", err)
		}
		op.Line = lineNo
		t.Ops = append(t.Ops, op)
	}
	return t, nil
}

func parseOp(fields []string) (Op, error) {
	if len(fields[0]) != 1 {
		return Op{}, errors.Newf("unknown operation %q", fields[0])
	}
	op := Op{Kind: OpKind(fields[0][0])}

	want := 3
	switch op.Kind {
	case OpAlloc, OpRealloc:
	case OpFree:
		want = 2
	default:
		return Op{}, errors.Newf("unknown operation %q", fields[0])
	}
	if len(fields) != want {
		return Op{}, errors.Newf("%s takes %d fields, got %d", op.Kind, want, len(fields))
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 {
		return Op{}, errors.Newf("bad id %q", fields[1])
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.Atoi(fields[2])
		if err != nil || size < 0 {
			return Op{}, errors.Newf("bad size %q", fields[2])
		}
		op.Size = size
	}
	return op, nil
}

func syntaxError(name string, line int, format string, args ...any) error {
	return errors.Wrapf(ErrSyntax, "%s:%d: "+format, append([]any{name, line}, args...)...)
}
