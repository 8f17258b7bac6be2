package trace

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
)

// CSV file names written by Frequencies.WriteDir.
const (
	AllocFreqFile    = "alloc_freq.csv"
	ReallocFreqFile  = "realloc_freq.csv"
	CombinedFreqFile = "combined_alloc_realloc_freq.csv"
	FreeFreqFile     = "free_freq.csv"
)

// SizeCount is one row of a frequency table.
type SizeCount struct {
	Size  int
	Count int
}

// Frequencies accumulates request-size histograms over traces.
type Frequencies struct {
	Alloc    *swiss.Map[int, int] // size -> allocations
	Realloc  *swiss.Map[int, int] // size -> reallocations
	Combined *swiss.Map[int, int] // size -> allocations + reallocations
	Free     *swiss.Map[int, int] // size at free time -> frees
}

// NewFrequencies returns empty tables.
func NewFrequencies() *Frequencies {
	return &Frequencies{
		Alloc:    swiss.NewMap[int, int](64),
		Realloc:  swiss.NewMap[int, int](64),
		Combined: swiss.NewMap[int, int](64),
		Free:     swiss.NewMap[int, int](64),
	}
}

// Add counts every operation of t. A free is counted under the last size
// its id was allocated or resized to; frees of unknown ids are skipped.
func (f *Frequencies) Add(t *Trace) {
	sizes := swiss.NewMap[int, int](uint32(max(t.NumIDs, 8)))
	for _, op := range t.Ops {
		switch op.Kind {
		case OpAlloc:
			inc(f.Alloc, op.Size)
			inc(f.Combined, op.Size)
			sizes.Put(op.ID, op.Size)
		case OpRealloc:
			inc(f.Realloc, op.Size)
			inc(f.Combined, op.Size)
			sizes.Put(op.ID, op.Size)
		case OpFree:
			if size, ok := sizes.Get(op.ID); ok {
				inc(f.Free, size)
				sizes.Delete(op.ID)
			}
		}
	}
}

func inc(m *swiss.Map[int, int], size int) {
	n, _ := m.Get(size)
	m.Put(size, n+1)
}

// Sorted returns the rows of m ordered by count, most frequent first. Equal
// counts are ordered by size.
func Sorted(m *swiss.Map[int, int]) []SizeCount {
	rows := make([]SizeCount, 0, m.Count())
	m.Iter(func(size, count int) bool {
		rows = append(rows, SizeCount{Size: size, Count: count})
		return false
	})
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Size < rows[j].Size
	})
	return rows
}

// WriteTable writes rows as "size,count" CSV records.
func WriteTable(w io.Writer, rows []SizeCount) error {
	cw := csv.NewWriter(w)
	for _, r := range rows {
		if err := cw.Write([]string{strconv.Itoa(r.Size), strconv.Itoa(r.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDir writes the four tables into dir, creating it if needed.
func (f *Frequencies) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "trace: create %s", dir)
	}
	tables := []struct {
		name string
		m    *swiss.Map[int, int]
	}{
		{AllocFreqFile, f.Alloc},
		{ReallocFreqFile, f.Realloc},
		{CombinedFreqFile, f.Combined},
		{FreeFreqFile, f.Free},
	}
	for _, tbl := range tables {
		if err := writeFile(filepath.Join(dir, tbl.name), Sorted(tbl.m)); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, rows []SizeCount) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "trace: create %s", path)
	}
	if err := WriteTable(out, rows); err != nil {
		out.Close()
		return errors.Wrapf(err, "trace: write %s", path)
	}
	return out.Close()
}
