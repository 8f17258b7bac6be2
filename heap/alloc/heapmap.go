package alloc

import (
	"io"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// WriteHeapMap writes a JSON description of the heap to w: summary fields,
// per-class free-list lengths and every block in address order.
func (a *Allocator) WriteHeapMap(w io.Writer) error {
	jw := jwriter.NewWriter()
	a.PrintDetailedMap(&jw)
	if err := jw.Error(); err != nil {
		return err
	}
	_, err := w.Write(jw.Bytes())
	return err
}

// PrintDetailedMap streams the heap map into an existing JSON writer.
func (a *Allocator) PrintDetailedMap(writer *jwriter.Writer) {
	s := a.Summary()

	obj := writer.Object()
	defer obj.End()

	obj.Name("HeapSize").Int(s.HeapSize)
	obj.Name("Blocks").Int(s.Blocks)
	obj.Name("AllocatedBytes").Int(s.AllocatedBytes)
	obj.Name("FreeBytes").Int(s.FreeBytes)
	obj.Name("LargestFree").Int(s.LargestFree)

	classes := obj.Name("FreeLists").Array()
	for sc, n := range s.ClassCounts {
		c := classes.Object()
		c.Name("Class").Int(sc)
		c.Name("MaxSize").Int(ClassLimit(sc))
		c.Name("Count").Int(n)
		c.End()
	}
	classes.End()

	a.printDetailedMapBlocks(obj)
}

func (a *Allocator) printDetailedMapBlocks(json jwriter.ObjectState) {
	arrayState := json.Name("Blocks").Array()
	defer arrayState.End()

	_ = a.Walk(func(b Block) error {
		obj := arrayState.Object()
		defer obj.End()

		obj.Name("Offset").Int(int(b.Ptr))
		obj.Name("Size").Int(b.Size)
		if b.Allocated {
			obj.Name("Type").String("allocated")
		} else {
			obj.Name("Type").String("free")
		}
		return nil
	})
}
