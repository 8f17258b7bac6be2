//go:build debug_alloc

package alloc

// debugValidate checks the heap after every public operation. This build has
// the debug_alloc tag.
func (a *Allocator) debugValidate(tag string) {
	a.MustCheckHeap(tag)
}
