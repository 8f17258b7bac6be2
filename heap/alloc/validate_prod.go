//go:build !debug_alloc

package alloc

// debugValidate checks the heap after a public operation when
// Config.VerifyEachOp is set. Builds with the debug_alloc tag always check.
func (a *Allocator) debugValidate(tag string) {
	if a.cfg.VerifyEachOp {
		a.MustCheckHeap(tag)
	}
}
