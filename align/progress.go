package align

import "log"

// callProgress invokes fn, recovering and logging (rather than
// propagating) any panic so a misbehaving external progress callback can
// never corrupt the alignment in progress (spec.md §7).
func callProgress(fn ProgressFunc, current, total int) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("align: progress callback panicked, ignoring: %v", r)
		}
	}()
	fn(current, total)
}
