// Package window provides Window, the root of a live component hierarchy.
//
// A Window indexes every attached component by identity, collects the
// components marked dirty, and turns them into paint documents. It owns the
// one critical section of the hierarchy: Sync, ApplyVariables, RepaintAll
// and Do each hold the window mutex for their whole run, so a pass never
// observes a half-applied mutation.
//
// Typical loop, as run by a connection handler:
//
//	w := window.New(window.WithTitle("Orders"))
//	w.Do(func() { buildUI(w) })
//	doc, _ := w.Sync() // full paint
//	for batch := range inbound {
//		w.ApplyVariables(batch)
//		doc, _ = w.Sync() // only what changed
//	}
//
// Components must only be mutated inside Do, from listeners fired during
// ApplyVariables, or before the window is shared between goroutines.
// Listeners must not call Sync, ApplyVariables, RepaintAll or Do; the mutex
// is not reentrant.
package window
