// Package component implements the server-side component tree.
//
// A Component has an identity, a non-owning parent reference, a dirty flag
// and the ability to paint itself and to accept inbound variables. A
// Container owns an ordered collection of children, optionally with slot
// metadata per child, and is the only party allowed to change a child's
// parent reference.
//
// # Defining components
//
// Concrete types embed Base (leaves) or ContainerBase (containers) and call
// Init from their constructor:
//
//	type Label struct {
//	    component.Base
//	    text string
//	}
//
//	func NewLabel(text string) *Label {
//	    l := &Label{text: text}
//	    l.Init(l, "label")
//	    return l
//	}
//
//	func (l *Label) PaintContent(t paint.Target) error {
//	    t.AddAttribute("text", value.String(l.text))
//	    return nil
//	}
//
// # Lifecycle
//
// A component becomes attached when its container is part of a live
// Hierarchy (the window). Attach and Detach propagate through subtrees and
// run exactly once per transition. Attach registers the component with the
// hierarchy's identity index; Detach unregisters it and forgets the
// client-side state, so re-adding the component elsewhere repaints it in full.
//
// # Events
//
// Every component carries a Listeners registry. Dispatch is synchronous, in
// subscription order, over a snapshot of the registry.
//
// # Concurrency
//
// Components are not safe for concurrent use. All mutation of one tree must
// happen under the owning window's critical section (window.Window.Do).
package component
