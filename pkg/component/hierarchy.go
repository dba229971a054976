package component

// Hierarchy is implemented by the root of a live component tree. Components
// find it by following parent references and report lifecycle and repaint
// requests to it.
type Hierarchy interface {
	Container

	// Register is called when c becomes part of the live tree.
	Register(c Component)

	// Unregister is called when c leaves the live tree.
	Unregister(c Component)

	// RequestRepaint is called when an attached component is marked dirty.
	RequestRepaint(c Component)
}

// Root returns the topmost ancestor of c (c itself when it has no parent).
func Root(c Component) Component {
	if c == nil {
		return nil
	}
	for {
		p := c.Parent()
		if p == nil {
			return c
		}
		c = p
	}
}

// HierarchyOf returns the live hierarchy containing c, or nil when c is not
// below a Hierarchy root.
func HierarchyOf(c Component) Hierarchy {
	h, _ := Root(c).(Hierarchy)
	return h
}

// IsAncestor reports whether a is a proper ancestor of c.
func IsAncestor(a, c Component) bool {
	if a == nil || c == nil {
		return false
	}
	for p := c.Parent(); p != nil; p = p.Parent() {
		if Component(p) == a {
			return true
		}
	}
	return false
}

// Path returns the positions of c and its ancestors below the root, root
// first. Two components are in document order when their paths compare in
// lexical order.
func Path(c Component) []int {
	var rev []int
	for c != nil {
		p := c.Parent()
		if p == nil {
			break
		}
		rev = append(rev, p.IndexOf(c))
		c = p
	}
	path := make([]int, len(rev))
	for i, idx := range rev {
		path[len(rev)-1-i] = idx
	}
	return path
}

// Walk visits c and its descendants depth-first in container order. The
// walk stops descending into a subtree when fn returns false.
func Walk(c Component, fn func(Component) bool) {
	if c == nil || !fn(c) {
		return
	}
	if cont, ok := c.(Container); ok {
		for _, child := range cont.Snapshot() {
			Walk(child, fn)
		}
	}
}
