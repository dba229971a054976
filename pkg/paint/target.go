package paint

import (
	"errors"

	"github.com/vango-dev/tessera/pkg/value"
)

// Target errors.
var (
	ErrUnbalanced = errors.New("paint: unbalanced start/end tags")
	ErrNoOpenTag  = errors.New("paint: attribute written outside a tag")
)

// Target receives the serialized form of components. Components call
// StartComponent, write attributes and variables, paint their children and
// finish with EndTag.
type Target interface {
	// StartComponent opens the node for a component. When cached is true and
	// the target is allowed to reuse client state, a reference-only node is
	// emitted and skip is true: the caller must write nothing else for this
	// component except the matching EndTag.
	StartComponent(id, tag string, cached bool) (skip bool)

	// StartTag opens an anonymous nested block such as a slot wrapper.
	StartTag(tag string)

	// AddAttribute writes a server-to-client attribute. Null values are
	// omitted.
	AddAttribute(name string, v value.Value)

	// AddVariable declares a variable the remote side may send back.
	AddVariable(name string, v value.Value)

	// EndTag closes the innermost open node.
	EndTag()
}

// Field is a named value inside a Node.
type Field struct {
	Name  string
	Value value.Value
}

// Node is one block of the outbound document.
type Node struct {
	Tag      string
	ID       string // empty for anonymous blocks
	Cached   bool   // reference to client-known state, no content
	Attrs    []Field
	Vars     []Field
	Children []*Node
}

// Attr returns the attribute named name.
func (n *Node) Attr(name string) (value.Value, bool) {
	return lookup(n.Attrs, name)
}

// Var returns the variable named name.
func (n *Node) Var(name string) (value.Value, bool) {
	return lookup(n.Vars, name)
}

// Find returns the first node in the subtree (including n) with the given id.
func (n *Node) Find(id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

func lookup(fields []Field, name string) (value.Value, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return value.Null(), false
}

// Document is the result of one synchronization pass: one node per
// repainted subtree, in document order.
type Document struct {
	Changes []*Node
}

// Find returns the first node with the given id across all changes.
func (d *Document) Find(id string) *Node {
	for _, c := range d.Changes {
		if n := c.Find(id); n != nil {
			return n
		}
	}
	return nil
}

// Count returns the total number of nodes in the document.
func (d *Document) Count() int {
	total := 0
	for _, c := range d.Changes {
		total += c.Count()
	}
	return total
}

// DocumentTarget builds a Document in memory.
type DocumentTarget struct {
	doc      Document
	stack    []*Node
	useCache bool
	err      error
}

// NewDocumentTarget creates a target. With useCache set, components that
// report themselves as cached are emitted as references.
func NewDocumentTarget(useCache bool) *DocumentTarget {
	return &DocumentTarget{useCache: useCache}
}

// StartComponent implements Target.
func (t *DocumentTarget) StartComponent(id, tag string, cached bool) bool {
	n := &Node{Tag: tag, ID: id}
	skip := cached && t.useCache && len(t.stack) > 0
	if skip {
		n.Cached = true
	}
	t.push(n)
	return skip
}

// StartTag implements Target.
func (t *DocumentTarget) StartTag(tag string) {
	t.push(&Node{Tag: tag})
}

// AddAttribute implements Target.
func (t *DocumentTarget) AddAttribute(name string, v value.Value) {
	if v.IsNull() {
		return
	}
	n := t.top()
	if n == nil {
		return
	}
	n.Attrs = append(n.Attrs, Field{Name: name, Value: v})
}

// AddVariable implements Target.
func (t *DocumentTarget) AddVariable(name string, v value.Value) {
	n := t.top()
	if n == nil {
		return
	}
	n.Vars = append(n.Vars, Field{Name: name, Value: v})
}

// EndTag implements Target.
func (t *DocumentTarget) EndTag() {
	if len(t.stack) == 0 {
		t.err = ErrUnbalanced
		return
	}
	n := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	if len(t.stack) == 0 {
		t.doc.Changes = append(t.doc.Changes, n)
	}
}

// Document returns the built document, or an error when tags were left
// open or closed too often.
func (t *DocumentTarget) Document() (*Document, error) {
	if t.err != nil {
		return nil, t.err
	}
	if len(t.stack) != 0 {
		return nil, ErrUnbalanced
	}
	doc := t.doc
	return &doc, nil
}

// Err returns the first usage error recorded by the target.
func (t *DocumentTarget) Err() error {
	return t.err
}

func (t *DocumentTarget) push(n *Node) {
	if len(t.stack) > 0 {
		parent := t.stack[len(t.stack)-1]
		parent.Children = append(parent.Children, n)
	}
	t.stack = append(t.stack, n)
}

func (t *DocumentTarget) top() *Node {
	if len(t.stack) == 0 {
		t.err = ErrNoOpenTag
		return nil
	}
	return t.stack[len(t.stack)-1]
}
