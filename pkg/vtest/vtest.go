package vtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

// FindTag returns the first node with the given tag across all changes, in
// document order.
func FindTag(doc *paint.Document, tag string) *paint.Node {
	for _, c := range doc.Changes {
		if n := findTag(c, tag); n != nil {
			return n
		}
	}
	return nil
}

func findTag(n *paint.Node, tag string) *paint.Node {
	if n.Tag == tag {
		return n
	}
	for _, c := range n.Children {
		if found := findTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// Outline renders doc as an indented outline, one node per line. Variables
// are prefixed with $.
func Outline(doc *paint.Document) string {
	var b strings.Builder
	for _, n := range doc.Changes {
		outline(&b, n, 0)
	}
	return b.String()
}

func outline(b *strings.Builder, n *paint.Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Tag)
	if n.ID != "" {
		b.WriteString("#" + n.ID)
	}
	if n.Cached {
		b.WriteString(" (cached)")
	}
	for _, a := range n.Attrs {
		fmt.Fprintf(b, " %s=%#v", a.Name, a.Value)
	}
	for _, v := range n.Vars {
		fmt.Fprintf(b, " $%s=%#v", v.Name, v.Value)
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		outline(b, c, depth+1)
	}
}

// ExpectPainted asserts that doc carries the full content of component id.
func ExpectPainted(t testing.TB, doc *paint.Document, id string) {
	t.Helper()
	n := doc.Find(id)
	switch {
	case n == nil:
		t.Errorf("component %s not painted\n%s", id, Outline(doc))
	case n.Cached:
		t.Errorf("component %s sent as a reference, want full content\n%s", id, Outline(doc))
	}
}

// ExpectNotPainted asserts that component id does not appear in doc.
func ExpectNotPainted(t testing.TB, doc *paint.Document, id string) {
	t.Helper()
	if doc.Find(id) != nil {
		t.Errorf("component %s painted, want absent\n%s", id, Outline(doc))
	}
}

// ExpectCached asserts that doc refers to component id without content.
func ExpectCached(t testing.TB, doc *paint.Document, id string) {
	t.Helper()
	n := doc.Find(id)
	switch {
	case n == nil:
		t.Errorf("component %s absent, want a reference\n%s", id, Outline(doc))
	case !n.Cached:
		t.Errorf("component %s painted in full, want a reference\n%s", id, Outline(doc))
	}
}

// ExpectVar asserts the value of variable name on component id.
func ExpectVar(t testing.TB, doc *paint.Document, id, name string, want value.Value) {
	t.Helper()
	n := doc.Find(id)
	if n == nil {
		t.Errorf("component %s not painted\n%s", id, Outline(doc))
		return
	}
	got, ok := n.Var(name)
	if !ok {
		t.Errorf("component %s has no variable %q", id, name)
		return
	}
	if !value.Equal(got, want) {
		t.Errorf("%s.$%s = %#v, want %#v", id, name, got, want)
	}
}

// ExpectAttr asserts the value of attribute name on component id.
func ExpectAttr(t testing.TB, doc *paint.Document, id, name string, want value.Value) {
	t.Helper()
	n := doc.Find(id)
	if n == nil {
		t.Errorf("component %s not painted\n%s", id, Outline(doc))
		return
	}
	got, ok := n.Attr(name)
	if !ok {
		t.Errorf("component %s has no attribute %q", id, name)
		return
	}
	if !value.Equal(got, want) {
		t.Errorf("%s.%s = %#v, want %#v", id, name, got, want)
	}
}
