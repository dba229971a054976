package widget

import (
	"github.com/vango-dev/tessera/pkg/component"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/resource"
	"github.com/vango-dev/tessera/pkg/value"
)

// Link points the renderer at a resource reference or an external URL.
type Link struct {
	component.Base
	ref    string
	href   string
	target string
}

// NewLink creates a link to an external URL; href may be empty.
func NewLink(caption, href string) *Link {
	l := &Link{href: href}
	l.Init(l, "link")
	l.SetCaption(caption)
	return l
}

// Resource returns the resource reference, or "".
func (l *Link) Resource() string { return l.ref }

// SetResource points the link at a registry reference ("res/<id>/<name>").
// The empty string clears it.
func (l *Link) SetResource(ref string) error {
	if ref != "" {
		if _, _, err := resource.ParseRef(ref); err != nil {
			return err
		}
	}
	if l.ref == ref {
		return nil
	}
	l.ref = ref
	l.MarkDirty()
	return nil
}

// Href returns the external URL, or "".
func (l *Link) Href() string { return l.href }

// SetHref points the link at an external URL.
func (l *Link) SetHref(href string) {
	if l.href == href {
		return
	}
	l.href = href
	l.MarkDirty()
}

// SetTarget names the browsing context the link opens in.
func (l *Link) SetTarget(target string) {
	if l.target == target {
		return
	}
	l.target = target
	l.MarkDirty()
}

// PaintContent implements component.ContentPainter.
func (l *Link) PaintContent(t paint.Target) error {
	if l.ref != "" {
		t.AddAttribute("src", value.Resource(l.ref))
	} else if l.href != "" {
		t.AddAttribute("src", value.String(l.href))
	}
	if l.target != "" {
		t.AddAttribute("target", value.String(l.target))
	}
	return nil
}
