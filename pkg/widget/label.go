package widget

import (
	"github.com/vango-dev/tessera/pkg/component"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

// ContentMode tells the renderer how to interpret label content.
type ContentMode uint8

const (
	ContentText ContentMode = iota
	ContentPreformatted
	ContentHTML
)

func (m ContentMode) String() string {
	switch m {
	case ContentPreformatted:
		return "pre"
	case ContentHTML:
		return "html"
	default:
		return "text"
	}
}

// Label displays read-only content.
type Label struct {
	component.Base
	content string
	mode    ContentMode
}

// NewLabel creates a plain text label.
func NewLabel(content string) *Label {
	l := &Label{content: content}
	l.Init(l, "label")
	return l
}

// Content returns the label text.
func (l *Label) Content() string { return l.content }

// SetContent replaces the label text.
func (l *Label) SetContent(content string) {
	if l.content == content {
		return
	}
	l.content = content
	l.MarkDirty()
}

// ContentMode returns how the client interprets the content.
func (l *Label) ContentMode() ContentMode { return l.mode }

// SetContentMode changes how the client interprets the content.
func (l *Label) SetContentMode(m ContentMode) {
	if l.mode == m {
		return
	}
	l.mode = m
	l.MarkDirty()
}

// PaintContent implements component.ContentPainter.
func (l *Label) PaintContent(t paint.Target) error {
	if l.mode != ContentText {
		t.AddAttribute("mode", value.String(l.mode.String()))
	}
	t.AddAttribute("content", value.String(l.content))
	return nil
}
