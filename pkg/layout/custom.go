package layout

import (
	"github.com/vango-dev/tessera/pkg/component"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

type location string

// CustomLayout fills the named locations of a template the renderer knows.
// A location holds at most one child.
type CustomLayout struct {
	component.ContainerBase
	template string
}

// NewCustomLayout creates a layout for the named template.
func NewCustomLayout(template string) *CustomLayout {
	l := &CustomLayout{template: template}
	l.Init(l, "customlayout")
	return l
}

// Template returns the name of the template the client renders.
func (l *CustomLayout) Template() string { return l.template }

// SetTemplate switches the template; slot names stay as they are.
func (l *CustomLayout) SetTemplate(template string) {
	if l.template == template {
		return
	}
	l.template = template
	l.MarkDirty()
}

// AddComponent adds c to the unnamed default location.
func (l *CustomLayout) AddComponent(c component.Component) error {
	return l.AddComponentIn(c, "")
}

// AddComponentIn puts c into loc. The previous occupant of loc, if any, is
// removed. A child already in the layout is moved to loc.
func (l *CustomLayout) AddComponentIn(c component.Component, loc string) error {
	if c == nil {
		return component.ErrNilComponent
	}
	cur := l.ComponentIn(location(loc))
	switch {
	case cur == c:
		return nil
	case l.IndexOf(c) >= 0:
		if cur != nil {
			l.RemoveComponent(cur)
		}
		return l.SetSlot(c, location(loc))
	case cur != nil:
		return l.ReplaceComponent(cur, c)
	}
	return l.InsertComponent(c, -1, location(loc))
}

// ComponentInLocation returns the child at loc, or nil.
func (l *CustomLayout) ComponentInLocation(loc string) component.Component {
	return l.ComponentIn(location(loc))
}

// Location returns the location of child c.
func (l *CustomLayout) Location(c component.Component) (string, bool) {
	slot, ok := l.SlotOf(c)
	if !ok {
		return "", false
	}
	loc, _ := slot.(location)
	return string(loc), true
}

// PaintContent implements component.ContentPainter.
func (l *CustomLayout) PaintContent(t paint.Target) error {
	t.AddAttribute("template", value.String(l.template))
	return l.PaintChildren(t, "location", func(t paint.Target, slot component.Slot) {
		loc, _ := slot.(location)
		t.AddAttribute("name", value.String(string(loc)))
	})
}
