package layout

import (
	"fmt"

	"github.com/vango-dev/tessera/pkg/component"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

// Position places a child of an AbsoluteLayout. Unset coordinates leave the
// child where the renderer's flow puts it.
type Position struct {
	Top    paint.Size
	Left   paint.Size
	ZIndex int
}

// At returns a pixel position.
func At(top, left float64) Position {
	return Position{Top: paint.Px(top), Left: paint.Px(left)}
}

// String formats the position as CSS-like declarations.
func (p Position) String() string {
	s := fmt.Sprintf("top:%s;left:%s;", p.Top, p.Left)
	if p.ZIndex != 0 {
		s += fmt.Sprintf("z-index:%d;", p.ZIndex)
	}
	return s
}

var unplaced = Position{Top: paint.Unset, Left: paint.Unset}

// AbsoluteLayout places each child at explicit coordinates.
type AbsoluteLayout struct {
	component.ContainerBase
}

// NewAbsoluteLayout creates an empty layout.
func NewAbsoluteLayout() *AbsoluteLayout {
	l := &AbsoluteLayout{}
	l.Init(l, "absolutelayout")
	return l
}

// AddComponent adds c without coordinates.
func (l *AbsoluteLayout) AddComponent(c component.Component) error {
	if l.IndexOf(c) >= 0 {
		return nil
	}
	return l.InsertComponent(c, -1, unplaced)
}

// AddComponentAt adds c at pos. A child already in the layout is moved to
// pos.
func (l *AbsoluteLayout) AddComponentAt(c component.Component, pos Position) error {
	if l.IndexOf(c) >= 0 {
		return l.SetPosition(c, pos)
	}
	return l.InsertComponent(c, -1, pos)
}

// SetPosition moves child c to pos.
func (l *AbsoluteLayout) SetPosition(c component.Component, pos Position) error {
	return l.SetSlot(c, pos)
}

// Position returns the position of child c.
func (l *AbsoluteLayout) Position(c component.Component) (Position, bool) {
	slot, ok := l.SlotOf(c)
	if !ok {
		return Position{}, false
	}
	pos, _ := slot.(Position)
	return pos, true
}

// PaintContent implements component.ContentPainter.
func (l *AbsoluteLayout) PaintContent(t paint.Target) error {
	return l.PaintChildren(t, "at", func(t paint.Target, slot component.Slot) {
		pos, _ := slot.(Position)
		paint.AddSize(t, "top", pos.Top)
		paint.AddSize(t, "left", pos.Left)
		if pos.ZIndex != 0 {
			t.AddAttribute("z", value.Int(pos.ZIndex))
		}
	})
}
