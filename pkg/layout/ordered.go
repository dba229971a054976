package layout

import (
	"github.com/vango-dev/tessera/pkg/component"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

// Orientation is the stacking direction of an OrderedLayout or SplitPanel.
type Orientation uint8

const (
	Vertical Orientation = iota
	Horizontal
)

// String returns the wire name of the orientation.
func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// OrderedLayout lays out its children one after another.
type OrderedLayout struct {
	component.ContainerBase
	orientation Orientation
	spacing     bool
	margin      bool
}

// NewOrderedLayout creates an empty layout with the given orientation.
func NewOrderedLayout(o Orientation) *OrderedLayout {
	l := &OrderedLayout{orientation: o}
	l.Init(l, "orderedlayout")
	return l
}

// NewVerticalLayout creates a vertical layout holding children.
func NewVerticalLayout(children ...component.Component) *OrderedLayout {
	l := NewOrderedLayout(Vertical)
	for _, c := range children {
		_ = l.AddComponent(c)
	}
	return l
}

// NewHorizontalLayout creates a horizontal layout holding children.
func NewHorizontalLayout(children ...component.Component) *OrderedLayout {
	l := NewOrderedLayout(Horizontal)
	for _, c := range children {
		_ = l.AddComponent(c)
	}
	return l
}

// Orientation returns the direction children are laid out in.
func (l *OrderedLayout) Orientation() Orientation { return l.orientation }

// SetOrientation changes the layout direction.
func (l *OrderedLayout) SetOrientation(o Orientation) {
	if l.orientation == o {
		return
	}
	l.orientation = o
	l.MarkDirty()
}

// Spacing reports whether children are separated by a gap.
func (l *OrderedLayout) Spacing() bool { return l.spacing }

// SetSpacing turns the gap between children on or off.
func (l *OrderedLayout) SetSpacing(on bool) {
	if l.spacing == on {
		return
	}
	l.spacing = on
	l.MarkDirty()
}

// Margin reports whether the layout keeps a margin around its children.
func (l *OrderedLayout) Margin() bool { return l.margin }

// SetMargin turns the outer margin on or off.
func (l *OrderedLayout) SetMargin(on bool) {
	if l.margin == on {
		return
	}
	l.margin = on
	l.MarkDirty()
}

// AddComponentAt inserts c before the child at index. An index past the end
// appends.
func (l *OrderedLayout) AddComponentAt(c component.Component, index int) error {
	if index < 0 {
		index = 0
	}
	return l.InsertComponent(c, index, nil)
}

// SetComponentAlignment sets the cell alignment of child c.
func (l *OrderedLayout) SetComponentAlignment(c component.Component, a paint.Alignment) error {
	var slot component.Slot
	if a != paint.AlignUnset {
		slot = a
	}
	return l.SetSlot(c, slot)
}

// ComponentAlignment returns the cell alignment of child c.
func (l *OrderedLayout) ComponentAlignment(c component.Component) paint.Alignment {
	slot, _ := l.SlotOf(c)
	a, _ := slot.(paint.Alignment)
	return a
}

// PaintContent implements component.ContentPainter.
func (l *OrderedLayout) PaintContent(t paint.Target) error {
	t.AddAttribute("orientation", value.String(l.orientation.String()))
	if l.spacing {
		t.AddAttribute("spacing", value.Bool(true))
	}
	if l.margin {
		t.AddAttribute("margin", value.Bool(true))
	}
	return l.PaintChildren(t, "cell", func(t paint.Target, slot component.Slot) {
		if a, ok := slot.(paint.Alignment); ok {
			paint.AddAlignment(t, "align", a)
		}
	})
}
