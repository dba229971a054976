package layout

import (
	"github.com/vango-dev/tessera/pkg/component"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

// Pane names a SplitPanel slot.
type Pane string

const (
	First  Pane = "first"
	Second Pane = "second"
)

// SplitPanel shows two children side by side or stacked, separated by a
// splitter the user can drag unless the panel is locked.
//
// The splitter position is the "position" variable. Percentages are clamped
// to [0, 100]; moving it fires component.EventSplitterMove with the new
// paint.Size as payload.
type SplitPanel struct {
	component.ContainerBase
	orientation Orientation
	position    paint.Size
	locked      bool
}

// NewSplitPanel creates an empty split panel with the splitter centered.
func NewSplitPanel(o Orientation) *SplitPanel {
	p := &SplitPanel{orientation: o, position: paint.Percent(50)}
	p.Init(p, "splitpanel")
	p.SetLimit(2)
	return p
}

// NewHorizontalSplitPanel creates a panel with the panes side by side.
func NewHorizontalSplitPanel() *SplitPanel { return NewSplitPanel(Horizontal) }

// NewVerticalSplitPanel creates a panel with the panes stacked.
func NewVerticalSplitPanel() *SplitPanel { return NewSplitPanel(Vertical) }

// Orientation returns how the two panes are arranged.
func (p *SplitPanel) Orientation() Orientation { return p.orientation }

// AddComponent puts c into the first free pane. It returns
// component.ErrContainerFull when both panes are taken.
func (p *SplitPanel) AddComponent(c component.Component) error {
	if c == nil {
		return component.ErrNilComponent
	}
	if p.IndexOf(c) >= 0 {
		return nil
	}
	switch {
	case p.ComponentIn(First) == nil:
		return p.place(c, First)
	case p.ComponentIn(Second) == nil:
		return p.place(c, Second)
	default:
		return component.ErrContainerFull
	}
}

// First returns the component in the first pane, or nil.
func (p *SplitPanel) First() component.Component { return p.ComponentIn(First) }

// Second returns the component in the second pane, or nil.
func (p *SplitPanel) Second() component.Component { return p.ComponentIn(Second) }

// SetFirst puts c into the first pane, replacing the occupant. A nil c
// empties the pane.
func (p *SplitPanel) SetFirst(c component.Component) error { return p.place(c, First) }

// SetSecond puts c into the second pane, replacing the occupant. A nil c
// empties the pane.
func (p *SplitPanel) SetSecond(c component.Component) error { return p.place(c, Second) }

func (p *SplitPanel) place(c component.Component, pane Pane) error {
	cur := p.ComponentIn(pane)
	switch {
	case cur == c:
		return nil
	case c == nil:
		p.RemoveComponent(cur)
		return nil
	case cur != nil:
		// Swaps the panes when c is the other child.
		return p.ReplaceComponent(cur, c)
	case p.IndexOf(c) >= 0:
		return p.SetSlot(c, pane)
	}
	index := -1
	if pane == First {
		index = 0
	}
	return p.InsertComponent(c, index, pane)
}

// Position returns the splitter position.
func (p *SplitPanel) Position() paint.Size { return p.position }

// SetPosition moves the splitter. Percentages are clamped to [0, 100];
// an unset size recenters it.
func (p *SplitPanel) SetPosition(s paint.Size) {
	s = clampPosition(s)
	if p.position == s {
		return
	}
	p.position = s
	p.MarkDirty()
}

// IsLocked reports whether the user may move the splitter.
func (p *SplitPanel) IsLocked() bool { return p.locked }

// SetLocked fixes or frees the splitter position.
func (p *SplitPanel) SetLocked(locked bool) {
	if p.locked == locked {
		return
	}
	p.locked = locked
	p.MarkDirty()
}

func clampPosition(s paint.Size) paint.Size {
	if s.IsUnset() {
		return paint.Percent(50)
	}
	if s.Unit == paint.UnitPercentage && s.Value > 100 {
		s.Value = 100
	}
	return s
}

// ApplyVariable implements component.Component.
func (p *SplitPanel) ApplyVariable(name string, v value.Value) (bool, error) {
	if name != "position" {
		return false, nil
	}
	if p.locked {
		return false, component.Invalid("splitter is locked")
	}

	var s paint.Size
	switch v.Kind() {
	case value.KindNumber:
		// A bare number keeps the current unit.
		n, err := v.AsFloat()
		if err != nil {
			return false, component.Invalid("position: %v", err)
		}
		if n < 0 {
			n = 0
		}
		s = paint.Size{Value: n, Unit: p.position.Unit}
	case value.KindString:
		var err error
		if s, err = paint.ParseSize(v.RawString()); err != nil || s.IsUnset() {
			return false, component.Invalid("position %q", v.RawString())
		}
	default:
		return false, component.Invalid("position of kind %s", v.Kind())
	}

	clamped := clampPosition(s)
	moved := clamped != p.position
	p.position = clamped
	if moved {
		p.Fire(component.EventSplitterMove, clamped)
	}
	return moved || clamped != s, nil
}

// PaintContent implements component.ContentPainter.
func (p *SplitPanel) PaintContent(t paint.Target) error {
	t.AddAttribute("orientation", value.String(p.orientation.String()))
	if p.locked {
		t.AddAttribute("locked", value.Bool(true))
	}
	t.AddVariable("position", value.String(p.position.String()))

	for _, pane := range [...]Pane{First, Second} {
		t.StartTag("pane")
		t.AddAttribute("slot", value.String(string(pane)))
		var err error
		if c := p.ComponentIn(pane); c != nil {
			err = c.Paint(t)
		}
		t.EndTag()
		if err != nil {
			return err
		}
	}
	return nil
}
