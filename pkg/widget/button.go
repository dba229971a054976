package widget

import (
	"github.com/vango-dev/tessera/pkg/component"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

// Button fires component.EventClick when the client reports a press through
// the "state" variable. The state is momentary: it always reads false on the
// server.
type Button struct {
	component.Base
}

// NewButton creates a button; onClick may be nil.
func NewButton(caption string, onClick func(*Button)) *Button {
	b := &Button{}
	b.Init(b, "button")
	b.SetCaption(caption)
	if onClick != nil {
		component.OnClick(b, func(component.Component) { onClick(b) })
	}
	return b
}

// Click fires the click event as if the client pressed the button.
func (b *Button) Click() {
	if !b.IsEnabled() || b.IsReadOnly() {
		return
	}
	b.Fire(component.EventClick, nil)
}

// ApplyVariable implements component.Component.
func (b *Button) ApplyVariable(name string, v value.Value) (bool, error) {
	if name != "state" {
		return false, nil
	}
	pressed, err := v.AsBool()
	if err != nil {
		return false, component.Invalid("state: %v", err)
	}
	if pressed {
		b.Fire(component.EventClick, nil)
	}
	return false, nil
}

// PaintContent implements component.ContentPainter.
func (b *Button) PaintContent(t paint.Target) error {
	t.AddVariable("state", value.Bool(false))
	return nil
}
