package widget

import (
	"github.com/vango-dev/tessera/pkg/component"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

// CheckBox holds a boolean in the "checked" variable.
type CheckBox struct {
	component.Base
	checked bool
}

// NewCheckBox creates an unchecked box.
func NewCheckBox(caption string) *CheckBox {
	c := &CheckBox{}
	c.Init(c, "checkbox")
	c.SetCaption(caption)
	return c
}

// Checked reports whether the box is ticked.
func (c *CheckBox) Checked() bool { return c.checked }

// SetChecked ticks or clears the box and fires a value change.
func (c *CheckBox) SetChecked(checked bool) {
	if c.checked == checked {
		return
	}
	c.checked = checked
	c.MarkDirty()
	c.Fire(component.EventValueChange, value.Bool(checked))
}

// ApplyVariable implements component.Component.
func (c *CheckBox) ApplyVariable(name string, v value.Value) (bool, error) {
	if name != "checked" {
		return false, nil
	}
	checked, err := v.AsBool()
	if err != nil {
		return false, component.Invalid("checked: %v", err)
	}
	if checked == c.checked {
		return false, nil
	}
	c.SetChecked(checked)
	return true, nil
}

// PaintContent implements component.ContentPainter.
func (c *CheckBox) PaintContent(t paint.Target) error {
	t.AddVariable("checked", value.Bool(c.checked))
	return nil
}
