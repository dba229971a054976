package widget

import (
	"github.com/vango-dev/tessera/pkg/component"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

// TextField edits a single line of text held in the "text" variable.
// Input longer than MaxLength runes is truncated.
type TextField struct {
	component.Base
	text      string
	maxLength int
	prompt    string
}

// NewTextField creates an empty field.
func NewTextField(caption string) *TextField {
	f := &TextField{}
	f.Init(f, "textfield")
	f.SetCaption(caption)
	return f
}

// Value returns the current text.
func (f *TextField) Value() string { return f.text }

// SetValue replaces the text, truncating it to the maximum length.
func (f *TextField) SetValue(s string) {
	f.set(truncate(s, f.maxLength))
}

func (f *TextField) set(s string) bool {
	if s == f.text {
		return false
	}
	f.text = s
	f.MarkDirty()
	f.Fire(component.EventValueChange, value.String(s))
	return true
}

// MaxLength returns the maximum length in runes; 0 means unlimited.
func (f *TextField) MaxLength() int { return f.maxLength }

// SetMaxLength sets the maximum length and truncates the current text to
// it. Negative values mean unlimited.
func (f *TextField) SetMaxLength(n int) {
	n = max(n, 0)
	if f.maxLength == n {
		return
	}
	f.maxLength = n
	f.MarkDirty()
	f.set(truncate(f.text, n))
}

// Prompt returns the placeholder shown while the field is empty.
func (f *TextField) Prompt() string { return f.prompt }

// SetPrompt sets the placeholder text.
func (f *TextField) SetPrompt(prompt string) {
	if f.prompt == prompt {
		return
	}
	f.prompt = prompt
	f.MarkDirty()
}

// ApplyVariable implements component.Component.
func (f *TextField) ApplyVariable(name string, v value.Value) (bool, error) {
	if name != "text" {
		return false, nil
	}
	s, err := v.AsString()
	if err != nil {
		return false, component.Invalid("text: %v", err)
	}
	cut := truncate(s, f.maxLength)
	changed := f.set(cut)
	// The client still shows the long text; repaint it.
	return changed || cut != s, nil
}

// PaintContent implements component.ContentPainter.
func (f *TextField) PaintContent(t paint.Target) error {
	if f.maxLength > 0 {
		t.AddAttribute("maxlength", value.Int(f.maxLength))
	}
	if f.prompt != "" {
		t.AddAttribute("prompt", value.String(f.prompt))
	}
	t.AddVariable("text", value.String(f.text))
	return nil
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
