package widget

import (
	"slices"

	"github.com/vango-dev/tessera/pkg/component"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

// Option is one choice of a Select.
type Option struct {
	Key     string
	Caption string
}

// Select picks at most one option. The selected key travels in the
// "selected" variable; the empty key means no selection.
//
// A key the select does not offer is ignored and the previous selection
// kept. The select reports itself changed so that the client is repainted
// with the selection the server holds.
type Select struct {
	component.Base
	options    []Option
	selected   string
	allowEmpty bool
}

// NewSelect creates a select offering options. The empty selection is
// allowed.
func NewSelect(caption string, options ...Option) *Select {
	s := &Select{options: slices.Clone(options), allowEmpty: true}
	s.Init(s, "select")
	s.SetCaption(caption)
	return s
}

// Options returns a copy of the options.
func (s *Select) Options() []Option { return slices.Clone(s.options) }

// SetOptions replaces the options. A selection that is no longer offered is
// cleared.
func (s *Select) SetOptions(options ...Option) {
	s.options = slices.Clone(options)
	s.MarkDirty()
	if !s.has(s.selected) {
		s.set("")
	}
}

// SetEmptyAllowed controls whether the client may clear the selection.
func (s *Select) SetEmptyAllowed(allowed bool) {
	if s.allowEmpty == allowed {
		return
	}
	s.allowEmpty = allowed
	s.MarkDirty()
}

// Selected returns the selected key, or "".
func (s *Select) Selected() string { return s.selected }

// SetSelected selects key. It reports false, changing nothing, when key is
// not offered.
func (s *Select) SetSelected(key string) bool {
	if key != "" && !s.has(key) {
		return false
	}
	s.set(key)
	return true
}

func (s *Select) has(key string) bool {
	return slices.ContainsFunc(s.options, func(o Option) bool { return o.Key == key })
}

func (s *Select) set(key string) bool {
	if s.selected == key {
		return false
	}
	s.selected = key
	s.MarkDirty()
	s.Fire(component.EventValueChange, selectedValue(key))
	return true
}

func selectedValue(key string) value.Value {
	if key == "" {
		return value.Null()
	}
	return value.String(key)
}

// ApplyVariable implements component.Component.
func (s *Select) ApplyVariable(name string, v value.Value) (bool, error) {
	if name != "selected" {
		return false, nil
	}
	var key string
	if !v.IsNull() {
		k, err := v.AsString()
		if err != nil {
			return false, component.Invalid("selected: %v", err)
		}
		key = k
	}
	if key == "" && !s.allowEmpty {
		return true, nil
	}
	if key != "" && !s.has(key) {
		return true, nil
	}
	return s.set(key), nil
}

// PaintContent implements component.ContentPainter.
func (s *Select) PaintContent(t paint.Target) error {
	keys := make([]string, len(s.options))
	captions := make([]string, len(s.options))
	for i, o := range s.options {
		keys[i], captions[i] = o.Key, o.Caption
	}
	t.AddAttribute("options", value.Strings(keys...))
	t.AddAttribute("captions", value.Strings(captions...))
	if !s.allowEmpty {
		t.AddAttribute("required", value.Bool(true))
	}
	t.AddVariable("selected", value.String(s.selected))
	return nil
}
