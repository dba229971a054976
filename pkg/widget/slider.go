package widget

import (
	"fmt"
	"math"

	"github.com/vango-dev/tessera/pkg/component"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

// Slider selects a number in [Min, Max], held in the "value" variable.
// Inbound values are rounded to the resolution (decimal places) and then
// clamped to the range.
type Slider struct {
	component.Base
	min, max    float64
	resolution  int
	value       float64
	orientation string
}

// NewSlider creates a slider over [lo, hi] with integer resolution,
// positioned at lo. It panics if lo > hi.
func NewSlider(caption string, lo, hi float64) *Slider {
	if lo > hi || math.IsNaN(lo) || math.IsNaN(hi) {
		panic(fmt.Sprintf("widget: slider range [%v, %v] is empty", lo, hi))
	}
	s := &Slider{min: lo, max: hi, value: lo}
	s.Init(s, "slider")
	s.SetCaption(caption)
	return s
}

// Range, precision and current position of the slider.
func (s *Slider) Min() float64 { return s.min }
func (s *Slider) Max() float64 { return s.max }
func (s *Slider) Resolution() int { return s.resolution }
func (s *Slider) Value() float64 { return s.value }

// SetResolution sets the number of decimal places kept, between 0 and 8.
func (s *Slider) SetResolution(places int) {
	places = min(max(places, 0), 8)
	if s.resolution == places {
		return
	}
	s.resolution = places
	s.MarkDirty()
	s.set(s.normalize(s.value))
}

// SetVertical switches the slider to a vertical track.
func (s *Slider) SetVertical(vertical bool) {
	o := ""
	if vertical {
		o = "vertical"
	}
	if s.orientation == o {
		return
	}
	s.orientation = o
	s.MarkDirty()
}

// SetValue moves the slider. Out-of-range values are clamped.
func (s *Slider) SetValue(v float64) {
	if math.IsNaN(v) {
		return
	}
	s.set(s.normalize(v))
}

func (s *Slider) normalize(v float64) float64 {
	scale := math.Pow10(s.resolution)
	v = math.Round(v*scale) / scale
	return min(max(v, s.min), s.max)
}

func (s *Slider) set(v float64) bool {
	if v == s.value {
		return false
	}
	s.value = v
	s.MarkDirty()
	s.Fire(component.EventValueChange, value.Float(v))
	return true
}

// ApplyVariable implements component.Component.
func (s *Slider) ApplyVariable(name string, v value.Value) (bool, error) {
	if name != "value" {
		return false, nil
	}
	f, err := v.AsFloat()
	if err != nil {
		return false, component.Invalid("value: %v", err)
	}
	n := s.normalize(f)
	changed := s.set(n)
	return changed || n != f, nil
}

// PaintContent implements component.ContentPainter.
func (s *Slider) PaintContent(t paint.Target) error {
	t.AddAttribute("min", value.Float(s.min))
	t.AddAttribute("max", value.Float(s.max))
	if s.resolution > 0 {
		t.AddAttribute("resolution", value.Int(s.resolution))
	}
	if s.orientation != "" {
		t.AddAttribute("orientation", value.String(s.orientation))
	}
	t.AddVariable("value", value.Float(s.value))
	return nil
}
