package widget

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/tessera/pkg/component"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

func paintNode(t *testing.T, c component.Component) *paint.Node {
	t.Helper()
	dt := paint.NewDocumentTarget(false)
	if err := c.Paint(dt); err != nil {
		t.Fatalf("Paint() error = %v", err)
	}
	doc, err := dt.Document()
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	return doc.Changes[0]
}

// changes records the payloads of value change events.
func changes(c component.Component) *[]value.Value {
	var got []value.Value
	component.OnValueChange(c, func(_ component.Component, v value.Value) {
		got = append(got, v)
	})
	return &got
}

func TestButtonClick(t *testing.T) {
	clicks := 0
	b := NewButton("Save", func(*Button) { clicks++ })

	tests := []struct {
		in      value.Value
		clicks  int
		wantErr bool
	}{
		{value.Bool(true), 1, false},
		{value.String("true"), 2, false},
		{value.Bool(false), 2, false},
		{value.String("pressed"), 2, true},
	}
	for _, tt := range tests {
		changed, err := b.ApplyVariable("state", tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ApplyVariable(%#v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if changed {
			t.Errorf("ApplyVariable(%#v) reported a change", tt.in)
		}
		if clicks != tt.clicks {
			t.Errorf("after %#v clicks = %d, want %d", tt.in, clicks, tt.clicks)
		}
	}

	if v, _ := paintNode(t, b).Var("state"); !value.Equal(v, value.Bool(false)) {
		t.Errorf("state = %#v, want false", v)
	}
}

func TestButtonDisabledIgnoresPress(t *testing.T) {
	clicks := 0
	b := NewButton("Go", func(*Button) { clicks++ })
	b.SetEnabled(false)

	component.ChangeVariables(b, map[string]value.Value{"state": value.Bool(true)})
	b.Click()
	if clicks != 0 {
		t.Errorf("disabled button clicked %d times", clicks)
	}
}

func TestTextFieldTruncates(t *testing.T) {
	f := NewTextField("Name")
	f.SetMaxLength(5)
	got := changes(f)

	changed, err := f.ApplyVariable("text", value.String("héllo world"))
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("changed = false, want true")
	}
	if f.Value() != "héllo" {
		t.Errorf("Value() = %q, want héllo", f.Value())
	}

	// Same truncated result: the client still needs the short text back.
	changed, _ = f.ApplyVariable("text", value.String("héllo there"))
	if !changed {
		t.Error("over-long input not reported as changed")
	}
	if len(*got) != 1 {
		t.Errorf("value change events = %d, want 1", len(*got))
	}

	changed, _ = f.ApplyVariable("text", value.String("héllo"))
	if changed {
		t.Error("identical input reported as changed")
	}

	if _, err := f.ApplyVariable("text", value.Strings("a", "b")); !errors.Is(err, component.ErrInvalidValue) {
		t.Errorf("array input error = %v, want ErrInvalidValue", err)
	}

	f.SetMaxLength(2)
	if f.Value() != "hé" {
		t.Errorf("Value() after SetMaxLength(2) = %q, want hé", f.Value())
	}
}

func TestTextFieldPaint(t *testing.T) {
	f := NewTextField("")
	f.SetValue("x")
	f.SetPrompt("type here")

	n := paintNode(t, f)
	want := []paint.Field{{Name: "prompt", Value: value.String("type here")}}
	if diff := cmp.Diff(want, n.Attrs); diff != "" {
		t.Errorf("attrs mismatch (-want +got):\n%s", diff)
	}
	if v, _ := n.Var("text"); !value.Equal(v, value.String("x")) {
		t.Errorf("text = %#v", v)
	}
}

func TestCheckBox(t *testing.T) {
	tests := []struct {
		name    string
		in      value.Value
		want    bool
		changed bool
		wantErr bool
	}{
		{"bool", value.Bool(true), true, true, false},
		{"string", value.String("true"), true, true, false},
		{"number", value.Int(1), true, true, false},
		{"unchanged", value.Bool(false), false, false, false},
		{"malformed", value.String("yes please"), false, false, true},
		{"null", value.Null(), false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCheckBox("Agree")
			got := changes(c)
			changed, err := c.ApplyVariable("checked", tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, component.ErrInvalidValue) {
				t.Errorf("error %v does not wrap ErrInvalidValue", err)
			}
			if c.Checked() != tt.want || changed != tt.changed {
				t.Errorf("(Checked, changed) = (%v, %v), want (%v, %v)", c.Checked(), changed, tt.want, tt.changed)
			}
			if wantEvents := map[bool]int{true: 1, false: 0}[tt.changed]; len(*got) != wantEvents {
				t.Errorf("events = %d, want %d", len(*got), wantEvents)
			}
		})
	}
}

func TestSliderClampsAndRounds(t *testing.T) {
	tests := []struct {
		name       string
		resolution int
		in         value.Value
		want       float64
		changed    bool
		wantErr    bool
	}{
		{"in range", 0, value.Int(40), 40, true, false},
		{"above max", 0, value.Int(150), 100, true, false},
		{"below min", 0, value.Int(-5), 0, true, false},
		{"string", 0, value.String("12"), 12, true, false},
		{"rounded", 0, value.Float(12.6), 13, true, false},
		{"resolution", 1, value.Float(12.66), 12.7, true, false},
		{"unchanged", 0, value.Int(0), 0, false, false},
		{"malformed", 0, value.String("lots"), 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSlider("Volume", 0, 100)
			s.SetResolution(tt.resolution)
			changed, err := s.ApplyVariable("value", tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if s.Value() != tt.want {
				t.Errorf("Value() = %v, want %v", s.Value(), tt.want)
			}
			if changed != tt.changed {
				t.Errorf("changed = %v, want %v", changed, tt.changed)
			}
		})
	}
}

func TestSliderClampedAtBoundStillReportsChange(t *testing.T) {
	s := NewSlider("", 0, 100)
	s.SetValue(100)
	got := changes(s)

	changed, err := s.ApplyVariable("value", value.Int(250))
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("clamped input not reported as changed")
	}
	if len(*got) != 0 {
		t.Errorf("value change events = %d, want 0", len(*got))
	}
}

func TestSliderEmptyRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewSlider("", 10, 1)
}

func TestSelect(t *testing.T) {
	s := NewSelect("Size",
		Option{Key: "s", Caption: "Small"},
		Option{Key: "m", Caption: "Medium"},
	)
	got := changes(s)

	if changed, err := s.ApplyVariable("selected", value.String("m")); err != nil || !changed {
		t.Fatalf("ApplyVariable(m) = (%v, %v)", changed, err)
	}

	// Unknown key: silently kept, client corrected.
	changed, err := s.ApplyVariable("selected", value.String("xl"))
	if err != nil {
		t.Errorf("unknown key error = %v, want nil", err)
	}
	if !changed {
		t.Error("unknown key not reported as changed")
	}
	if s.Selected() != "m" {
		t.Errorf("Selected() = %q, want m", s.Selected())
	}

	if _, err := s.ApplyVariable("selected", value.Null()); err != nil {
		t.Fatal(err)
	}
	if s.Selected() != "" {
		t.Errorf("Selected() = %q after clearing", s.Selected())
	}

	want := []value.Value{value.String("m"), value.Null()}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	s.SetEmptyAllowed(false)
	s.SetSelected("s")
	if _, err := s.ApplyVariable("selected", value.String("")); err != nil {
		t.Fatal(err)
	}
	if s.Selected() != "s" {
		t.Errorf("required select cleared to %q", s.Selected())
	}

	if s.SetSelected("nope") {
		t.Error("SetSelected(nope) = true")
	}
	s.SetOptions(Option{Key: "m"})
	if s.Selected() != "" {
		t.Errorf("Selected() = %q after its option was removed", s.Selected())
	}
}

func TestSelectPaint(t *testing.T) {
	s := NewSelect("", Option{Key: "a", Caption: "A"}, Option{Key: "b", Caption: "B"})
	s.SetSelected("b")
	n := paintNode(t, s)

	opts, _ := n.Attr("options")
	if diff := cmp.Diff(value.Strings("a", "b"), opts); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
	if v, _ := n.Var("selected"); !value.Equal(v, value.String("b")) {
		t.Errorf("selected = %#v", v)
	}
}

func TestLinkResource(t *testing.T) {
	l := NewLink("Manual", "https://example.com/manual")
	if err := l.SetResource("not-a-ref"); err == nil {
		t.Error("SetResource accepted a malformed reference")
	}

	if v, _ := paintNode(t, l).Attr("src"); v.Kind() != value.KindString {
		t.Errorf("src kind = %v, want string", v.Kind())
	}

	if err := l.SetResource("res/s1/manual.pdf"); err != nil {
		t.Fatal(err)
	}
	v, _ := paintNode(t, l).Attr("src")
	if ref, ok := v.Ref(); !ok || ref != "res/s1/manual.pdf" {
		t.Errorf("src = %#v, want resource ref", v)
	}
}

func TestLabelPaint(t *testing.T) {
	l := NewLabel("<b>hi</b>")
	l.SetContentMode(ContentHTML)
	n := paintNode(t, l)

	want := []paint.Field{
		{Name: "mode", Value: value.String("html")},
		{Name: "content", Value: value.String("<b>hi</b>")},
	}
	if diff := cmp.Diff(want, n.Attrs); diff != "" {
		t.Errorf("attrs mismatch (-want +got):\n%s", diff)
	}
}
