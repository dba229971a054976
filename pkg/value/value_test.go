package value

import (
	"errors"
	"math"
	"testing"
)

func TestAsBool(t *testing.T) {
	tests := []struct {
		name    string
		in      Value
		want    bool
		wantErr bool
	}{
		{"bool true", Bool(true), true, false},
		{"bool false", Bool(false), false, false},
		{"string true", String("true"), true, false},
		{"string padded", String(" false "), false, false},
		{"number one", Int(1), true, false},
		{"number zero", Int(0), false, false},
		{"number two", Int(2), false, true},
		{"garbage string", String("yes please"), false, true},
		{"null", Null(), false, true},
		{"array", Strings("true"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.AsBool()
			if (err != nil) != tt.wantErr {
				t.Fatalf("AsBool() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrConversion) {
				t.Errorf("error %v does not wrap ErrConversion", err)
			}
			if got != tt.want {
				t.Errorf("AsBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		name    string
		in      Value
		want    int
		wantErr bool
	}{
		{"int", Int(42), 42, false},
		{"float truncates", Float(41.9), 41, false},
		{"negative", Int(-7), -7, false},
		{"numeric string", String("150"), 150, false},
		{"float string", String("3.5"), 3, false},
		{"bool", Bool(true), 1, false},
		{"not a number", String("abc"), 0, true},
		{"nan", Float(math.NaN()), 0, true},
		{"inf", Float(math.Inf(1)), 0, true},
		{"huge", Float(1e300), 0, true},
		{"resource", Resource("res/1/a.png"), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.AsInt()
			if (err != nil) != tt.wantErr {
				t.Fatalf("AsInt() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("AsInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAsString(t *testing.T) {
	if s, err := Float(2.5).AsString(); err != nil || s != "2.5" {
		t.Errorf("Float(2.5).AsString() = %q, %v", s, err)
	}
	if s, err := Bool(false).AsString(); err != nil || s != "false" {
		t.Errorf("Bool(false).AsString() = %q, %v", s, err)
	}
	if _, err := Null().AsString(); err == nil {
		t.Error("Null().AsString() should fail")
	}
	if _, err := Strings("a").AsString(); err == nil {
		t.Error("array AsString() should fail")
	}
}

func TestAsStrings(t *testing.T) {
	got, err := Array(String("a"), Int(2)).AsStrings()
	if err != nil {
		t.Fatalf("AsStrings() error = %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "2" {
		t.Errorf("AsStrings() = %v", got)
	}

	got, err = String("solo").AsStrings()
	if err != nil || len(got) != 1 || got[0] != "solo" {
		t.Errorf("String.AsStrings() = %v, %v", got, err)
	}

	if _, err := Array(Null()).AsStrings(); err == nil {
		t.Error("array with null should fail")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{Null(), Null(), true},
		{Int(1), Float(1), true},
		{Int(1), String("1"), false},
		{String("x"), Resource("x"), false},
		{Strings("a", "b"), Strings("a", "b"), true},
		{Strings("a", "b"), Strings("b", "a"), false},
		{Array(Bool(true)), Array(Bool(true), Bool(true)), false},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestArrayIsCopied(t *testing.T) {
	src := []Value{Int(1), Int(2)}
	v := Array(src...)
	src[0] = Int(99)
	if !Equal(v.Index(0), Int(1)) {
		t.Error("Array must copy its elements")
	}
	elems := v.Elements()
	elems[1] = Int(42)
	if !Equal(v.Index(1), Int(2)) {
		t.Error("Elements must return a copy")
	}
	if !v.Index(5).IsNull() {
		t.Error("out of range Index should be Null")
	}
}

func TestFromAnyRoundTrip(t *testing.T) {
	in := Array(Bool(true), Float(1.5), String("s"), Resource("res/x"), Null())
	got, err := FromAny(in.ToAny())
	if err != nil {
		t.Fatalf("FromAny() error = %v", err)
	}
	if !Equal(got, in) {
		t.Errorf("FromAny(ToAny()) = %#v, want %#v", got, in)
	}

	if _, err := FromAny(struct{}{}); !errors.Is(err, ErrConversion) {
		t.Errorf("FromAny(struct) error = %v, want ErrConversion", err)
	}
}
