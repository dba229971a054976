package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull     Kind = 0x00 // Unset sentinel, never sent as an attribute
	KindBool     Kind = 0x01
	KindNumber   Kind = 0x02
	KindString   Kind = 0x03
	KindResource Kind = 0x04 // Reference to a resource served out of band
	KindArray    Kind = 0x05
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindResource:
		return "Resource"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// ErrConversion is returned when a Value cannot be converted to the
// requested Go type.
var ErrConversion = errors.New("value: conversion failed")

// Value is an immutable tagged variant. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string // String and Resource payload
	arr  []Value
}

// Null returns the unset sentinel.
func Null() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a numeric Value holding i.
func Int(i int) Value { return Value{kind: KindNumber, n: float64(i)} }

// Float returns a numeric Value holding f.
func Float(f float64) Value { return Value{kind: KindNumber, n: f} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Resource returns a resource reference Value.
func Resource(ref string) Value { return Value{kind: KindResource, s: ref} }

// Array returns an array Value. The elements are copied.
func Array(vs ...Value) Value {
	arr := make([]Value, len(vs))
	copy(arr, vs)
	return Value{kind: KindArray, arr: arr}
}

// Strings returns an array Value of strings.
func Strings(ss ...string) Value {
	arr := make([]Value, len(ss))
	for i, s := range ss {
		arr[i] = String(s)
	}
	return Value{kind: KindArray, arr: arr}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the unset sentinel.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Len returns the number of elements of an array Value, 0 otherwise.
func (v Value) Len() int { return len(v.arr) }

// Index returns the i-th element of an array Value.
func (v Value) Index(i int) Value {
	if i < 0 || i >= len(v.arr) {
		return Null()
	}
	return v.arr[i]
}

// Elements returns a copy of the elements of an array Value.
func (v Value) Elements() []Value {
	if v.kind != KindArray {
		return nil
	}
	out := make([]Value, len(v.arr))
	copy(out, v.arr)
	return out
}

// AsBool converts v to a bool. Strings "true"/"false" and numbers 0/1 are
// accepted since clients send loosely typed values.
func (v Value) AsBool() (bool, error) {
	switch v.kind {
	case KindBool:
		return v.b, nil
	case KindNumber:
		switch v.n {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case KindString:
		if b, err := strconv.ParseBool(strings.TrimSpace(v.s)); err == nil {
			return b, nil
		}
	}
	return false, convErr(v, "bool")
}

// AsFloat converts v to a float64. Numeric strings are parsed; NaN and
// infinities are rejected.
func (v Value) AsFloat() (float64, error) {
	var f float64
	switch v.kind {
	case KindNumber:
		f = v.n
	case KindString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0, convErr(v, "number")
		}
		f = parsed
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, convErr(v, "number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, convErr(v, "number")
	}
	return f, nil
}

// AsInt converts v to an int, truncating toward zero. Values outside the
// int range are rejected.
func (v Value) AsInt() (int, error) {
	f, err := v.AsFloat()
	if err != nil {
		return 0, convErr(v, "int")
	}
	if f > math.MaxInt || f < math.MinInt {
		return 0, convErr(v, "int")
	}
	return int(f), nil
}

// AsString converts v to a string. Arrays and Null do not convert.
func (v Value) AsString() (string, error) {
	switch v.kind {
	case KindString, KindResource:
		return v.s, nil
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64), nil
	case KindBool:
		return strconv.FormatBool(v.b), nil
	}
	return "", convErr(v, "string")
}

// AsStrings converts an array Value to a []string. A single string is
// treated as a one-element array.
func (v Value) AsStrings() ([]string, error) {
	switch v.kind {
	case KindString:
		return []string{v.s}, nil
	case KindArray:
		out := make([]string, 0, len(v.arr))
		for _, e := range v.arr {
			s, err := e.AsString()
			if err != nil {
				return nil, convErr(v, "[]string")
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, convErr(v, "[]string")
}

// Ref returns the resource reference held by v.
func (v Value) Ref() (string, bool) {
	if v.kind != KindResource {
		return "", false
	}
	return v.s, true
}

// RawBool returns the boolean payload without conversion.
func (v Value) RawBool() bool { return v.b }

// RawNumber returns the numeric payload without conversion.
func (v Value) RawNumber() float64 { return v.n }

// RawString returns the string payload of a String or Resource Value.
func (v Value) RawString() string { return v.s }

// Equal reports whether a and b hold the same variant and payload.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString, KindResource:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Equal reports whether v equals other. It allows go-cmp to compare Values.
func (v Value) Equal(other Value) bool { return Equal(v, other) }

// GoString renders v for debugging and test failure output.
func (v Value) GoString() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindResource:
		return "res(" + v.s + ")"
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.GoString()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "?"
}

// FromAny converts a decoded JSON/CBOR value into a Value.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int:
		return Int(t), nil
	case int64:
		return Float(float64(t)), nil
	case uint64:
		return Float(float64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case []string:
		return Strings(t...), nil
	case []any:
		arr := make([]Value, 0, len(t))
		for _, e := range t {
			ev, err := FromAny(e)
			if err != nil {
				return Null(), err
			}
			arr = append(arr, ev)
		}
		return Value{kind: KindArray, arr: arr}, nil
	case map[string]any:
		if ref, ok := t["res"].(string); ok && len(t) == 1 {
			return Resource(ref), nil
		}
	}
	return Null(), fmt.Errorf("%w: unsupported type %T", ErrConversion, x)
}

// ToAny converts v into plain Go values (nil, bool, float64, string, []any).
// Resources become maps so they survive generic codecs.
func (v Value) ToAny() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindResource:
		return map[string]any{"res": v.s}
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.ToAny()
		}
		return out
	}
	return nil
}

func convErr(v Value, target string) error {
	return fmt.Errorf("%w: %s %s to %s", ErrConversion, v.kind, v.GoString(), target)
}
