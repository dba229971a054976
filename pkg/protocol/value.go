package protocol

import (
	"fmt"

	"github.com/vango-dev/tessera/pkg/value"
)

// WriteValue appends v as one kind byte followed by its payload:
//
//	Null      (nothing)
//	Bool      0x00 | 0x01
//	Number    float64, big-endian
//	String    varint length + UTF-8
//	Resource  varint length + reference
//	Array     varint count + values
func (e *Encoder) WriteValue(v value.Value) {
	e.WriteByte(byte(v.Kind()))
	switch v.Kind() {
	case value.KindBool:
		e.WriteBool(v.RawBool())
	case value.KindNumber:
		e.WriteFloat64(v.RawNumber())
	case value.KindString, value.KindResource:
		e.WriteString(v.RawString())
	case value.KindArray:
		e.WriteUvarint(uint64(v.Len()))
		for i := range v.Len() {
			e.WriteValue(v.Index(i))
		}
	}
}

// ReadValue reads a value written by WriteValue.
func (d *Decoder) ReadValue() (value.Value, error) {
	return d.readValue(&depth{max: d.limits.MaxValueDepth})
}

func (d *Decoder) readValue(dc *depth) (value.Value, error) {
	k, err := d.ReadByte()
	if err != nil {
		return value.Null(), err
	}
	switch value.Kind(k) {
	case value.KindNull:
		return value.Null(), nil
	case value.KindBool:
		b, err := d.ReadBool()
		return value.Bool(b), err
	case value.KindNumber:
		f, err := d.ReadFloat64()
		return value.Float(f), err
	case value.KindString:
		s, err := d.ReadString()
		return value.String(s), err
	case value.KindResource:
		s, err := d.ReadString()
		return value.Resource(s), err
	case value.KindArray:
		if err := dc.enter(); err != nil {
			return value.Null(), err
		}
		defer dc.leave()
		n, err := d.ReadCount()
		if err != nil {
			return value.Null(), err
		}
		elems := make([]value.Value, n)
		for i := range elems {
			if elems[i], err = d.readValue(dc); err != nil {
				return value.Null(), err
			}
		}
		return value.Array(elems...), nil
	}
	return value.Null(), fmt.Errorf("%w: 0x%02x", ErrUnknownKind, k)
}
