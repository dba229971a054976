package protocol

import "math"

// Encoder appends binary data to a growable buffer. Writes cannot fail.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an encoder with a small initial buffer.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 256)}
}

// Reset empties the encoder, keeping its buffer.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the encoded data. The slice is only valid until the next
// write or Reset.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

func (e *Encoder) Len() int {
	return len(e.buf)
}

// WriteByte appends b.
func (e *Encoder) WriteByte(b byte) {
	e.buf = append(e.buf, b)
}

// WriteBytes appends b without a length prefix.
func (e *Encoder) WriteBytes(b []byte) {
	e.buf = append(e.buf, b...)
}

// WriteUvarint appends v as a base-128 varint.
func (e *Encoder) WriteUvarint(v uint64) {
	e.buf = AppendUvarint(e.buf, v)
}

// WriteSvarint appends v zigzag-encoded.
func (e *Encoder) WriteSvarint(v int64) {
	e.buf = AppendUvarint(e.buf, zigzag(v))
}

// WriteString appends a varint length followed by the bytes of s.
func (e *Encoder) WriteString(s string) {
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// WriteBool appends 0x01 or 0x00.
func (e *Encoder) WriteBool(b bool) {
	if b {
		e.buf = append(e.buf, 0x01)
		return
	}
	e.buf = append(e.buf, 0x00)
}

// WriteUint32 appends v big-endian.
func (e *Encoder) WriteUint32(v uint32) {
	e.buf = append(e.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// WriteUint64 appends v big-endian.
func (e *Encoder) WriteUint64(v uint64) {
	e.buf = append(e.buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// WriteFloat64 appends the IEEE 754 bits of v big-endian.
func (e *Encoder) WriteFloat64(v float64) {
	e.WriteUint64(math.Float64bits(v))
}
