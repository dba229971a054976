package protocol

import (
	"errors"
	"math"
)

// Decoding errors.
var (
	ErrBufferTooShort     = errors.New("protocol: buffer too short")
	ErrVarintOverflow     = errors.New("protocol: varint overflow")
	ErrInvalidBool        = errors.New("protocol: invalid boolean value")
	ErrAllocationTooLarge = errors.New("protocol: allocation size exceeds limit")
	ErrCollectionTooLarge = errors.New("protocol: collection count exceeds limit")
	ErrMaxDepthExceeded   = errors.New("protocol: maximum nesting depth exceeded")
	ErrUnknownKind        = errors.New("protocol: unknown value kind")
	ErrTrailingBytes      = errors.New("protocol: trailing bytes after message")
)

// Decoder reads binary data from a byte slice.
type Decoder struct {
	buf    []byte
	pos    int
	limits Limits
}

// NewDecoder creates a decoder over buf with the default limits.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf, limits: DefaultLimits()}
}

// NewDecoderWithLimits creates a decoder over buf with custom limits.
func NewDecoderWithLimits(buf []byte, l Limits) *Decoder {
	return &Decoder{buf: buf, limits: l.withDefaults()}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// EOF reports whether every byte has been read.
func (d *Decoder) EOF() bool {
	return d.pos >= len(d.buf)
}

// Finish returns ErrTrailingBytes when unread bytes remain.
func (d *Decoder) Finish() error {
	if !d.EOF() {
		return ErrTrailingBytes
	}
	return nil
}

// ReadByte reads one byte.
func (d *Decoder) ReadByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, ErrBufferTooShort
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

// ReadUvarint reads a base-128 varint.
func (d *Decoder) ReadUvarint() (uint64, error) {
	var v uint64
	for shift := uint(0); ; shift += 7 {
		if shift >= 64 {
			return 0, ErrVarintOverflow
		}
		b, err := d.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, nil
		}
	}
}

// ReadSvarint reads a zigzag-encoded varint.
func (d *Decoder) ReadSvarint() (int64, error) {
	u, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	return unzigzag(u), nil
}

// ReadString reads a length-prefixed string.
func (d *Decoder) ReadString() (string, error) {
	n, err := d.readLen()
	if err != nil {
		return "", err
	}
	s := string(d.buf[d.pos : d.pos+n])
	d.pos += n
	return s, nil
}

func (d *Decoder) readLen() (int, error) {
	length, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if length > uint64(d.limits.MaxAllocation) {
		return 0, ErrAllocationTooLarge
	}
	if length > uint64(d.Remaining()) {
		return 0, ErrBufferTooShort
	}
	return int(length), nil
}

// ReadBool reads a boolean byte. Only 0x00 and 0x01 are accepted.
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	}
	return false, ErrInvalidBool
}

// ReadUint32 reads a big-endian uint32.
func (d *Decoder) ReadUint32() (uint32, error) {
	if d.Remaining() < 4 {
		return 0, ErrBufferTooShort
	}
	b := d.buf[d.pos:]
	d.pos += 4
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// ReadUint64 reads a big-endian uint64.
func (d *Decoder) ReadUint64() (uint64, error) {
	hi, err := d.ReadUint32()
	if err != nil {
		return 0, err
	}
	lo, err := d.ReadUint32()
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

// ReadFloat64 reads a big-endian IEEE 754 double.
func (d *Decoder) ReadFloat64() (float64, error) {
	v, err := d.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadCount reads a collection count and checks it against the limits.
// Every element takes at least one byte, so a count larger than the unread
// input is rejected as well.
func (d *Decoder) ReadCount() (int, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if n > uint64(d.limits.MaxCollection) {
		return 0, ErrCollectionTooLarge
	}
	if n > uint64(d.Remaining()) {
		return 0, ErrBufferTooShort
	}
	return int(n), nil
}
