package protocol

// Codec encodes the Paint and Variables payloads. The client picks one by
// name in its Hello; every other frame uses the binary format.
type Codec interface {
	Name() string
	EncodePaint(m *PaintMessage) ([]byte, error)
	DecodePaint(data []byte) (*PaintMessage, error)
	EncodeVariables(b *VariableBatch) ([]byte, error)
	DecodeVariables(data []byte) (*VariableBatch, error)
}

// Codec names.
const (
	CodecBinary = "binary"
	CodecCBOR   = "cbor"
)

// CodecByName returns the codec called name. The empty name selects the
// binary codec.
func CodecByName(name string) (Codec, bool) {
	switch name {
	case "", CodecBinary:
		return BinaryCodec{}, true
	case CodecCBOR:
		return CBORCodec{}, true
	}
	return nil, false
}

// BinaryCodec is the compact varint-based format of this package.
type BinaryCodec struct {
	Limits Limits
}

func (BinaryCodec) Name() string { return CodecBinary }

func (BinaryCodec) EncodePaint(m *PaintMessage) ([]byte, error) {
	return EncodePaint(m), nil
}

func (c BinaryCodec) DecodePaint(data []byte) (*PaintMessage, error) {
	return DecodePaintWithLimits(data, c.Limits)
}

func (BinaryCodec) EncodeVariables(b *VariableBatch) ([]byte, error) {
	return EncodeVariables(b), nil
}

func (c BinaryCodec) DecodeVariables(data []byte) (*VariableBatch, error) {
	d := NewDecoderWithLimits(data, c.Limits)
	b, err := DecodeVariablesFrom(d)
	if err != nil {
		return nil, err
	}
	return b, d.Finish()
}
