package protocol

import "github.com/vango-dev/tessera/pkg/paint"

// PaintMessage is the payload of a Paint frame. Seq echoes the variable
// batch the paint answers; it is 0 for paints the server sends on its own.
type PaintMessage struct {
	Seq      uint64
	Document *paint.Document
}

// EncodePaint encodes m as seq followed by the document.
func EncodePaint(m *PaintMessage) []byte {
	e := NewEncoder()
	e.WriteUvarint(m.Seq)
	doc := m.Document
	if doc == nil {
		doc = &paint.Document{}
	}
	EncodeDocumentTo(e, doc)
	return e.Bytes()
}

// DecodePaint decodes a message written by EncodePaint.
func DecodePaint(data []byte) (*PaintMessage, error) {
	return DecodePaintWithLimits(data, DefaultLimits())
}

// DecodePaintWithLimits is DecodePaint with custom decoding limits.
func DecodePaintWithLimits(data []byte, l Limits) (*PaintMessage, error) {
	d := NewDecoderWithLimits(data, l)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	doc, err := DecodeDocumentFrom(d)
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return &PaintMessage{Seq: seq, Document: doc}, nil
}
