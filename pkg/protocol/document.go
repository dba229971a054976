package protocol

import (
	"github.com/vango-dev/tessera/pkg/paint"
)

const nodeCached = 0x01

// EncodeDocument encodes a paint document:
//
//	varint change count, then per node:
//	  tag, id (strings)
//	  flags (byte, 0x01 = cached reference)
//	  attrs: varint count + (name string, value)*
//	  vars:  varint count + (name string, value)*
//	  children: varint count + node*
func EncodeDocument(doc *paint.Document) []byte {
	e := NewEncoder()
	EncodeDocumentTo(e, doc)
	return e.Bytes()
}

// EncodeDocumentTo encodes doc into e.
func EncodeDocumentTo(e *Encoder, doc *paint.Document) {
	e.WriteUvarint(uint64(len(doc.Changes)))
	for _, n := range doc.Changes {
		encodeNode(e, n)
	}
}

func encodeNode(e *Encoder, n *paint.Node) {
	e.WriteString(n.Tag)
	e.WriteString(n.ID)
	var flags byte
	if n.Cached {
		flags |= nodeCached
	}
	e.WriteByte(flags)
	encodeFields(e, n.Attrs)
	encodeFields(e, n.Vars)
	e.WriteUvarint(uint64(len(n.Children)))
	for _, c := range n.Children {
		encodeNode(e, c)
	}
}

func encodeFields(e *Encoder, fields []paint.Field) {
	e.WriteUvarint(uint64(len(fields)))
	for _, f := range fields {
		e.WriteString(f.Name)
		e.WriteValue(f.Value)
	}
}

// DecodeDocument decodes a document written by EncodeDocument.
func DecodeDocument(data []byte) (*paint.Document, error) {
	d := NewDecoder(data)
	doc, err := DecodeDocumentFrom(d)
	if err != nil {
		return nil, err
	}
	return doc, d.Finish()
}

// DecodeDocumentFrom decodes a document from d.
func DecodeDocumentFrom(d *Decoder) (*paint.Document, error) {
	n, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	doc := &paint.Document{}
	if n > 0 {
		doc.Changes = make([]*paint.Node, 0, n)
	}
	dc := &depth{max: d.limits.MaxNodeDepth}
	for range n {
		node, err := decodeNode(d, dc)
		if err != nil {
			return nil, err
		}
		doc.Changes = append(doc.Changes, node)
	}
	return doc, nil
}

func decodeNode(d *Decoder, dc *depth) (*paint.Node, error) {
	if err := dc.enter(); err != nil {
		return nil, err
	}
	defer dc.leave()

	n := &paint.Node{}
	var err error
	if n.Tag, err = d.ReadString(); err != nil {
		return nil, err
	}
	if n.ID, err = d.ReadString(); err != nil {
		return nil, err
	}
	flags, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	n.Cached = flags&nodeCached != 0
	if n.Attrs, err = decodeFields(d); err != nil {
		return nil, err
	}
	if n.Vars, err = decodeFields(d); err != nil {
		return nil, err
	}

	count, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		n.Children = make([]*paint.Node, 0, count)
	}
	for range count {
		c, err := decodeNode(d, dc)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

func decodeFields(d *Decoder) ([]paint.Field, error) {
	count, err := d.ReadCount()
	if err != nil || count == 0 {
		return nil, err
	}
	fields := make([]paint.Field, count)
	for i := range fields {
		if fields[i].Name, err = d.ReadString(); err != nil {
			return nil, err
		}
		if fields[i].Value, err = d.ReadValue(); err != nil {
			return nil, err
		}
	}
	return fields, nil
}
