package protocol

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	// Core deterministic encoding: map keys sorted, shortest forms. Equal
	// messages encode to equal bytes.
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("protocol: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		// node -> children array -> node
		MaxNestedLevels:  2*MaxNodeDepth + 8,
		MaxArrayElements: MaxCollectionCount,
		MaxMapPairs:      MaxCollectionCount,
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("protocol: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBORCodec carries Paint and Variables payloads as CBOR, for clients that
// already have a CBOR library.
type CBORCodec struct{}

type cborValue struct {
	Kind  uint8       `cbor:"1,keyasint"`
	Bool  bool        `cbor:"2,keyasint,omitempty"`
	Num   float64     `cbor:"3,keyasint,omitempty"`
	Str   string      `cbor:"4,keyasint,omitempty"`
	Elems []cborValue `cbor:"5,keyasint,omitempty"`
}

type cborField struct {
	Name  string    `cbor:"1,keyasint"`
	Value cborValue `cbor:"2,keyasint"`
}

type cborNode struct {
	Tag      string      `cbor:"1,keyasint"`
	ID       string      `cbor:"2,keyasint,omitempty"`
	Cached   bool        `cbor:"3,keyasint,omitempty"`
	Attrs    []cborField `cbor:"4,keyasint,omitempty"`
	Vars     []cborField `cbor:"5,keyasint,omitempty"`
	Children []cborNode  `cbor:"6,keyasint,omitempty"`
}

type cborPaint struct {
	Seq     uint64     `cbor:"1,keyasint"`
	Changes []cborNode `cbor:"2,keyasint,omitempty"`
}

type cborBatch struct {
	Seq     uint64                          `cbor:"1,keyasint"`
	Changes map[string]map[string]cborValue `cbor:"2,keyasint,omitempty"`
}

func (CBORCodec) Name() string { return CodecCBOR }

func (CBORCodec) EncodePaint(m *PaintMessage) ([]byte, error) {
	p := cborPaint{Seq: m.Seq}
	if m.Document != nil {
		for _, n := range m.Document.Changes {
			p.Changes = append(p.Changes, toCBORNode(n))
		}
	}
	return cborEnc.Marshal(p)
}

func (CBORCodec) DecodePaint(data []byte) (*PaintMessage, error) {
	var p cborPaint
	if err := cborDec.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("protocol: cbor paint: %w", err)
	}
	doc := &paint.Document{}
	for _, cn := range p.Changes {
		n, err := fromCBORNode(cn)
		if err != nil {
			return nil, err
		}
		doc.Changes = append(doc.Changes, n)
	}
	return &PaintMessage{Seq: p.Seq, Document: doc}, nil
}

func (CBORCodec) EncodeVariables(b *VariableBatch) ([]byte, error) {
	cb := cborBatch{Seq: b.Seq}
	if len(b.Changes) > 0 {
		cb.Changes = make(map[string]map[string]cborValue, len(b.Changes))
		for id, vars := range b.Changes {
			m := make(map[string]cborValue, len(vars))
			for name, v := range vars {
				m[name] = toCBORValue(v)
			}
			cb.Changes[id] = m
		}
	}
	return cborEnc.Marshal(cb)
}

func (CBORCodec) DecodeVariables(data []byte) (*VariableBatch, error) {
	var cb cborBatch
	if err := cborDec.Unmarshal(data, &cb); err != nil {
		return nil, fmt.Errorf("protocol: cbor variables: %w", err)
	}
	b := &VariableBatch{Seq: cb.Seq, Changes: make(map[string]map[string]value.Value)}
	for id, vars := range cb.Changes {
		for name, cv := range vars {
			v, err := fromCBORValue(cv)
			if err != nil {
				return nil, err
			}
			b.Set(id, name, v)
		}
	}
	return b, nil
}

func toCBORValue(v value.Value) cborValue {
	cv := cborValue{Kind: uint8(v.Kind())}
	switch v.Kind() {
	case value.KindBool:
		cv.Bool = v.RawBool()
	case value.KindNumber:
		cv.Num = v.RawNumber()
	case value.KindString, value.KindResource:
		cv.Str = v.RawString()
	case value.KindArray:
		cv.Elems = make([]cborValue, v.Len())
		for i := range v.Len() {
			cv.Elems[i] = toCBORValue(v.Index(i))
		}
	}
	return cv
}

func fromCBORValue(cv cborValue) (value.Value, error) {
	switch value.Kind(cv.Kind) {
	case value.KindNull:
		return value.Null(), nil
	case value.KindBool:
		return value.Bool(cv.Bool), nil
	case value.KindNumber:
		return value.Float(cv.Num), nil
	case value.KindString:
		return value.String(cv.Str), nil
	case value.KindResource:
		return value.Resource(cv.Str), nil
	case value.KindArray:
		elems := make([]value.Value, len(cv.Elems))
		for i, e := range cv.Elems {
			v, err := fromCBORValue(e)
			if err != nil {
				return value.Null(), err
			}
			elems[i] = v
		}
		return value.Array(elems...), nil
	}
	return value.Null(), fmt.Errorf("%w: 0x%02x", ErrUnknownKind, cv.Kind)
}

func toCBORFields(fields []paint.Field) []cborField {
	if len(fields) == 0 {
		return nil
	}
	out := make([]cborField, len(fields))
	for i, f := range fields {
		out[i] = cborField{Name: f.Name, Value: toCBORValue(f.Value)}
	}
	return out
}

func fromCBORFields(fields []cborField) ([]paint.Field, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]paint.Field, len(fields))
	for i, f := range fields {
		v, err := fromCBORValue(f.Value)
		if err != nil {
			return nil, err
		}
		out[i] = paint.Field{Name: f.Name, Value: v}
	}
	return out, nil
}

func toCBORNode(n *paint.Node) cborNode {
	cn := cborNode{
		Tag:    n.Tag,
		ID:     n.ID,
		Cached: n.Cached,
		Attrs:  toCBORFields(n.Attrs),
		Vars:   toCBORFields(n.Vars),
	}
	for _, c := range n.Children {
		cn.Children = append(cn.Children, toCBORNode(c))
	}
	return cn
}

func fromCBORNode(cn cborNode) (*paint.Node, error) {
	n := &paint.Node{Tag: cn.Tag, ID: cn.ID, Cached: cn.Cached}
	var err error
	if n.Attrs, err = fromCBORFields(cn.Attrs); err != nil {
		return nil, err
	}
	if n.Vars, err = fromCBORFields(cn.Vars); err != nil {
		return nil, err
	}
	for _, cc := range cn.Children {
		c, err := fromCBORNode(cc)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}
