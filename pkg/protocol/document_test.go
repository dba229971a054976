package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

func sampleDocument() *paint.Document {
	return &paint.Document{Changes: []*paint.Node{
		{
			Tag: "orderedlayout",
			ID:  "c1",
			Attrs: []paint.Field{
				{Name: "orientation", Value: value.String("vertical")},
				{Name: "spacing", Value: value.Bool(true)},
			},
			Children: []*paint.Node{
				{Tag: "cell", Attrs: []paint.Field{{Name: "align", Value: value.String("top-left")}}, Children: []*paint.Node{
					{Tag: "label", ID: "c2", Cached: true},
				}},
				{Tag: "cell", Children: []*paint.Node{
					{
						Tag:   "slider",
						ID:    "c3",
						Attrs: []paint.Field{{Name: "min", Value: value.Int(0)}, {Name: "max", Value: value.Int(100)}},
						Vars:  []paint.Field{{Name: "value", Value: value.Float(42.5)}},
					},
				}},
			},
		},
		{
			Tag:   "select",
			ID:    "c9",
			Attrs: []paint.Field{{Name: "options", Value: value.Strings("a", "b")}},
			Vars:  []paint.Field{{Name: "selected", Value: value.Null()}},
		},
	}}
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := sampleDocument()
	got, err := DecodeDocument(EncodeDocument(doc))
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	if diff := cmp.Diff(doc, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentEmpty(t *testing.T) {
	data := EncodeDocument(&paint.Document{})
	if !bytes.Equal(data, []byte{0x00}) {
		t.Errorf("EncodeDocument(empty) = %x, want 00", data)
	}
	doc, err := DecodeDocument(data)
	if err != nil || len(doc.Changes) != 0 {
		t.Errorf("DecodeDocument() = %v, %v", doc, err)
	}
}

func TestDocumentEncodingIsStable(t *testing.T) {
	a := EncodeDocument(sampleDocument())
	b := EncodeDocument(sampleDocument())
	if !bytes.Equal(a, b) {
		t.Error("equal documents encoded to different bytes")
	}
}

func TestDocumentTruncated(t *testing.T) {
	data := EncodeDocument(sampleDocument())
	for i := range len(data) {
		if _, err := DecodeDocument(data[:i]); err == nil {
			t.Errorf("DecodeDocument(data[:%d]) succeeded", i)
		}
	}
}

func TestDocumentTrailingBytes(t *testing.T) {
	data := append(EncodeDocument(sampleDocument()), 0x00)
	if _, err := DecodeDocument(data); !errors.Is(err, ErrTrailingBytes) {
		t.Errorf("error = %v, want ErrTrailingBytes", err)
	}
}

func TestDocumentDepthLimit(t *testing.T) {
	// A chain deeper than MaxNodeDepth, each node with one child.
	e := NewEncoder()
	e.WriteUvarint(1)
	for range MaxNodeDepth + 1 {
		e.WriteString("x")
		e.WriteString("")
		e.WriteByte(0)
		e.WriteUvarint(0)
		e.WriteUvarint(0)
		e.WriteUvarint(1)
	}
	e.WriteString("x")
	e.WriteString("")
	e.WriteByte(0)
	e.WriteUvarint(0)
	e.WriteUvarint(0)
	e.WriteUvarint(0)

	if _, err := DecodeDocument(e.Bytes()); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("error = %v, want ErrMaxDepthExceeded", err)
	}
}

func TestDocumentHugeCount(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1 << 40)
	if _, err := DecodeDocument(e.Bytes()); !errors.Is(err, ErrCollectionTooLarge) {
		t.Errorf("error = %v, want ErrCollectionTooLarge", err)
	}
}

func TestVariablesDeterministic(t *testing.T) {
	build := func(order []string) *VariableBatch {
		b := &VariableBatch{Seq: 7}
		for _, id := range order {
			b.Set(id, "value", value.Int(len(id)))
			b.Set(id, "text", value.String(id))
		}
		return b
	}

	a := EncodeVariables(build([]string{"c1", "c22", "c333"}))
	b := EncodeVariables(build([]string{"c333", "c1", "c22"}))
	if !bytes.Equal(a, b) {
		t.Errorf("encodings differ:\n%x\n%x", a, b)
	}
}

func TestVariablesRoundTrip(t *testing.T) {
	in := &VariableBatch{Seq: 99}
	in.Set("c3", "value", value.Float(12.5))
	in.Set("c9", "selected", value.Null())
	in.Set("c4", "text", value.String("héllo"))
	in.Set("c4", "focus", value.Bool(true))

	if in.Len() != 4 {
		t.Errorf("Len() = %d, want 4", in.Len())
	}

	got, err := DecodeVariables(EncodeVariables(in))
	if err != nil {
		t.Fatalf("DecodeVariables() error = %v", err)
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("batch mismatch (-want +got):\n%s", diff)
	}
}

func TestVariablesDuplicateMerge(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1)
	e.WriteUvarint(2)
	for _, n := range []int{1, 2} {
		e.WriteString("c1")
		e.WriteUvarint(1)
		e.WriteString("value")
		e.WriteValue(value.Int(n))
	}

	b, err := DecodeVariables(e.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if got := b.Changes["c1"]["value"]; !value.Equal(got, value.Int(2)) {
		t.Errorf("value = %#v, want 2", got)
	}
}

func TestPaintMessage(t *testing.T) {
	in := &PaintMessage{Seq: 12, Document: sampleDocument()}
	got, err := DecodePaint(EncodePaint(in))
	if err != nil {
		t.Fatalf("DecodePaint() error = %v", err)
	}
	if diff := cmp.Diff(in, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("paint mismatch (-want +got):\n%s", diff)
	}

	empty, err := DecodePaint(EncodePaint(&PaintMessage{Seq: 1}))
	if err != nil || empty.Seq != 1 || len(empty.Document.Changes) != 0 {
		t.Errorf("DecodePaint(empty) = %+v, %v", empty, err)
	}
}

func TestPaintWithLimits(t *testing.T) {
	data := EncodePaint(&PaintMessage{Document: sampleDocument()})
	_, err := DecodePaintWithLimits(data, Limits{MaxNodeDepth: 2})
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("error = %v, want ErrMaxDepthExceeded", err)
	}
}
