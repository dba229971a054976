package protocol

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/vango-dev/tessera/pkg/value"
)

func TestCodecByName(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"", CodecBinary, true},
		{"binary", CodecBinary, true},
		{"cbor", CodecCBOR, true},
		{"json", "", false},
	}
	for _, tc := range tests {
		c, ok := CodecByName(tc.name)
		if ok != tc.wantOK {
			t.Errorf("CodecByName(%q) ok = %v, want %v", tc.name, ok, tc.wantOK)
			continue
		}
		if ok && c.Name() != tc.want {
			t.Errorf("CodecByName(%q).Name() = %q, want %q", tc.name, c.Name(), tc.want)
		}
	}
}

func TestCodecsRoundTrip(t *testing.T) {
	batch := &VariableBatch{Seq: 3}
	batch.Set("c3", "value", value.Float(-1.25))
	batch.Set("c4", "text", value.String(""))
	batch.Set("c5", "items", value.Array(value.Int(0), value.Resource("res/s1/x")))

	for _, c := range []Codec{BinaryCodec{}, CBORCodec{}} {
		t.Run(c.Name(), func(t *testing.T) {
			pm := &PaintMessage{Seq: 9, Document: sampleDocument()}
			data, err := c.EncodePaint(pm)
			if err != nil {
				t.Fatal(err)
			}
			gotPaint, err := c.DecodePaint(data)
			if err != nil {
				t.Fatalf("DecodePaint() error = %v", err)
			}
			if diff := cmp.Diff(pm, gotPaint, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("paint mismatch (-want +got):\n%s", diff)
			}

			data, err = c.EncodeVariables(batch)
			if err != nil {
				t.Fatal(err)
			}
			gotBatch, err := c.DecodeVariables(data)
			if err != nil {
				t.Fatalf("DecodeVariables() error = %v", err)
			}
			if diff := cmp.Diff(batch, gotBatch); diff != "" {
				t.Errorf("batch mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCBORDeterministic(t *testing.T) {
	var c CBORCodec
	build := func(ids ...string) *VariableBatch {
		b := &VariableBatch{Seq: 1}
		for _, id := range ids {
			b.Set(id, "value", value.String(id))
		}
		return b
	}

	a, err := c.EncodeVariables(build("c1", "c2", "c3", "c4"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.EncodeVariables(build("c4", "c3", "c2", "c1"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("CBOR encodings of equal batches differ")
	}
}

func TestCBORRejectsUnknownKind(t *testing.T) {
	data, err := cborEnc.Marshal(cborBatch{
		Seq:     1,
		Changes: map[string]map[string]cborValue{"c1": {"v": {Kind: 0x7F}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := (CBORCodec{}).DecodeVariables(data); err == nil {
		t.Error("DecodeVariables() accepted an unknown kind")
	}
}

func TestCBORRejectsGarbage(t *testing.T) {
	if _, err := (CBORCodec{}).DecodePaint([]byte{0xFF, 0x00}); err == nil {
		t.Error("DecodePaint() accepted garbage")
	}
}
