package protocol

import (
	"maps"
	"slices"

	"github.com/vango-dev/tessera/pkg/value"
)

// VariableBatch carries the variable changes the client collected since
// its previous batch. Seq is chosen by the client and echoed in the paint
// that answers the batch.
type VariableBatch struct {
	Seq     uint64
	Changes map[string]map[string]value.Value
}

// Set records one change.
func (b *VariableBatch) Set(id, name string, v value.Value) {
	if b.Changes == nil {
		b.Changes = make(map[string]map[string]value.Value)
	}
	vars := b.Changes[id]
	if vars == nil {
		vars = make(map[string]value.Value)
		b.Changes[id] = vars
	}
	vars[name] = v
}

// Len returns the number of variable changes in the batch.
func (b *VariableBatch) Len() int {
	n := 0
	for _, vars := range b.Changes {
		n += len(vars)
	}
	return n
}

// EncodeVariables encodes a batch:
//
//	seq (varint)
//	varint id count, then per id (sorted):
//	  id string, varint var count, then per name (sorted): name string, value
//
// Sorting makes the encoding of a batch deterministic.
func EncodeVariables(b *VariableBatch) []byte {
	e := NewEncoder()
	EncodeVariablesTo(e, b)
	return e.Bytes()
}

// EncodeVariablesTo encodes b into e.
func EncodeVariablesTo(e *Encoder, b *VariableBatch) {
	e.WriteUvarint(b.Seq)
	e.WriteUvarint(uint64(len(b.Changes)))
	for _, id := range slices.Sorted(maps.Keys(b.Changes)) {
		vars := b.Changes[id]
		e.WriteString(id)
		e.WriteUvarint(uint64(len(vars)))
		for _, name := range slices.Sorted(maps.Keys(vars)) {
			e.WriteString(name)
			e.WriteValue(vars[name])
		}
	}
}

// DecodeVariables decodes a batch written by EncodeVariables.
func DecodeVariables(data []byte) (*VariableBatch, error) {
	d := NewDecoder(data)
	b, err := DecodeVariablesFrom(d)
	if err != nil {
		return nil, err
	}
	return b, d.Finish()
}

// DecodeVariablesFrom decodes a batch from d. Repeated ids or names merge,
// the last value winning.
func DecodeVariablesFrom(d *Decoder) (*VariableBatch, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	b := &VariableBatch{Seq: seq, Changes: make(map[string]map[string]value.Value)}

	ids, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	for range ids {
		id, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		count, err := d.ReadCount()
		if err != nil {
			return nil, err
		}
		for range count {
			name, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			v, err := d.ReadValue()
			if err != nil {
				return nil, err
			}
			b.Set(id, name, v)
		}
	}
	return b, nil
}
