package protocol

// MaxVarintLen is the longest encoding of a uint64 varint.
const MaxVarintLen = 10

// AppendUvarint appends v to buf, seven bits per byte, low bits first. The
// high bit of each byte marks a continuation.
func AppendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// UvarintLen returns the encoded length of v.
func UvarintLen(v uint64) int {
	n := 1
	for ; v >= 0x80; v >>= 7 {
		n++
	}
	return n
}

// zigzag maps 0, -1, 1, -2 ... to 0, 1, 2, 3 ...
func zigzag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func unzigzag(u uint64) int64 {
	v := int64(u >> 1)
	if u&1 != 0 {
		v = ^v
	}
	return v
}
