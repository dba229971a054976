package protocol

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// The zstd encoder and decoder are safe for concurrent EncodeAll and
// DecodeAll calls and are shared by every frame.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		panic("protocol: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(0),
		zstd.WithDecoderMaxMemory(HardMaxAllocation),
	)
	if err != nil {
		panic("protocol: zstd decoder initialization failed: " + err.Error())
	}
}

// compress returns the zstd encoding of data and whether it is smaller.
func compress(data []byte) ([]byte, bool) {
	out := zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/2))
	return out, len(out) < len(data)
}

func decompress(data []byte, limit int) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrCorruptPayload, err)
	}
	if len(out) > limit {
		return nil, ErrFrameTooLarge
	}
	return out, nil
}
