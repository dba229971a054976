package protocol

import (
	"errors"
	"fmt"
	"io"
)

// FrameHeaderSize is the size of the frame header in bytes.
const FrameHeaderSize = 6

// DefaultCompressThreshold is the payload size above which NewFrame tries
// compression.
const DefaultCompressThreshold = 1024

// FrameType identifies the payload of a frame.
type FrameType uint8

const (
	FrameHello     FrameType = 0x00 // client: Hello, server: Welcome
	FrameVariables FrameType = 0x01 // client → server
	FramePaint     FrameType = 0x02 // server → client
	FrameControl   FrameType = 0x03
	FrameError     FrameType = 0x04
)

func (t FrameType) String() string {
	switch t {
	case FrameHello:
		return "Hello"
	case FrameVariables:
		return "Variables"
	case FramePaint:
		return "Paint"
	case FrameControl:
		return "Control"
	case FrameError:
		return "Error"
	default:
		return fmt.Sprintf("FrameType(%d)", uint8(t))
	}
}

// Valid reports whether t is a defined frame type.
func (t FrameType) Valid() bool {
	return t <= FrameError
}

// FrameFlags modify how a frame payload is read.
type FrameFlags uint8

const (
	// FlagCompressed marks a zstd-compressed payload.
	FlagCompressed FrameFlags = 0x01
)

// Has reports whether ff contains flag.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
	ErrUnknownFlags     = errors.New("protocol: unknown frame flags")
	ErrCorruptPayload   = errors.New("protocol: corrupt frame payload")
)

// Frame is the transport envelope.
//
// Wire format (6 byte header, then the payload):
//
//	┌────────────┬────────────┬─────────────────────────────┐
//	│ Type       │ Flags      │ Payload length              │
//	│ (1 byte)   │ (1 byte)   │ (4 bytes, big-endian)       │
//	└────────────┴────────────┴─────────────────────────────┘
//
// The length counts the payload as carried, after compression.
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// NewFrame wraps payload, compressing it when it is larger than threshold
// and compression makes it smaller. A threshold <= 0 disables compression.
func NewFrame(t FrameType, payload []byte, threshold int) *Frame {
	f := &Frame{Type: t, Payload: payload}
	if threshold > 0 && len(payload) > threshold {
		if c, smaller := compress(payload); smaller {
			f.Flags |= FlagCompressed
			f.Payload = c
		}
	}
	return f
}

// Encode returns the frame with its header.
func (f *Frame) Encode() []byte {
	n := len(f.Payload)
	buf := make([]byte, FrameHeaderSize+n)
	buf[0] = byte(f.Type)
	buf[1] = byte(f.Flags)
	buf[2] = byte(n >> 24)
	buf[3] = byte(n >> 16)
	buf[4] = byte(n >> 8)
	buf[5] = byte(n)
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf
}

// Body returns the payload, decompressed when the frame is compressed. The
// result is rejected when it exceeds limit bytes; limit <= 0 means
// HardMaxAllocation.
func (f *Frame) Body(limit int) ([]byte, error) {
	if limit <= 0 || limit > HardMaxAllocation {
		limit = HardMaxAllocation
	}
	if !f.Flags.Has(FlagCompressed) {
		if len(f.Payload) > limit {
			return nil, ErrFrameTooLarge
		}
		return f.Payload, nil
	}
	return decompress(f.Payload, limit)
}

// DecodeFrame decodes exactly one frame from data. Frames larger than
// maxPayload bytes are rejected; maxPayload <= 0 means HardMaxAllocation.
func DecodeFrame(data []byte, maxPayload int) (*Frame, error) {
	t, flags, n, err := DecodeFrameHeader(data, maxPayload)
	if err != nil {
		return nil, err
	}
	if len(data)-FrameHeaderSize < n {
		return nil, ErrBufferTooShort
	}
	if len(data)-FrameHeaderSize > n {
		return nil, ErrTrailingBytes
	}
	payload := make([]byte, n)
	copy(payload, data[FrameHeaderSize:])
	return &Frame{Type: t, Flags: flags, Payload: payload}, nil
}

// DecodeFrameHeader validates a frame header and returns its fields.
func DecodeFrameHeader(data []byte, maxPayload int) (FrameType, FrameFlags, int, error) {
	if len(data) < FrameHeaderSize {
		return 0, 0, 0, ErrBufferTooShort
	}
	if maxPayload <= 0 || maxPayload > HardMaxAllocation {
		maxPayload = HardMaxAllocation
	}
	t := FrameType(data[0])
	if !t.Valid() {
		return 0, 0, 0, fmt.Errorf("%w: 0x%02x", ErrInvalidFrameType, data[0])
	}
	flags := FrameFlags(data[1])
	if flags&^FlagCompressed != 0 {
		return 0, 0, 0, fmt.Errorf("%w: 0x%02x", ErrUnknownFlags, data[1])
	}
	n := uint64(data[2])<<24 | uint64(data[3])<<16 | uint64(data[4])<<8 | uint64(data[5])
	if n > uint64(maxPayload) {
		return 0, 0, 0, ErrFrameTooLarge
	}
	return t, flags, int(n), nil
}

// ReadFrame reads one frame from r.
func ReadFrame(r io.Reader, maxPayload int) (*Frame, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	t, flags, n, err := DecodeFrameHeader(header, maxPayload)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return &Frame{Type: t, Flags: flags, Payload: payload}, nil
}

// WriteFrame writes f to w.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > HardMaxAllocation {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}
