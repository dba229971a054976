package protocol

import "fmt"

// ErrorCode classifies an Error frame.
type ErrorCode uint16

const (
	CodeUnknown          ErrorCode = 0x0000
	CodeInvalidFrame     ErrorCode = 0x0001 // frame header or compression broken
	CodeInvalidPayload   ErrorCode = 0x0002 // payload does not decode
	CodeUnexpectedFrame  ErrorCode = 0x0003 // frame type not valid in this state
	CodeUnsupportedCodec ErrorCode = 0x0004
	CodeVersionMismatch  ErrorCode = 0x0005
	CodeServerError      ErrorCode = 0x0100
	CodeShuttingDown     ErrorCode = 0x0101
)

func (c ErrorCode) String() string {
	switch c {
	case CodeInvalidFrame:
		return "InvalidFrame"
	case CodeInvalidPayload:
		return "InvalidPayload"
	case CodeUnexpectedFrame:
		return "UnexpectedFrame"
	case CodeUnsupportedCodec:
		return "UnsupportedCodec"
	case CodeVersionMismatch:
		return "VersionMismatch"
	case CodeServerError:
		return "ServerError"
	case CodeShuttingDown:
		return "ShuttingDown"
	default:
		return "Unknown"
	}
}

// ErrorMessage is the payload of an Error frame. A fatal error is followed
// by the connection closing.
type ErrorMessage struct {
	Code    ErrorCode
	Message string
	Fatal   bool
}

// NewError returns a non-fatal error message.
func NewError(code ErrorCode, format string, args ...any) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewFatalError returns a fatal error message.
func NewFatalError(code ErrorCode, format string, args ...any) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: fmt.Sprintf(format, args...), Fatal: true}
}

// Error implements the error interface.
func (m *ErrorMessage) Error() string {
	if m.Fatal {
		return "fatal: " + m.Code.String() + ": " + m.Message
	}
	return m.Code.String() + ": " + m.Message
}

// EncodeErrorMessage encodes m as a big-endian code, the message and the
// fatal flag.
func EncodeErrorMessage(m *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteByte(byte(m.Code >> 8))
	e.WriteByte(byte(m.Code))
	e.WriteString(m.Message)
	e.WriteBool(m.Fatal)
	return e.Bytes()
}

// DecodeErrorMessage decodes an ErrorMessage.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	hi, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	lo, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	m := &ErrorMessage{Code: ErrorCode(hi)<<8 | ErrorCode(lo)}
	if m.Message, err = d.ReadString(); err != nil {
		return nil, err
	}
	if m.Fatal, err = d.ReadBool(); err != nil {
		return nil, err
	}
	return m, d.Finish()
}
