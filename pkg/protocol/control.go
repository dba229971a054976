package protocol

// ControlType identifies a control message.
type ControlType uint8

const (
	ControlPing   ControlType = 0x01 // Value: sender clock, Unix ms
	ControlPong   ControlType = 0x02 // Value: the ping's Value
	ControlResync ControlType = 0x10 // client lost state; server repaints everything
	ControlClose  ControlType = 0x20 // Reason: human-readable
)

func (t ControlType) String() string {
	switch t {
	case ControlPing:
		return "Ping"
	case ControlPong:
		return "Pong"
	case ControlResync:
		return "Resync"
	case ControlClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// Control is the payload of a Control frame.
type Control struct {
	Type   ControlType
	Value  uint64
	Reason string
}

// EncodeControl encodes c as type byte, varint value and reason string.
func EncodeControl(c *Control) []byte {
	e := NewEncoder()
	e.WriteByte(byte(c.Type))
	e.WriteUvarint(c.Value)
	e.WriteString(c.Reason)
	return e.Bytes()
}

// DecodeControl decodes a Control.
func DecodeControl(data []byte) (*Control, error) {
	d := NewDecoder(data)
	t, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	c := &Control{Type: ControlType(t)}
	if c.Value, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if c.Reason, err = d.ReadString(); err != nil {
		return nil, err
	}
	return c, d.Finish()
}
