package protocol

import "fmt"

// Version is the protocol version as major.minor. Peers with different
// major versions cannot talk.
type Version struct {
	Major uint8
	Minor uint8
}

// CurrentVersion is the version this package speaks.
var CurrentVersion = Version{Major: 1, Minor: 0}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible reports whether a peer speaking other can talk to v.
func (v Version) Compatible(other Version) bool {
	return v.Major == other.Major
}

// Hello opens a session. The client sends it first; Codec names the codec
// for Paint and Variables payloads, and Resync asks for a full paint of a
// window the client already displays.
type Hello struct {
	Version   Version
	Codec     string
	SessionID string
	Resync    bool
}

// HelloStatus is the server's verdict on a Hello.
type HelloStatus uint8

const (
	HelloOK HelloStatus = iota
	HelloVersionMismatch
	HelloUnsupportedCodec
	HelloServerBusy
)

func (s HelloStatus) String() string {
	switch s {
	case HelloOK:
		return "OK"
	case HelloVersionMismatch:
		return "VersionMismatch"
	case HelloUnsupportedCodec:
		return "UnsupportedCodec"
	case HelloServerBusy:
		return "ServerBusy"
	default:
		return fmt.Sprintf("HelloStatus(%d)", uint8(s))
	}
}

// Welcome answers a Hello.
type Welcome struct {
	Status    HelloStatus
	Version   Version
	Codec     string
	SessionID string
	WindowID  string
}

// EncodeHello encodes h.
func EncodeHello(h *Hello) []byte {
	e := NewEncoder()
	e.WriteByte(h.Version.Major)
	e.WriteByte(h.Version.Minor)
	e.WriteString(h.Codec)
	e.WriteString(h.SessionID)
	e.WriteBool(h.Resync)
	return e.Bytes()
}

// DecodeHello decodes a Hello.
func DecodeHello(data []byte) (*Hello, error) {
	d := NewDecoder(data)
	h := &Hello{}
	var err error
	if h.Version, err = readVersion(d); err != nil {
		return nil, err
	}
	if h.Codec, err = d.ReadString(); err != nil {
		return nil, err
	}
	if h.SessionID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if h.Resync, err = d.ReadBool(); err != nil {
		return nil, err
	}
	return h, d.Finish()
}

// EncodeWelcome encodes w.
func EncodeWelcome(w *Welcome) []byte {
	e := NewEncoder()
	e.WriteByte(byte(w.Status))
	e.WriteByte(w.Version.Major)
	e.WriteByte(w.Version.Minor)
	e.WriteString(w.Codec)
	e.WriteString(w.SessionID)
	e.WriteString(w.WindowID)
	return e.Bytes()
}

// DecodeWelcome decodes a Welcome.
func DecodeWelcome(data []byte) (*Welcome, error) {
	d := NewDecoder(data)
	status, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	w := &Welcome{Status: HelloStatus(status)}
	if w.Version, err = readVersion(d); err != nil {
		return nil, err
	}
	if w.Codec, err = d.ReadString(); err != nil {
		return nil, err
	}
	if w.SessionID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if w.WindowID, err = d.ReadString(); err != nil {
		return nil, err
	}
	return w, d.Finish()
}

func readVersion(d *Decoder) (Version, error) {
	major, err := d.ReadByte()
	if err != nil {
		return Version{}, err
	}
	minor, err := d.ReadByte()
	if err != nil {
		return Version{}, err
	}
	return Version{Major: major, Minor: minor}, nil
}
