package vtest

import (
	"testing"

	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/protocol"
	"github.com/vango-dev/tessera/pkg/value"
	"github.com/vango-dev/tessera/pkg/window"
)

// TestSession wraps a window with a simulated client.
type TestSession struct {
	Window *window.Window

	codec  protocol.Codec
	client map[string]*paint.Node
	seq    uint64
}

// TestSessionOption configures a TestSession.
type TestSessionOption func(*TestSession)

// WithCodec sets the wire codec. The default is the binary codec.
func WithCodec(c protocol.Codec) TestSessionOption {
	return func(s *TestSession) {
		s.codec = c
	}
}

// NewTestSession creates a window and runs build inside its critical
// section. Nothing is painted until Paint.
func NewTestSession(build func(w *window.Window), opts ...TestSessionOption) *TestSession {
	s := &TestSession{
		Window: window.New(),
		codec:  protocol.BinaryCodec{},
		client: make(map[string]*paint.Node),
	}
	for _, opt := range opts {
		opt(s)
	}
	if build != nil {
		s.Window.Do(func() { build(s.Window) })
	}
	return s
}

// Change is one variable change sent by the client.
type Change struct {
	ID    string
	Name  string
	Value value.Value
}

// Set returns a Change.
func Set(id, name string, v value.Value) Change {
	return Change{ID: id, Name: name, Value: v}
}

// Paint synchronizes the window and delivers the document to the client
// mirror through the codec. References to components the client never
// received fail the test.
func (s *TestSession) Paint(tb testing.TB) *paint.Document {
	tb.Helper()
	doc, err := s.Window.Sync()
	if err != nil {
		tb.Fatalf("Sync() error = %v", err)
	}
	return s.deliver(tb, doc)
}

// Send encodes changes as one batch, decodes it as the server would and
// applies it to the window.
func (s *TestSession) Send(tb testing.TB, changes ...Change) window.BatchResult {
	tb.Helper()
	s.seq++
	b := &protocol.VariableBatch{Seq: s.seq}
	for _, c := range changes {
		b.Set(c.ID, c.Name, c.Value)
	}
	data, err := s.codec.EncodeVariables(b)
	if err != nil {
		tb.Fatalf("EncodeVariables() error = %v", err)
	}
	in, err := s.codec.DecodeVariables(data)
	if err != nil {
		tb.Fatalf("DecodeVariables() error = %v", err)
	}
	return s.Window.ApplyVariables(window.Batch(in.Changes))
}

// SimulateReconnect forgets everything the client held and returns the
// full repaint a reconnecting client receives.
func (s *TestSession) SimulateReconnect(tb testing.TB) *paint.Document {
	tb.Helper()
	clear(s.client)
	doc, err := s.Window.Resync()
	if err != nil {
		tb.Fatalf("Resync() error = %v", err)
	}
	return s.deliver(tb, doc)
}

// Known reports whether the client holds component id.
func (s *TestSession) Known(id string) bool {
	_, ok := s.client[id]
	return ok
}

// ClientNode returns the last full paint of component id the client
// received.
func (s *TestSession) ClientNode(id string) *paint.Node {
	return s.client[id]
}

func (s *TestSession) deliver(tb testing.TB, doc *paint.Document) *paint.Document {
	tb.Helper()
	data, err := s.codec.EncodePaint(&protocol.PaintMessage{Seq: s.seq, Document: doc})
	if err != nil {
		tb.Fatalf("EncodePaint() error = %v", err)
	}
	m, err := s.codec.DecodePaint(data)
	if err != nil {
		tb.Fatalf("DecodePaint() error = %v", err)
	}
	if m.Seq != s.seq {
		tb.Errorf("paint seq = %d, want %d", m.Seq, s.seq)
	}
	for _, n := range m.Document.Changes {
		s.merge(tb, n)
	}
	return m.Document
}

func (s *TestSession) merge(tb testing.TB, n *paint.Node) {
	tb.Helper()
	if n.ID != "" {
		if n.Cached {
			if !s.Known(n.ID) {
				tb.Errorf("reference to %s, which the client never received", n.ID)
			}
			return
		}
		s.client[n.ID] = n
	}
	for _, c := range n.Children {
		s.merge(tb, c)
	}
}
