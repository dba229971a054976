package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/tessera/pkg/component"
	"github.com/vango-dev/tessera/pkg/layout"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/protocol"
	"github.com/vango-dev/tessera/pkg/resource"
	"github.com/vango-dev/tessera/pkg/value"
	"github.com/vango-dev/tessera/pkg/widget"
	"github.com/vango-dev/tessera/pkg/window"
)

func testApp(w *window.Window) {
	volume := widget.NewSlider("Volume", 0, 100)
	readout := widget.NewLabel("0")
	component.OnValueChange(volume, func(_ component.Component, v value.Value) {
		f, _ := v.AsFloat()
		readout.SetContent(strconv.FormatFloat(f, 'g', -1, 64))
	})
	w.AddComponent(layout.NewVerticalLayout(volume, readout))
}

type testEnv struct {
	server *Server
	http   *httptest.Server
	wsURL  string
}

func newTestEnv(t *testing.T, cfg *Config, opts ...Option) *testEnv {
	t.Helper()
	return newTestEnvApp(t, cfg, testApp, opts...)
}

func newTestEnvApp(t *testing.T, cfg *Config, app AppFactory, opts ...Option) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	opts = append([]Option{
		WithPrometheus(prometheus.NewRegistry()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	s := New(cfg, app, opts...)
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return &testEnv{
		server: s,
		http:   ts,
		wsURL:  "ws" + strings.TrimPrefix(ts.URL, "http") + s.Config().WebSocketPath,
	}
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(e.wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, ft protocol.FrameType, payload []byte) {
	t.Helper()
	data := protocol.NewFrame(ft, payload, 0).Encode()
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
}

func receive(t *testing.T, conn *websocket.Conn) (protocol.FrameType, []byte) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	f, err := protocol.DecodeFrame(msg, protocol.HardMaxAllocation)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	body, err := f.Body(protocol.HardMaxAllocation)
	if err != nil {
		t.Fatalf("Body() error = %v", err)
	}
	return f.Type, body
}

func receiveWelcome(t *testing.T, conn *websocket.Conn) *protocol.Welcome {
	t.Helper()
	ft, body := receive(t, conn)
	if ft != protocol.FrameHello {
		t.Fatalf("frame type = %s, want Hello", ft)
	}
	w, err := protocol.DecodeWelcome(body)
	if err != nil {
		t.Fatalf("DecodeWelcome() error = %v", err)
	}
	return w
}

func receivePaint(t *testing.T, conn *websocket.Conn, codec protocol.Codec) *protocol.PaintMessage {
	t.Helper()
	ft, body := receive(t, conn)
	if ft != protocol.FramePaint {
		t.Fatalf("frame type = %s, want Paint", ft)
	}
	m, err := codec.DecodePaint(body)
	if err != nil {
		t.Fatalf("DecodePaint() error = %v", err)
	}
	return m
}

func receiveError(t *testing.T, conn *websocket.Conn) *protocol.ErrorMessage {
	t.Helper()
	ft, body := receive(t, conn)
	if ft != protocol.FrameError {
		t.Fatalf("frame type = %s, want Error", ft)
	}
	m, err := protocol.DecodeErrorMessage(body)
	if err != nil {
		t.Fatalf("DecodeErrorMessage() error = %v", err)
	}
	return m
}

func hello(t *testing.T, conn *websocket.Conn, codec string) {
	t.Helper()
	send(t, conn, protocol.FrameHello, protocol.EncodeHello(&protocol.Hello{
		Version: protocol.CurrentVersion,
		Codec:   codec,
	}))
}

// open performs the handshake and returns the first paint.
func open(t *testing.T, e *testEnv) (*websocket.Conn, *protocol.Welcome, *paint.Document) {
	t.Helper()
	conn := e.dial(t)
	hello(t, conn, "")
	w := receiveWelcome(t, conn)
	if w.Status != protocol.HelloOK {
		t.Fatalf("Welcome.Status = %s, want OK", w.Status)
	}
	m := receivePaint(t, conn, protocol.BinaryCodec{})
	return conn, w, m.Document
}

func findTag(n *paint.Node, tag string) *paint.Node {
	if n.Tag == tag {
		return n
	}
	for _, c := range n.Children {
		if found := findTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func TestHandshakeSendsFullPaint(t *testing.T) {
	e := newTestEnv(t, nil)
	_, w, doc := open(t, e)

	if w.Codec != protocol.CodecBinary {
		t.Errorf("Welcome.Codec = %q, want %q", w.Codec, protocol.CodecBinary)
	}
	if w.SessionID == "" || w.WindowID == "" {
		t.Errorf("Welcome ids = %q, %q, want both set", w.SessionID, w.WindowID)
	}
	if len(doc.Changes) != 1 || doc.Changes[0].Tag != "window" {
		t.Fatalf("first paint changes = %+v, want the window", doc.Changes)
	}
	if doc.Changes[0].ID != w.WindowID {
		t.Errorf("window node id = %q, want %q", doc.Changes[0].ID, w.WindowID)
	}
	if findTag(doc.Changes[0], "slider") == nil {
		t.Error("first paint has no slider")
	}
	if _, ok := e.server.Session(w.SessionID); !ok {
		t.Error("Session() did not find the open session")
	}
}

func TestHandshakeCBOR(t *testing.T) {
	e := newTestEnv(t, nil)
	conn := e.dial(t)
	hello(t, conn, protocol.CodecCBOR)

	w := receiveWelcome(t, conn)
	if w.Status != protocol.HelloOK || w.Codec != protocol.CodecCBOR {
		t.Fatalf("Welcome = %+v, want OK with cbor", w)
	}
	m := receivePaint(t, conn, protocol.CBORCodec{})
	if m.Seq != 0 || len(m.Document.Changes) != 1 {
		t.Errorf("paint = seq %d, %d changes", m.Seq, len(m.Document.Changes))
	}
}

func TestVariablesEchoSeq(t *testing.T) {
	e := newTestEnv(t, nil)
	conn, _, doc := open(t, e)
	slider := findTag(doc.Changes[0], "slider")

	batch := &protocol.VariableBatch{Seq: 17}
	batch.Set(slider.ID, "value", value.Int(42))
	batch.Set("no-such-id", "value", value.Int(1))
	send(t, conn, protocol.FrameVariables, protocol.EncodeVariables(batch))

	m := receivePaint(t, conn, protocol.BinaryCodec{})
	if m.Seq != 17 {
		t.Errorf("Seq = %d, want 17", m.Seq)
	}
	n := m.Document.Find(slider.ID)
	if n == nil {
		t.Fatal("slider not repainted")
	}
	if v, _ := n.Var("value"); !value.Equal(v, value.Float(42)) {
		t.Errorf("slider value = %#v, want 42", v)
	}
	if label := findTag(m.Document.Changes[len(m.Document.Changes)-1], "label"); label == nil {
		t.Error("label not repainted after value change")
	}
}

func TestBackgroundChangesArePushed(t *testing.T) {
	release := make(chan struct{})
	e := newTestEnvApp(t, nil, func(w *window.Window) {
		status := widget.NewLabel("before")
		w.AddComponent(status)
		go func() {
			<-release
			w.Do(func() { status.SetContent("after") })
		}()
	})
	conn, _, doc := open(t, e)
	label := findTag(doc.Changes[0], "label")
	if label == nil {
		t.Fatal("label missing from first paint")
	}

	close(release)
	m := receivePaint(t, conn, protocol.BinaryCodec{})
	if m.Seq != 0 {
		t.Errorf("Seq = %d, want 0", m.Seq)
	}
	n := m.Document.Find(label.ID)
	if n == nil {
		t.Fatal("label not repainted")
	}
	if v, _ := n.Attr("content"); !value.Equal(v, value.String("after")) {
		t.Errorf("content = %#v, want after", v)
	}
}

func TestSessionDispatch(t *testing.T) {
	e := newTestEnv(t, nil)
	conn, w, doc := open(t, e)
	slider := findTag(doc.Changes[0], "slider")

	sess, ok := e.server.Session(w.SessionID)
	if !ok {
		t.Fatalf("Session(%q) not found", w.SessionID)
	}
	sess.Dispatch(func() {
		c, _ := sess.Window().Lookup(slider.ID)
		c.(*widget.Slider).SetValue(64)
	})

	m := receivePaint(t, conn, protocol.BinaryCodec{})
	if m.Seq != 0 {
		t.Errorf("Seq = %d, want 0", m.Seq)
	}
	n := m.Document.Find(slider.ID)
	if n == nil {
		t.Fatal("slider not repainted")
	}
	if v, _ := n.Var("value"); !value.Equal(v, value.Float(64)) {
		t.Errorf("slider value = %#v, want 64", v)
	}

	sess.Dispatch(func() { panic("task failed") })
	if m := receiveError(t, conn); m.Code != protocol.CodeServerError || m.Fatal {
		t.Errorf("error = %v, want non-fatal ServerError", m)
	}
	if got := e.server.SessionCount(); got != 1 {
		t.Errorf("SessionCount() = %d, want 1", got)
	}
}

func TestPanickingListenerKeepsSession(t *testing.T) {
	e := newTestEnvApp(t, nil, func(w *window.Window) {
		w.AddComponent(widget.NewButton("Explode", func(*widget.Button) { panic("click handler") }))
	})
	conn, _, doc := open(t, e)
	button := findTag(doc.Changes[0], "button")
	if button == nil {
		t.Fatal("button missing from first paint")
	}

	batch := &protocol.VariableBatch{Seq: 5}
	batch.Set(button.ID, "state", value.Bool(true))
	send(t, conn, protocol.FrameVariables, protocol.EncodeVariables(batch))

	if m := receiveError(t, conn); m.Code != protocol.CodeServerError || m.Fatal {
		t.Errorf("error = %v, want non-fatal ServerError", m)
	}
	m := receivePaint(t, conn, protocol.BinaryCodec{})
	if m.Seq != 5 {
		t.Errorf("Seq = %d, want 5", m.Seq)
	}
	if m.Document.Find(button.ID) == nil {
		t.Error("button not repainted after failed change")
	}

	send(t, conn, protocol.FrameControl, protocol.EncodeControl(&protocol.Control{
		Type:  protocol.ControlPing,
		Value: 7,
	}))
	if ft, _ := receive(t, conn); ft != protocol.FrameControl {
		t.Errorf("frame type = %s, want Control", ft)
	}
	if got := e.server.SessionCount(); got != 1 {
		t.Errorf("SessionCount() = %d, want 1", got)
	}
}

func TestControlPing(t *testing.T) {
	e := newTestEnv(t, nil)
	conn, _, _ := open(t, e)

	send(t, conn, protocol.FrameControl, protocol.EncodeControl(&protocol.Control{
		Type:  protocol.ControlPing,
		Value: 123456,
	}))
	ft, body := receive(t, conn)
	if ft != protocol.FrameControl {
		t.Fatalf("frame type = %s, want Control", ft)
	}
	c, err := protocol.DecodeControl(body)
	if err != nil {
		t.Fatal(err)
	}
	if c.Type != protocol.ControlPong || c.Value != 123456 {
		t.Errorf("reply = %+v, want Pong 123456", c)
	}
}

func TestControlResync(t *testing.T) {
	e := newTestEnv(t, nil)
	conn, w, _ := open(t, e)

	send(t, conn, protocol.FrameControl, protocol.EncodeControl(&protocol.Control{Type: protocol.ControlResync}))
	m := receivePaint(t, conn, protocol.BinaryCodec{})

	if len(m.Document.Changes) != 1 || m.Document.Changes[0].ID != w.WindowID {
		t.Fatalf("resync changes = %+v, want the window", m.Document.Changes)
	}
	slider := findTag(m.Document.Changes[0], "slider")
	if slider == nil || slider.Cached {
		t.Errorf("resync slider = %+v, want full content", slider)
	}
}

func TestControlCloseReleasesSession(t *testing.T) {
	e := newTestEnv(t, nil)
	conn, _, _ := open(t, e)
	if n := e.server.SessionCount(); n != 1 {
		t.Fatalf("SessionCount() = %d, want 1", n)
	}

	send(t, conn, protocol.FrameControl, protocol.EncodeControl(&protocol.Control{
		Type:   protocol.ControlClose,
		Reason: "bye",
	}))

	deadline := time.Now().Add(5 * time.Second)
	for e.server.SessionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("session not released after Close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBadFrameKeepsSession(t *testing.T) {
	e := newTestEnv(t, nil)
	conn, _, _ := open(t, e)

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0x09, 0, 0, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	m := receiveError(t, conn)
	if m.Code != protocol.CodeInvalidFrame || m.Fatal {
		t.Errorf("error = %v, want non-fatal InvalidFrame", m)
	}

	send(t, conn, protocol.FrameVariables, []byte{0xFF})
	m = receiveError(t, conn)
	if m.Code != protocol.CodeInvalidPayload || m.Fatal {
		t.Errorf("error = %v, want non-fatal InvalidPayload", m)
	}

	send(t, conn, protocol.FramePaint, nil)
	m = receiveError(t, conn)
	if m.Code != protocol.CodeUnexpectedFrame || m.Fatal {
		t.Errorf("error = %v, want non-fatal UnexpectedFrame", m)
	}

	send(t, conn, protocol.FrameControl, protocol.EncodeControl(&protocol.Control{Type: protocol.ControlPing, Value: 1}))
	if ft, _ := receive(t, conn); ft != protocol.FrameControl {
		t.Errorf("frame type = %s, want Control", ft)
	}
}

func TestHandshakeFailures(t *testing.T) {
	tests := []struct {
		name   string
		frame  protocol.FrameType
		body   []byte
		status protocol.HelloStatus
		code   protocol.ErrorCode
	}{
		{
			name:  "not hello",
			frame: protocol.FrameControl,
			body:  protocol.EncodeControl(&protocol.Control{Type: protocol.ControlPing}),
			code:  protocol.CodeUnexpectedFrame,
		},
		{
			name:  "garbage hello",
			frame: protocol.FrameHello,
			body:  []byte{0x01},
			code:  protocol.CodeInvalidPayload,
		},
		{
			name:   "version mismatch",
			frame:  protocol.FrameHello,
			body:   protocol.EncodeHello(&protocol.Hello{Version: protocol.Version{Major: 9}}),
			status: protocol.HelloVersionMismatch,
		},
		{
			name:   "unsupported codec",
			frame:  protocol.FrameHello,
			body:   protocol.EncodeHello(&protocol.Hello{Version: protocol.CurrentVersion, Codec: "xml"}),
			status: protocol.HelloUnsupportedCodec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t, nil)
			conn := e.dial(t)
			send(t, conn, tt.frame, tt.body)

			if tt.status != protocol.HelloOK {
				w := receiveWelcome(t, conn)
				if w.Status != tt.status {
					t.Errorf("Welcome.Status = %s, want %s", w.Status, tt.status)
				}
				if w.SessionID != "" {
					t.Errorf("refused Welcome carries session id %q", w.SessionID)
				}
			} else {
				m := receiveError(t, conn)
				if m.Code != tt.code || !m.Fatal {
					t.Errorf("error = %v, want fatal %s", m, tt.code)
				}
			}

			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			if _, _, err := conn.ReadMessage(); err == nil {
				t.Error("connection still open after failed handshake")
			}
			if n := e.server.SessionCount(); n != 0 {
				t.Errorf("SessionCount() = %d, want 0", n)
			}
		})
	}
}

func TestServerBusy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSessions = 1
	e := newTestEnv(t, cfg)
	open(t, e)

	conn := e.dial(t)
	hello(t, conn, "")
	if w := receiveWelcome(t, conn); w.Status != protocol.HelloServerBusy {
		t.Errorf("Welcome.Status = %s, want ServerBusy", w.Status)
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	e := newTestEnv(t, nil)
	conn, _, _ := open(t, e)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.server.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	m := receiveError(t, conn)
	if m.Code != protocol.CodeShuttingDown || !m.Fatal {
		t.Errorf("error = %v, want fatal ShuttingDown", m)
	}

	late := e.dial(t)
	hello(t, late, "")
	if w := receiveWelcome(t, late); w.Status != protocol.HelloServerBusy {
		t.Errorf("Welcome.Status after shutdown = %s, want ServerBusy", w.Status)
	}
}

func TestAppFactoryPanic(t *testing.T) {
	s := New(DefaultConfig(), func(*window.Window) { panic("boom") },
		WithPrometheus(prometheus.NewRegistry()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	hello(t, conn, "")

	if w := receiveWelcome(t, conn); w.Status != protocol.HelloOK {
		t.Fatalf("Welcome.Status = %s, want OK", w.Status)
	}
	if m := receiveError(t, conn); m.Code != protocol.CodeServerError || !m.Fatal {
		t.Errorf("error = %v, want fatal ServerError", m)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t, nil)
	open(t, e)

	resp, err := http.Get(e.http.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`tessera_sessions_total{status="OK"} 1`,
		"tessera_sessions_active 1",
		`tessera_frames_received_total{type="Hello"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestMetricsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MetricsPath = ""
	e := newTestEnv(t, cfg)

	resp, err := http.Get(e.http.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestResourceEndpoint(t *testing.T) {
	src := resource.NewMemorySource()
	src.Put("logo.svg", "image/svg+xml", []byte("<svg/>"))
	reg := resource.NewRegistry()
	reg.RegisterAs("brand", src)

	e := newTestEnv(t, nil, WithResources(reg))

	resp, err := http.Get(e.http.URL + "/" + resource.Ref("brand", "logo.svg"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "<svg/>" {
		t.Errorf("GET = %d %q, want 200 <svg/>", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}

	missing, err := http.Get(e.http.URL + "/res/brand/missing.png")
	if err != nil {
		t.Fatal(err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", missing.StatusCode)
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin", nil, "", true},
		{"same host", nil, "http://example.com", true},
		{"other host", nil, "http://evil.test", false},
		{"allow listed", []string{"http://app.test"}, "http://app.test", true},
		{"wildcard", []string{"*"}, "http://anything.test", true},
		{"malformed", nil, "://", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.AllowedOrigins = tt.allowed
			s := New(cfg, testApp, WithPrometheus(prometheus.NewRegistry()))

			r := httptest.NewRequest(http.MethodGet, "http://example.com/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := s.checkOrigin(r); got != tt.want {
				t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	s := New(&Config{MaxMessageSize: -1}, testApp, WithPrometheus(prometheus.NewRegistry()))
	c := s.Config()
	d := DefaultConfig()

	if c.Addr != d.Addr || c.WebSocketPath != d.WebSocketPath {
		t.Errorf("paths = %q %q, want %q %q", c.Addr, c.WebSocketPath, d.Addr, d.WebSocketPath)
	}
	if c.MaxMessageSize != d.MaxMessageSize {
		t.Errorf("MaxMessageSize = %d, want %d", c.MaxMessageSize, d.MaxMessageSize)
	}
	if c.DefaultCodec != protocol.CodecBinary {
		t.Errorf("DefaultCodec = %q", c.DefaultCodec)
	}
	if c.PingInterval >= c.ReadTimeout {
		t.Errorf("PingInterval %v >= ReadTimeout %v", c.PingInterval, c.ReadTimeout)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.sessionOpened()
	m.handshake(protocol.HelloOK)
	m.synced(0.1, 3)
	m.batch(1, 1)
}
