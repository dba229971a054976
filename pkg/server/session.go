package server

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/protocol"
	"github.com/vango-dev/tessera/pkg/window"
)

// ErrSessionClosed is returned when writing to a closed session.
var ErrSessionClosed = errors.New("server: session closed")

// Session is one client connection and the window it displays.
//
// Frames are handled one at a time on the read goroutine; the window's own
// mutex serializes them against application code running through Dispatch
// or Window().Do. Changes made outside a client frame are pushed by the
// push goroutine as paints with seq 0. A synchronization pass and the write
// of its document happen under paintMu, so paints reach the client in the
// order they were computed. Writes from every goroutine are serialized by
// writeMu.
type Session struct {
	ID string

	server  *Server
	conn    *websocket.Conn
	config  *Config
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	window *window.Window
	codec  protocol.Codec

	paintMu   sync.Mutex
	writeMu   sync.Mutex
	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(s *Server, conn *websocket.Conn) *Session {
	id := generateSessionID()
	logger := s.logger.With("session_id", id)
	sess := &Session{
		ID:      id,
		server:  s,
		conn:    conn,
		config:  s.config,
		logger:  logger,
		metrics: s.metrics,
		tracer:  s.tracer,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	sess.window = window.New(window.WithLogger(logger), window.WithRepaintNotify(sess.notify))
	return sess
}

// notify records that the window has pending changes. It runs inside the
// window's critical section and never blocks.
func (s *Session) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Dispatch runs fn inside the window's critical section. The changes fn
// makes are pushed to the client without waiting for a client frame. A
// panic in fn is logged and reported to the client; the session stays open.
func (s *Session) Dispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("dispatch panic", "panic", r, "stack", string(debug.Stack()))
			s.reject(protocol.NewError(protocol.CodeServerError, "application task failed"))
		}
	}()
	s.window.Do(fn)
}

// Window returns the session's window.
func (s *Session) Window() *window.Window { return s.window }

// Codec returns the negotiated payload codec, nil before the handshake.
func (s *Session) Codec() protocol.Codec { return s.codec }

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.done }

// run performs the handshake and then handles frames until the connection
// fails or the client closes it.
func (s *Session) run(ctx context.Context) {
	defer s.Close()

	if !s.handshake(ctx) {
		return
	}
	defer s.server.release(s)

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})
	go s.pingLoop()
	go s.pushLoop(ctx)

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		if !s.handleMessage(ctx, msg) {
			return
		}
	}
}

// handshake reads the Hello, answers with a Welcome and sends the first
// paint. It reports whether the session is open.
func (s *Session) handshake(ctx context.Context) bool {
	s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	_, msg, err := s.conn.ReadMessage()
	if err != nil {
		s.logger.Debug("handshake read failed", "error", err)
		return false
	}

	frame, err := protocol.DecodeFrame(msg, s.config.MaxMessageSize)
	if err != nil {
		s.fail(protocol.NewFatalError(protocol.CodeInvalidFrame, "%v", err))
		return false
	}
	s.metrics.received(frame.Type, len(msg))
	if frame.Type != protocol.FrameHello {
		s.fail(protocol.NewFatalError(protocol.CodeUnexpectedFrame, "expected Hello, got %s", frame.Type))
		return false
	}
	body, err := frame.Body(s.config.MaxMessageSize)
	if err != nil {
		s.fail(protocol.NewFatalError(protocol.CodeInvalidFrame, "%v", err))
		return false
	}
	hello, err := protocol.DecodeHello(body)
	if err != nil {
		s.fail(protocol.NewFatalError(protocol.CodeInvalidPayload, "hello: %v", err))
		return false
	}

	welcome := &protocol.Welcome{
		Status:    protocol.HelloOK,
		Version:   protocol.CurrentVersion,
		SessionID: s.ID,
		WindowID:  s.window.ID(),
	}
	codecName := hello.Codec
	if codecName == "" {
		codecName = s.config.DefaultCodec
	}
	codec, ok := protocol.CodecByName(codecName)
	switch {
	case !protocol.CurrentVersion.Compatible(hello.Version):
		welcome.Status = protocol.HelloVersionMismatch
	case !ok:
		welcome.Status = protocol.HelloUnsupportedCodec
	default:
		welcome.Codec = codec.Name()
		welcome.Status = s.server.admit(s)
	}
	s.metrics.handshake(welcome.Status)

	if welcome.Status != protocol.HelloOK {
		welcome.SessionID, welcome.WindowID = "", ""
		s.logger.Info("handshake refused",
			"status", welcome.Status,
			"client_version", hello.Version.String(),
			"codec", hello.Codec)
		s.writeFrame(protocol.FrameHello, protocol.EncodeWelcome(welcome))
		return false
	}
	s.codec = codec

	if err := s.writeFrame(protocol.FrameHello, protocol.EncodeWelcome(welcome)); err != nil {
		s.server.release(s)
		return false
	}
	s.logger.Info("session started",
		"codec", codec.Name(),
		"client_version", hello.Version.String(),
		"previous_session", hello.SessionID)

	if !s.build() {
		s.server.release(s)
		return false
	}
	s.paintMu.Lock()
	err = s.sendPaint(ctx, 0, s.window.Sync, true)
	s.paintMu.Unlock()
	if err != nil {
		s.server.release(s)
		return false
	}
	return true
}

// build runs the AppFactory. A panicking factory ends the session.
func (s *Session) build() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("app factory panic", "panic", r, "stack", string(debug.Stack()))
			s.fail(protocol.NewFatalError(protocol.CodeServerError, "application failed to start"))
			ok = false
		}
	}()
	s.window.Do(func() { s.server.app(s.window) })
	return true
}

// handleMessage handles one frame after the handshake. It returns false when
// the session must end.
func (s *Session) handleMessage(ctx context.Context, msg []byte) bool {
	frame, err := protocol.DecodeFrame(msg, s.config.MaxMessageSize)
	if err != nil {
		s.logger.Error("frame decode error", "error", err)
		s.reject(protocol.NewError(protocol.CodeInvalidFrame, "%v", err))
		return true
	}
	s.metrics.received(frame.Type, len(msg))

	body, err := frame.Body(s.config.MaxMessageSize)
	if err != nil {
		s.logger.Error("frame body error", "type", frame.Type, "error", err)
		s.reject(protocol.NewError(protocol.CodeInvalidFrame, "%v", err))
		return true
	}

	switch frame.Type {
	case protocol.FrameVariables:
		s.handleVariables(ctx, body)
	case protocol.FrameControl:
		return s.handleControl(ctx, body)
	default:
		s.reject(protocol.NewError(protocol.CodeUnexpectedFrame, "unexpected %s frame", frame.Type))
	}
	return true
}

func (s *Session) handleVariables(ctx context.Context, body []byte) {
	batch, err := s.codec.DecodeVariables(body)
	if err != nil {
		s.logger.Error("variables decode error", "error", err)
		s.reject(protocol.NewError(protocol.CodeInvalidPayload, "variables: %v", err))
		return
	}

	ctx, span := s.tracer.Start(ctx, "tessera.batch", trace.WithAttributes(
		attribute.String("tessera.session_id", s.ID),
		attribute.Int64("tessera.seq", int64(batch.Seq)),
		attribute.Int("tessera.changes", batch.Len()),
	))
	// Held across apply and sync so a push cannot carry this batch's
	// changes under seq 0.
	s.paintMu.Lock()
	defer s.paintMu.Unlock()
	res := s.window.ApplyVariables(window.Batch(batch.Changes))
	span.SetAttributes(
		attribute.Int("tessera.stale", res.Stale),
		attribute.Int("tessera.rejected", res.Rejected),
		attribute.Int("tessera.changed", res.Changed),
		attribute.Int("tessera.panicked", res.Panicked),
	)
	if res.Panicked > 0 {
		span.SetStatus(codes.Error, "listener panic")
	}
	span.End()
	s.metrics.batch(res.Stale, res.Rejected)

	if res.Panicked > 0 {
		s.reject(protocol.NewError(protocol.CodeServerError, "%d component(s) failed to apply changes", res.Panicked))
	}
	s.sendPaint(ctx, batch.Seq, s.window.Sync, true)
}

func (s *Session) handleControl(ctx context.Context, body []byte) bool {
	c, err := protocol.DecodeControl(body)
	if err != nil {
		s.reject(protocol.NewError(protocol.CodeInvalidPayload, "control: %v", err))
		return true
	}
	switch c.Type {
	case protocol.ControlPing:
		s.writeFrame(protocol.FrameControl, protocol.EncodeControl(&protocol.Control{
			Type:  protocol.ControlPong,
			Value: c.Value,
		}))
	case protocol.ControlPong:
	case protocol.ControlResync:
		s.logger.Info("client resync")
		s.paintMu.Lock()
		s.sendPaint(ctx, 0, s.window.Resync, true)
		s.paintMu.Unlock()
	case protocol.ControlClose:
		s.logger.Info("client closed session", "reason", c.Reason)
		return false
	default:
		s.reject(protocol.NewError(protocol.CodeInvalidPayload, "unknown control type 0x%02x", uint8(c.Type)))
	}
	return true
}

// pushLoop paints changes made outside client frames.
func (s *Session) pushLoop(ctx context.Context) {
	for {
		select {
		case <-s.wake:
			s.paintMu.Lock()
			s.sendPaint(ctx, 0, s.window.Sync, false)
			s.paintMu.Unlock()
		case <-s.done:
			return
		}
	}
}

// sendPaint runs one synchronization pass and sends its document. Paint
// errors of single components are logged; the rest of the document is
// still sent. An empty document is only sent when always is set, as a
// reply the client waits for.
//
// When the document cannot be encoded the window forgets what the client
// holds, so the next pass repaints everything. The caller holds paintMu.
func (s *Session) sendPaint(ctx context.Context, seq uint64, pass func() (*paint.Document, error), always bool) error {
	_, span := s.tracer.Start(ctx, "tessera.sync", trace.WithAttributes(
		attribute.String("tessera.session_id", s.ID),
		attribute.Int64("tessera.seq", int64(seq)),
	))
	defer span.End()

	start := time.Now()
	doc, err := pass()
	if err != nil {
		span.RecordError(err)
		s.logger.Error("paint failed", "error", err)
	}
	if doc == nil {
		span.SetStatus(codes.Error, "no document")
		s.reject(protocol.NewError(protocol.CodeServerError, "paint failed"))
		return err
	}
	if !always && len(doc.Changes) == 0 {
		return nil
	}
	nodes := doc.Count()
	s.metrics.synced(time.Since(start).Seconds(), nodes)
	span.SetAttributes(
		attribute.Int("tessera.changes", len(doc.Changes)),
		attribute.Int("tessera.nodes", nodes),
	)

	payload, err := s.codec.EncodePaint(&protocol.PaintMessage{Seq: seq, Document: doc})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("paint encode failed", "error", err)
		s.window.RepaintAll()
		s.reject(protocol.NewError(protocol.CodeServerError, "paint failed"))
		return err
	}
	if err := s.writeFrame(protocol.FramePaint, payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// reject answers a bad client frame with a non-fatal Error frame.
func (s *Session) reject(m *protocol.ErrorMessage) {
	s.metrics.frameError(m.Code)
	s.writeFrame(protocol.FrameError, protocol.EncodeErrorMessage(m))
}

// fail sends a fatal Error frame. The caller ends the session.
func (s *Session) fail(m *protocol.ErrorMessage) {
	s.logger.Info("session failed", "code", m.Code, "message", m.Message)
	s.metrics.frameError(m.Code)
	s.writeFrame(protocol.FrameError, protocol.EncodeErrorMessage(m))
}

// writeFrame sends one frame, compressing it above the configured
// threshold.
func (s *Session) writeFrame(t protocol.FrameType, payload []byte) error {
	frame := protocol.NewFrame(t, payload, s.config.CompressThreshold)
	data := frame.Encode()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		s.logger.Error("write failed", "type", t, "error", err)
		return err
	}
	s.metrics.sent(t, len(data))
	return nil
}

func (s *Session) pingLoop() {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.config.WriteTimeout))
			s.writeMu.Unlock()
			if err != nil {
				s.logger.Debug("ping failed", "error", err)
				return
			}
		case <-s.done:
			return
		}
	}
}

// closeWith sends m and closes the session.
func (s *Session) closeWith(m *protocol.ErrorMessage) {
	s.writeFrame(protocol.FrameError, protocol.EncodeErrorMessage(m))
	s.Close()
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		close(s.done)
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()
		s.conn.Close()
		s.logger.Debug("session closed")
	})
}
