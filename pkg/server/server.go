package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/tessera/pkg/protocol"
	"github.com/vango-dev/tessera/pkg/resource"
	"github.com/vango-dev/tessera/pkg/window"
)

// TracerName is the instrumentation name of the server's spans.
const TracerName = "github.com/vango-dev/tessera/pkg/server"

// ErrServerClosed is returned by Run after Shutdown.
var ErrServerClosed = errors.New("server: closed")

// AppFactory populates the window of a new session. It runs inside the
// window's critical section before the first paint.
type AppFactory func(w *window.Window)

// Server accepts WebSocket connections and runs one Session per connection.
type Server struct {
	config    *Config
	app       AppFactory
	logger    *slog.Logger
	resources *resource.Registry
	gatherer  prometheus.Gatherer
	metrics   *Metrics
	tracer    trace.Tracer
	upgrader  websocket.Upgrader

	mu         sync.Mutex
	sessions   map[string]*Session
	closing    bool
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Sessions add a session_id attribute.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithResources serves reg under /res/.
func WithResources(reg *resource.Registry) Option {
	return func(s *Server) { s.resources = reg }
}

// WithPrometheus registers the server metrics with reg and serves reg on
// the metrics path. Without it the default registry is used.
func WithPrometheus(reg *prometheus.Registry, opts ...MetricsOption) Option {
	return func(s *Server) {
		s.metrics = NewMetrics(reg, opts...)
		s.gatherer = reg
	}
}

// WithTracer sets the tracer for sync and batch spans. The default comes
// from the global OpenTelemetry provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// New creates a server running app for every session.
func New(config *Config, app AppFactory, opts ...Option) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if app == nil {
		panic("server: nil AppFactory")
	}
	s := &Server{
		config:   config.withDefaults(),
		app:      app,
		logger:   slog.Default(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(prometheus.DefaultRegisterer)
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(TracerName)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Config returns the effective configuration.
func (s *Server) Config() *Config { return s.config }

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger { return s.logger }

// Routes returns the HTTP handler of the server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get(s.config.WebSocketPath, s.HandleWebSocket)
	if s.resources != nil {
		r.Handle("/res/*", resource.Handler(s.resources, s.logger))
	}
	if s.config.MetricsPath != "" {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// checkOrigin accepts requests without an Origin header, same-host origins
// and the configured allow list.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(s.config.AllowedOrigins, "*") || slices.Contains(s.config.AllowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// HandleWebSocket upgrades the request and runs a session until the
// connection closes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(int64(s.config.MaxMessageSize + protocol.FrameHeaderSize))

	sess := newSession(s, conn)
	sess.run(r.Context())
}

// admit registers sess unless the server is closing or full.
func (s *Server) admit(sess *Session) protocol.HelloStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return protocol.HelloServerBusy
	}
	if s.config.MaxSessions > 0 && len(s.sessions) >= s.config.MaxSessions {
		return protocol.HelloServerBusy
	}
	s.sessions[sess.ID] = sess
	s.metrics.sessionOpened()
	return protocol.HelloOK
}

func (s *Server) release(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; ok {
		delete(s.sessions, sess.ID)
		s.metrics.sessionClosed()
	}
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Session returns the open session with the given id.
func (s *Server) Session(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: s.config.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return ErrServerClosed
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown closes every session with a fatal ShuttingDown error and stops
// the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	srv := s.httpServer
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.closeWith(protocol.NewFatalError(protocol.CodeShuttingDown, "server shutting down"))
	}

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}

// generateSessionID returns a random 128-bit hex id.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}
