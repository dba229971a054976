package server

import (
	"time"

	"github.com/vango-dev/tessera/internal/config"
	"github.com/vango-dev/tessera/pkg/protocol"
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address used by Run.
	Addr string

	// WebSocketPath is where sessions connect.
	WebSocketPath string

	// MetricsPath serves Prometheus metrics; empty disables the endpoint.
	MetricsPath string

	// ReadTimeout bounds the wait for the next client frame or pong.
	ReadTimeout time.Duration

	// WriteTimeout bounds every frame write.
	WriteTimeout time.Duration

	// PingInterval is the period of websocket pings.
	PingInterval time.Duration

	// ShutdownTimeout bounds graceful shutdown in Run.
	ShutdownTimeout time.Duration

	// MaxMessageSize is the largest accepted client frame payload.
	MaxMessageSize int

	// CompressThreshold is passed to protocol.NewFrame.
	CompressThreshold int

	// DefaultCodec is used when the Hello names none.
	DefaultCodec string

	// MaxSessions limits concurrent sessions; 0 means unlimited.
	MaxSessions int

	// AllowedOrigins lists accepted Origin headers. Empty means same host
	// only; "*" accepts any origin.
	AllowedOrigins []string
}

// DefaultConfig returns a Config with the defaults of package config.
func DefaultConfig() *Config {
	return FromConfig(config.New())
}

// FromConfig converts a loaded configuration file.
func FromConfig(c *config.Config) *Config {
	cfg := &Config{
		Addr:              c.Server.Addr,
		WebSocketPath:     c.Server.WebSocketPath,
		ReadTimeout:       c.Server.ReadTimeout.Std(),
		WriteTimeout:      c.Server.WriteTimeout.Std(),
		PingInterval:      c.Server.PingInterval.Std(),
		ShutdownTimeout:   c.Server.ShutdownTimeout.Std(),
		MaxMessageSize:    c.Server.MaxMessageSize,
		CompressThreshold: c.Protocol.CompressThreshold,
		DefaultCodec:      c.Protocol.Codec,
		MaxSessions:       c.Server.MaxSessions,
		AllowedOrigins:    c.Server.AllowedOrigins,
	}
	if c.Metrics.Enabled {
		cfg.MetricsPath = c.Metrics.Path
	}
	return cfg
}

func (c *Config) withDefaults() *Config {
	out := *c
	d := FromConfig(config.New())
	if out.Addr == "" {
		out.Addr = d.Addr
	}
	if out.WebSocketPath == "" {
		out.WebSocketPath = d.WebSocketPath
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = d.ReadTimeout
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.PingInterval <= 0 {
		out.PingInterval = d.PingInterval
	}
	if out.ShutdownTimeout <= 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	if out.MaxMessageSize <= 0 || out.MaxMessageSize > protocol.HardMaxAllocation {
		out.MaxMessageSize = d.MaxMessageSize
	}
	if out.DefaultCodec == "" {
		out.DefaultCodec = protocol.CodecBinary
	}
	return &out
}
