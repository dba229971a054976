package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/tessera/internal/errors"
	"github.com/vango-dev/tessera/pkg/protocol"
)

// Configuration file names, in lookup order.
var ConfigFileNames = []string{"tessera.yaml", "tessera.yml", "tessera.json"}

const (
	DefaultAddr              = ":8080"
	DefaultWebSocketPath     = "/ws"
	DefaultMetricsPath       = "/metrics"
	DefaultReadTimeout       = 60 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultPingInterval      = 25 * time.Second
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultMaxMessageSize    = 1 << 20
	DefaultCompressThreshold = protocol.DefaultCompressThreshold
)

// Resource backends.
const (
	BackendMemory = "memory"
	BackendDir    = "dir"
	BackendS3     = "s3"
)

// Config is the content of tessera.yaml or tessera.json.
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Protocol  ProtocolConfig  `json:"protocol" yaml:"protocol"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
	Resources ResourcesConfig `json:"resources" yaml:"resources"`
	Log       LogConfig       `json:"log" yaml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig configures the HTTP listener and websocket sessions.
type ServerConfig struct {
	// Addr is the listen address, host:port.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// WebSocketPath is the URL path sessions connect to.
	WebSocketPath string `json:"websocketPath,omitempty" yaml:"websocket_path,omitempty"`

	// ReadTimeout is how long a session waits for the next client frame
	// (pongs included) before giving up.
	ReadTimeout Duration `json:"readTimeout,omitempty" yaml:"read_timeout,omitempty"`

	// WriteTimeout bounds every frame write.
	WriteTimeout Duration `json:"writeTimeout,omitempty" yaml:"write_timeout,omitempty"`

	// PingInterval is the period of websocket pings. It must be shorter than
	// ReadTimeout.
	PingInterval Duration `json:"pingInterval,omitempty" yaml:"ping_interval,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `json:"shutdownTimeout,omitempty" yaml:"shutdown_timeout,omitempty"`

	// MaxMessageSize is the largest client frame accepted, in bytes.
	MaxMessageSize int `json:"maxMessageSize,omitempty" yaml:"max_message_size,omitempty"`

	// MaxSessions limits concurrent sessions; 0 means unlimited.
	MaxSessions int `json:"maxSessions,omitempty" yaml:"max_sessions,omitempty"`

	// AllowedOrigins lists the Origin values accepted on upgrade. Empty means
	// same origin only; "*" accepts any.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowed_origins,omitempty"`
}

// ProtocolConfig configures payload encoding.
type ProtocolConfig struct {
	// Codec is the default codec when a client does not name one.
	Codec string `json:"codec,omitempty" yaml:"codec,omitempty"`

	// CompressThreshold is the payload size above which frames are zstd
	// compressed; 0 disables compression.
	CompressThreshold int `json:"compressThreshold" yaml:"compress_threshold"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// ResourcePath is the URL prefix resources are served under. Resource
// references are paths relative to the server root, so it is fixed.
const ResourcePath = "/res/"

// ResourcesConfig selects where resource bytes come from.
type ResourcesConfig struct {
	// Backend is memory, dir or s3.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Dir is the directory served by the dir backend.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	S3 S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3Config locates objects for the s3 backend.
type S3Config struct {
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{
		Protocol: ProtocolConfig{CompressThreshold: DefaultCompressThreshold},
		Metrics:  MetricsConfig{Enabled: true},
	}
	c.applyDefaults()
	return c
}

// Exists reports whether dir contains a configuration file.
func Exists(dir string) bool {
	_, ok := find(dir)
	return ok
}

func find(dir string) (string, bool) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// Load reads the first configuration file found in dir.
func Load(dir string) (*Config, error) {
	path, ok := find(dir)
	if !ok {
		return nil, errors.New("T060").
			WithDetail("No " + strings.Join(ConfigFileNames, ", ") + " in " + dir)
	}
	return LoadFile(path)
}

// LoadFile reads the configuration file at path. The format follows the
// extension: .yaml and .yml are YAML, anything else JSON. Unknown keys are
// rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("T060").WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("T061").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.New("T061").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML and uses known keys")
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, errors.New("T061").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON and uses known keys")
		}
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// SaveTo writes the configuration to path, in the format its extension
// selects.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("T061").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("T061").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file, or "." when the
// config was not loaded from a file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	s := &c.Server
	if s.Addr == "" {
		s.Addr = DefaultAddr
	}
	if s.WebSocketPath == "" {
		s.WebSocketPath = DefaultWebSocketPath
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = Duration(DefaultReadTimeout)
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = Duration(DefaultWriteTimeout)
	}
	if s.PingInterval == 0 {
		s.PingInterval = Duration(DefaultPingInterval)
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	if s.MaxMessageSize == 0 {
		s.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.Protocol.Codec == "" {
		c.Protocol.Codec = protocol.CodecBinary
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Resources.Backend == "" {
		c.Resources.Backend = BackendMemory
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	s := c.Server
	if _, _, err := net.SplitHostPort(s.Addr); err != nil {
		return errors.New("T062").WithField("server.addr").Wrap(err)
	}
	for _, d := range []struct {
		field string
		d     Duration
	}{
		{"server.read_timeout", s.ReadTimeout},
		{"server.write_timeout", s.WriteTimeout},
		{"server.ping_interval", s.PingInterval},
		{"server.shutdown_timeout", s.ShutdownTimeout},
	} {
		if d.d <= 0 {
			return errors.New("T063").WithField(d.field)
		}
	}
	if s.PingInterval >= s.ReadTimeout {
		return errors.New("T063").
			WithField("server.ping_interval").
			WithDetail("The ping interval must be shorter than the read timeout, or idle sessions time out.")
	}
	if s.MaxMessageSize <= 0 || s.MaxMessageSize > protocol.HardMaxAllocation {
		return errors.New("T064").WithField("server.max_message_size")
	}
	if s.MaxSessions < 0 {
		return errors.Newf(errors.CategoryConfig, "max_sessions must not be negative").
			WithField("server.max_sessions")
	}

	if _, ok := protocol.CodecByName(c.Protocol.Codec); !ok {
		return errors.New("T065").WithField("protocol.codec")
	}
	if c.Protocol.CompressThreshold < 0 {
		return errors.New("T064").
			WithField("protocol.compress_threshold").
			WithDetail("The compression threshold must not be negative; 0 disables compression.")
	}

	seen := make(map[string]string)
	for _, p := range []struct {
		field, path string
		used        bool
	}{
		{"resources", ResourcePath, true},
		{"server.websocket_path", s.WebSocketPath, true},
		{"metrics.path", c.Metrics.Path, c.Metrics.Enabled},
	} {
		if !p.used {
			continue
		}
		if !strings.HasPrefix(p.path, "/") {
			return errors.New("T067").WithField(p.field)
		}
		key := strings.TrimSuffix(p.path, "/")
		if other, dup := seen[key]; dup {
			return errors.New("T067").
				WithField(p.field).
				WithDetail(fmt.Sprintf("%s collides with %s.", p.path, other))
		}
		seen[key] = p.field
	}

	r := c.Resources
	switch r.Backend {
	case BackendMemory:
	case BackendDir:
		if r.Dir == "" {
			return errors.New("T066").WithField("resources.dir")
		}
	case BackendS3:
		if r.S3.Bucket == "" {
			return errors.New("T066").WithField("resources.s3.bucket")
		}
	default:
		return errors.New("T066").WithField("resources.backend")
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return errors.New("T068").WithField("log.level").Wrap(err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("T068").WithField("log.format")
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(l.Level))
	return lvl, err
}

// NewLogger builds a logger writing to w in the configured format.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := l.SlogLevel()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
