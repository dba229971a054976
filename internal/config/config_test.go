package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/vango-dev/tessera/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Server.ReadTimeout.Std() != DefaultReadTimeout {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, DefaultReadTimeout)
	}
	if cfg.Protocol.Codec != "binary" {
		t.Errorf("Protocol.Codec = %q, want binary", cfg.Protocol.Codec)
	}
	if cfg.Protocol.CompressThreshold != DefaultCompressThreshold {
		t.Errorf("Protocol.CompressThreshold = %d", cfg.Protocol.CompressThreshold)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
	if cfg.Resources.Backend != BackendMemory {
		t.Errorf("Resources.Backend = %q, want memory", cfg.Resources.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	data := `
server:
  addr: "127.0.0.1:9000"
  read_timeout: 2m
  ping_interval: 30
  max_message_size: 65536
protocol:
  codec: cbor
  compress_threshold: 0
metrics:
  enabled: false
resources:
  backend: s3
  s3:
    bucket: assets
    prefix: public/
    region: eu-west-1
log:
  level: debug
  format: json
`
	if err := os.WriteFile(filepath.Join(dir, "tessera.yaml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := New()
	want.Server.Addr = "127.0.0.1:9000"
	want.Server.ReadTimeout = Duration(2 * time.Minute)
	want.Server.PingInterval = Duration(30 * time.Second)
	want.Server.MaxMessageSize = 65536
	want.Protocol = ProtocolConfig{Codec: "cbor", CompressThreshold: 0}
	want.Metrics.Enabled = false
	want.Resources.Backend = BackendS3
	want.Resources.S3 = S3Config{Bucket: "assets", Prefix: "public/", Region: "eu-west-1"}
	want.Log = LogConfig{Level: "debug", Format: "json"}

	if diff := cmp.Diff(want, cfg, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Path() != filepath.Join(dir, "tessera.yaml") {
		t.Errorf("Path() = %q", cfg.Path())
	}
	if cfg.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), dir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	data := `{
  "server": {"addr": ":7000", "writeTimeout": "3s"},
  "resources": {"backend": "dir", "dir": "./public"}
}`
	if err := os.WriteFile(filepath.Join(dir, "tessera.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.WriteTimeout.Std() != 3*time.Second {
		t.Errorf("Server.WriteTimeout = %v", cfg.Server.WriteTimeout)
	}
	if cfg.Server.WebSocketPath != DefaultWebSocketPath {
		t.Errorf("Server.WebSocketPath = %q, want default", cfg.Server.WebSocketPath)
	}
	if cfg.Resources.Dir != "./public" {
		t.Errorf("Resources.Dir = %q", cfg.Resources.Dir)
	}
}

func TestLoadPrefersYAML(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "tessera.json"), []byte(`{"server":{"addr":":1"}}`), 0o644)
	os.WriteFile(filepath.Join(dir, "tessera.yaml"), []byte("server:\n  addr: \":2\"\n"), 0o644)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":2" {
		t.Errorf("Server.Addr = %q, want :2 from tessera.yaml", cfg.Server.Addr)
	}
	if !Exists(dir) {
		t.Error("Exists() = false")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
	}{
		{"missing", "", "", "T060"},
		{"bad json", "tessera.json", `{"server":`, "T061"},
		{"unknown json key", "tessera.json", `{"sever":{}}`, "T061"},
		{"unknown yaml key", "tessera.yaml", "server:\n  adr: x\n", "T061"},
		{"bad duration", "tessera.yaml", "server:\n  read_timeout: soon\n", "T061"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != "" {
				if err := os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			_, err := Load(dir)
			if got := errors.CodeOf(err); got != tt.wantCode {
				t.Errorf("Load() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tessera.yml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile(empty) error = %v", err)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantCode  string
		wantField string
	}{
		{"bad addr", func(c *Config) { c.Server.Addr = "8080" }, "T062", "server.addr"},
		{"zero write timeout", func(c *Config) { c.Server.WriteTimeout = -1 }, "T063", "server.write_timeout"},
		{"ping not below read", func(c *Config) { c.Server.PingInterval = c.Server.ReadTimeout }, "T063", "server.ping_interval"},
		{"message too large", func(c *Config) { c.Server.MaxMessageSize = 64 << 20 }, "T064", "server.max_message_size"},
		{"negative threshold", func(c *Config) { c.Protocol.CompressThreshold = -1 }, "T064", "protocol.compress_threshold"},
		{"unknown codec", func(c *Config) { c.Protocol.Codec = "json" }, "T065", "protocol.codec"},
		{"relative path", func(c *Config) { c.Server.WebSocketPath = "ws" }, "T067", "server.websocket_path"},
		{"colliding paths", func(c *Config) { c.Metrics.Path = "/ws" }, "T067", "metrics.path"},
		{"reserved resource path", func(c *Config) { c.Server.WebSocketPath = "/res" }, "T067", "server.websocket_path"},
		{"dir without dir", func(c *Config) { c.Resources.Backend = BackendDir }, "T066", "resources.dir"},
		{"s3 without bucket", func(c *Config) { c.Resources.Backend = BackendS3 }, "T066", "resources.s3.bucket"},
		{"unknown backend", func(c *Config) { c.Resources.Backend = "ftp" }, "T066", "resources.backend"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "T068", "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "T068", "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if got := errors.CodeOf(err); got != tt.wantCode {
				t.Fatalf("Validate() = %v, want code %s", err, tt.wantCode)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("Validate() = %q, want field %s", err, tt.wantField)
			}
		})
	}
}

func TestValidateDisabledMetricsPathIgnored(t *testing.T) {
	cfg := New()
	cfg.Metrics.Enabled = false
	cfg.Metrics.Path = "/res"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			cfg := New()
			cfg.Server.Addr = "localhost:1234"
			cfg.Server.ReadTimeout = Duration(90 * time.Second)
			cfg.Resources.S3.Bucket = "b"

			path := filepath.Join(t.TempDir(), name)
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo() error = %v", err)
			}
			got, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if diff := cmp.Diff(cfg, got, cmpopts.IgnoreUnexported(Config{})); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf strings.Builder
	LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf).Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}

	LogConfig{Level: "debug", Format: "json"}.NewLogger(&buf).Debug("shown", "k", 1)
	if !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Errorf("json output = %q", buf.String())
	}
}
