// Package config loads the tessera server configuration.
//
// The configuration lives in tessera.yaml (or tessera.yml, or tessera.json)
// next to the binary. Missing fields take defaults; Validate reports the
// first invalid field as a coded error.
//
// # Configuration File Structure
//
//	server:
//	  addr: ":8080"
//	  websocket_path: /ws
//	  read_timeout: 60s
//	  write_timeout: 10s
//	  ping_interval: 25s
//	  max_message_size: 1048576
//	protocol:
//	  codec: binary
//	  compress_threshold: 1024
//	metrics:
//	  enabled: true
//	  path: /metrics
//	resources:
//	  backend: s3
//	  s3:
//	    bucket: tessera-assets
//	    prefix: public/
//	    region: eu-west-1
//	log:
//	  level: info
//	  format: json
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
