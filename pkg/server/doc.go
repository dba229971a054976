// Package server serves tessera windows over WebSocket.
//
// Every connection gets its own Session and its own window.Window, built by
// the application's AppFactory. The session speaks the frame protocol of
// package protocol:
//
//	client                               server
//	  │── Hello {version, codec} ──────────▶│
//	  │◀──────────────── Welcome {status} ──│
//	  │◀───────────── Paint {seq 0, full} ──│
//	  │                                     │
//	  │── Variables {seq n, changes} ──────▶│  ApplyVariables, Sync
//	  │◀───────────── Paint {seq n, diff} ──│
//	  │                                     │
//	  │── Control {resync} ────────────────▶│  Resync
//	  │◀───────────── Paint {seq 0, full} ──│
//
// Frames that fail to decode are answered with a non-fatal Error frame and
// the session keeps running. Anything but a Hello as the first frame is
// fatal.
//
// Routes mounts the WebSocket endpoint, the resource endpoint and the
// Prometheus metrics endpoint on a chi router.
package server
