// Package protocol implements the Tessera wire protocol.
//
// Every message travels in a Frame: a 6 byte header (type, flags, uint32
// payload length) and the payload. Payloads larger than a threshold are
// zstd-compressed when that makes them smaller, signalled by FlagCompressed.
//
// A session runs:
//
//	client                               server
//	  Hello{Codec, Resync}        ───▶
//	                              ◀───   Hello frame: Welcome{Status, WindowID}
//	                              ◀───   Paint{Seq: 0, full document}
//	  Variables{Seq: n, changes}  ───▶
//	                              ◀───   Paint{Seq: n, changed components}
//	  Control{Resync}             ───▶
//	                              ◀───   Paint{Seq: 0, full document}
//
// Malformed input is answered with an Error frame; the session continues
// unless the error is fatal.
//
// # Binary encoding
//
// The binary codec uses unsigned LEB128 varints for lengths and counts,
// zigzag varints for signed integers, length-prefixed UTF-8 strings and
// big-endian fixed-width numbers. A value is one kind byte followed by its
// payload (see Encoder.WriteValue). Maps are written with sorted keys so
// that equal messages encode identically.
//
// Decoders never trust a length prefix: allocations, collection counts and
// nesting depth are bounded by Limits.
//
// # CBOR
//
// Paint and Variables payloads may instead use CBOR (core deterministic
// encoding), selected by name in the Hello.
package protocol
