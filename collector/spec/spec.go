// Package spec contains constants of the qlog collection protocol.
package spec

import "time"

// LiveURLPath accepts live JSON-SEQ event streams over WebSocket.
const LiveURLPath = "/qlog/v1/live"

// UploadURLPath accepts complete JSON-SEQ documents over HTTP POST.
const UploadURLPath = "/qlog/v1/upload"

// SecWebSocketProtocol is the WebSocket subprotocol for live streams.
const SecWebSocketProtocol = "qlog.v1"

// MaxRecordSize is the maximum size of a single qlog record. Records
// larger than this terminate the stream.
const MaxRecordSize = 1 << 20

// MaxUploadSize is the maximum size of a complete uploaded document,
// after decompression.
const MaxUploadSize = 1 << 28

// MaxStreamRuntime bounds how long a live stream may stay open. QUIC
// connections can be long-lived, but an archive that never closes is
// never queryable, so streams are cut and clients reconnect.
const MaxStreamRuntime = 30 * time.Minute

// MinStatsInterval and MaxStatsInterval bound the poisson-sampled interval
// between server-side stream statistics snapshots.
const (
	MinStatsInterval = 250 * time.Millisecond
	AvgStatsInterval = 1 * time.Second
	MaxStatsInterval = 5 * time.Second
)
