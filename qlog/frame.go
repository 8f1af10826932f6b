package qlog

// FrameType enumerates QUIC frame types by their qlog names.
type FrameType string

// Frame types.
const (
	FramePadding            FrameType = "padding"
	FramePing               FrameType = "ping"
	FrameAck                FrameType = "ack"
	FrameResetStream        FrameType = "reset_stream"
	FrameStopSending        FrameType = "stop_sending"
	FrameCrypto             FrameType = "crypto"
	FrameNewToken           FrameType = "new_token"
	FrameStream             FrameType = "stream"
	FrameMaxData            FrameType = "max_data"
	FrameMaxStreamData      FrameType = "max_stream_data"
	FrameMaxStreams         FrameType = "max_streams"
	FrameDataBlocked        FrameType = "data_blocked"
	FrameStreamDataBlocked  FrameType = "stream_data_blocked"
	FrameStreamsBlocked     FrameType = "streams_blocked"
	FrameNewConnectionID    FrameType = "new_connection_id"
	FrameRetireConnectionID FrameType = "retire_connection_id"
	FramePathChallenge      FrameType = "path_challenge"
	FramePathResponse       FrameType = "path_response"
	FrameConnectionClose    FrameType = "connection_close"
	FrameHandshakeDone      FrameType = "handshake_done"
	FrameDatagram           FrameType = "datagram"
	FrameUnknown            FrameType = "unknown"
)

// AckRange is one [Start, End] range of acknowledged packet numbers,
// inclusive on both ends.
type AckRange struct {
	Start uint64
	End   uint64
}

// MarshalJSON emits the range as the two-element array the schema uses.
func (r AckRange) MarshalJSON() ([]byte, error) {
	return marshalUintPair(r.Start, r.End)
}

// UnmarshalJSON accepts both the [start, end] pair and a single-element
// [start] range.
func (r *AckRange) UnmarshalJSON(b []byte) error {
	return unmarshalUintPair(b, &r.Start, &r.End)
}

// Frame is one QUIC frame, discriminated by FrameType. Only fields relevant
// to the frame type are populated.
type Frame struct {
	FrameType FrameType `json:"frame_type"`

	// padding
	PaddingLength *uint32 `json:"padding_length,omitempty"`

	// ack
	ACKDelay    *float64   `json:"ack_delay,omitempty"`
	ACKedRanges []AckRange `json:"acked_ranges,omitempty"`
	ECT1        *uint64    `json:"ect1,omitempty"`
	ECT0        *uint64    `json:"ect0,omitempty"`
	CE          *uint64    `json:"ce,omitempty"`

	// stream, reset_stream, stop_sending, max_stream_data,
	// stream_data_blocked
	StreamID *uint64 `json:"stream_id,omitempty"`

	// reset_stream
	FinalSize *uint64 `json:"final_size,omitempty"`

	// crypto, stream
	Offset *uint64 `json:"offset,omitempty"`
	Length *uint64 `json:"length,omitempty"`
	Fin    *bool   `json:"fin,omitempty"`

	// new_token
	Token *Token `json:"token,omitempty"`

	// max_data, max_stream_data, data_blocked, stream_data_blocked
	Maximum *uint64 `json:"maximum,omitempty"`
	Limit   *uint64 `json:"limit,omitempty"`

	// max_streams, streams_blocked
	StreamType StreamType `json:"stream_type,omitempty"`

	// new_connection_id, retire_connection_id
	SequenceNumber      *uint32 `json:"sequence_number,omitempty"`
	RetirePriorTo       *uint32 `json:"retire_prior_to,omitempty"`
	ConnectionID        string  `json:"connection_id,omitempty"`
	ConnectionIDLength  *uint8  `json:"connection_id_length,omitempty"`
	StatelessResetToken string  `json:"stateless_reset_token,omitempty"`

	// path_challenge, path_response
	Data string `json:"data,omitempty"`

	// connection_close
	ErrorSpace       ErrorSpace `json:"error_space,omitempty"`
	ErrorCode        *uint64    `json:"error_code,omitempty"`
	RawErrorCode     *uint64    `json:"raw_error_code,omitempty"`
	Reason           string     `json:"reason,omitempty"`
	TriggerFrameType *uint64    `json:"trigger_frame_type,omitempty"`

	// unknown
	RawFrameType *uint64 `json:"raw_frame_type,omitempty"`

	Raw *RawInfo `json:"raw,omitempty"`
}
