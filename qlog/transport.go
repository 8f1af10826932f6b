package qlog

// PacketType enumerates QUIC packet types as they appear in packet headers.
type PacketType string

// Packet types.
const (
	PacketInitial            PacketType = "initial"
	PacketHandshake          PacketType = "handshake"
	PacketZeroRTT            PacketType = "0RTT"
	PacketOneRTT             PacketType = "1RTT"
	PacketRetry              PacketType = "retry"
	PacketVersionNegotiation PacketType = "version_negotiation"
	PacketStatelessReset     PacketType = "stateless_reset"
	PacketUnknown            PacketType = "unknown"
)

// PacketNumberSpace enumerates the three packet number spaces.
type PacketNumberSpace string

// Packet number spaces.
const (
	SpaceInitial         PacketNumberSpace = "initial"
	SpaceHandshake       PacketNumberSpace = "handshake"
	SpaceApplicationData PacketNumberSpace = "application_data"
)

// StreamType distinguishes bidirectional from unidirectional streams.
type StreamType string

// Stream types.
const (
	StreamBidirectional  StreamType = "bidirectional"
	StreamUnidirectional StreamType = "unidirectional"
)

// StreamSide indicates which half of a stream an event refers to.
type StreamSide string

// Stream sides.
const (
	StreamSending   StreamSide = "sending"
	StreamReceiving StreamSide = "receiving"
)

// ECN enumerates the ECN codepoints observed on a path.
type ECN string

// ECN codepoints.
const (
	ECNNotECT ECN = "Not-ECT"
	ECNECT1   ECN = "ECT(1)"
	ECNECT0   ECN = "ECT(0)"
	ECNCE     ECN = "CE"
)

// Token is an address-validation or retry token carried in a packet header.
type Token struct {
	Type    string         `json:"type,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Raw     *RawInfo       `json:"raw,omitempty"`
}

// RawInfo describes the raw wire image of a packet or frame.
type RawInfo struct {
	// Length is the full length in bytes, including headers and trailers.
	Length uint64 `json:"length,omitempty"`
	// PayloadLength is the length of the payload in bytes, without
	// headers, trailers or the AEAD tag.
	PayloadLength uint64 `json:"payload_length,omitempty"`
	// Data is the raw contents, hex-encoded, when capture is enabled.
	Data string `json:"data,omitempty"`
}

// PacketHeader is the decoded header of a QUIC packet.
type PacketHeader struct {
	PacketType   PacketType `json:"packet_type"`
	PacketNumber uint64     `json:"packet_number"`
	Flags        *uint8     `json:"flags,omitempty"`
	Token        *Token     `json:"token,omitempty"`
	// Length is the packet_number plus payload length, as encoded in long
	// headers.
	Length  *uint16 `json:"length,omitempty"`
	Version string  `json:"version,omitempty"`
	SCIL    *uint8  `json:"scil,omitempty"`
	DCIL    *uint8  `json:"dcil,omitempty"`
	SCID    string  `json:"scid,omitempty"`
	DCID    string  `json:"dcid,omitempty"`
}

// PreferredAddress mirrors the preferred_address transport parameter.
type PreferredAddress struct {
	IPv4                string `json:"ip_v4,omitempty"`
	IPv6                string `json:"ip_v6,omitempty"`
	PortV4              uint16 `json:"port_v4,omitempty"`
	PortV6              uint16 `json:"port_v6,omitempty"`
	ConnectionID        string `json:"connection_id"`
	StatelessResetToken string `json:"stateless_reset_token"`
}

// VersionInformation reports the versions each side offered and the one
// chosen.
type VersionInformation struct {
	ServerVersions []string `json:"server_versions,omitempty"`
	ClientVersions []string `json:"client_versions,omitempty"`
	ChosenVersion  string   `json:"chosen_version,omitempty"`
}

func (VersionInformation) Category() EventCategory { return CategoryTransport }
func (VersionInformation) Type() string            { return "version_information" }

// AlpnInformation reports the ALPN values each side offered and the one
// chosen.
type AlpnInformation struct {
	ServerAlpns []string `json:"server_alpns,omitempty"`
	ClientAlpns []string `json:"client_alpns,omitempty"`
	ChosenAlpn  string   `json:"chosen_alpn,omitempty"`
}

func (AlpnInformation) Category() EventCategory { return CategoryTransport }
func (AlpnInformation) Type() string            { return "alpn_information" }

// TransportOwner indicates which endpoint an event's values belong to.
type TransportOwner string

// Transport owners.
const (
	OwnerLocal  TransportOwner = "local"
	OwnerRemote TransportOwner = "remote"
)

// TransportParametersSet records the transport parameters in effect after
// the handshake, for one endpoint.
type TransportParametersSet struct {
	Owner                           TransportOwner    `json:"owner,omitempty"`
	ResumptionAllowed               *bool             `json:"resumption_allowed,omitempty"`
	EarlyDataEnabled                *bool             `json:"early_data_enabled,omitempty"`
	TLSCipher                       string            `json:"tls_cipher,omitempty"`
	AEADTagLength                   *uint8            `json:"aead_tag_length,omitempty"`
	OriginalDestinationConnectionID string            `json:"original_destination_connection_id,omitempty"`
	InitialSourceConnectionID       string            `json:"initial_source_connection_id,omitempty"`
	RetrySourceConnectionID         string            `json:"retry_source_connection_id,omitempty"`
	StatelessResetToken             string            `json:"stateless_reset_token,omitempty"`
	DisableActiveMigration          *bool             `json:"disable_active_migration,omitempty"`
	MaxIdleTimeout                  *uint64           `json:"max_idle_timeout,omitempty"`
	MaxUDPPayloadSize               *uint32           `json:"max_udp_payload_size,omitempty"`
	AckDelayExponent                *uint16           `json:"ack_delay_exponent,omitempty"`
	MaxAckDelay                     *uint16           `json:"max_ack_delay,omitempty"`
	ActiveConnectionIDLimit         *uint32           `json:"active_connection_id_limit,omitempty"`
	InitialMaxData                  *uint64           `json:"initial_max_data,omitempty"`
	InitialMaxStreamDataBidiLocal   *uint64           `json:"initial_max_stream_data_bidi_local,omitempty"`
	InitialMaxStreamDataBidiRemote  *uint64           `json:"initial_max_stream_data_bidi_remote,omitempty"`
	InitialMaxStreamDataUni         *uint64           `json:"initial_max_stream_data_uni,omitempty"`
	InitialMaxStreamsBidi           *uint64           `json:"initial_max_streams_bidi,omitempty"`
	InitialMaxStreamsUni            *uint64           `json:"initial_max_streams_uni,omitempty"`
	PreferredAddress                *PreferredAddress `json:"preferred_address,omitempty"`
}

func (TransportParametersSet) Category() EventCategory { return CategoryTransport }
func (TransportParametersSet) Type() string            { return "parameters_set" }

// TransportParametersRestored records the parameters carried over from a
// previous connection for 0-RTT.
type TransportParametersRestored struct {
	DisableActiveMigration         *bool   `json:"disable_active_migration,omitempty"`
	MaxIdleTimeout                 *uint64 `json:"max_idle_timeout,omitempty"`
	MaxUDPPayloadSize              *uint32 `json:"max_udp_payload_size,omitempty"`
	ActiveConnectionIDLimit        *uint32 `json:"active_connection_id_limit,omitempty"`
	InitialMaxData                 *uint64 `json:"initial_max_data,omitempty"`
	InitialMaxStreamDataBidiLocal  *uint64 `json:"initial_max_stream_data_bidi_local,omitempty"`
	InitialMaxStreamDataBidiRemote *uint64 `json:"initial_max_stream_data_bidi_remote,omitempty"`
	InitialMaxStreamDataUni        *uint64 `json:"initial_max_stream_data_uni,omitempty"`
	InitialMaxStreamsBidi          *uint64 `json:"initial_max_streams_bidi,omitempty"`
	InitialMaxStreamsUni           *uint64 `json:"initial_max_streams_uni,omitempty"`
}

func (TransportParametersRestored) Category() EventCategory { return CategoryTransport }
func (TransportParametersRestored) Type() string            { return "parameters_restored" }

// PacketSent records a packet handed to the sender.
type PacketSent struct {
	Header              PacketHeader `json:"header"`
	Frames              []Frame      `json:"frames,omitempty"`
	IsCoalesced         *bool        `json:"is_coalesced,omitempty"`
	RetryToken          *Token       `json:"retry_token,omitempty"`
	StatelessResetToken string       `json:"stateless_reset_token,omitempty"`
	SupportedVersions   []string     `json:"supported_versions,omitempty"`
	Raw                 *RawInfo     `json:"raw,omitempty"`
	DatagramID          *uint32      `json:"datagram_id,omitempty"`
	SendAtTime          *float64     `json:"send_at_time,omitempty"`
	Trigger             string       `json:"trigger,omitempty"`
}

func (PacketSent) Category() EventCategory { return CategoryTransport }
func (PacketSent) Type() string            { return "packet_sent" }

// PacketReceived records a packet successfully decrypted and parsed.
type PacketReceived struct {
	Header              PacketHeader `json:"header"`
	Frames              []Frame      `json:"frames,omitempty"`
	IsCoalesced         *bool        `json:"is_coalesced,omitempty"`
	RetryToken          *Token       `json:"retry_token,omitempty"`
	StatelessResetToken string       `json:"stateless_reset_token,omitempty"`
	SupportedVersions   []string     `json:"supported_versions,omitempty"`
	Raw                 *RawInfo     `json:"raw,omitempty"`
	DatagramID          *uint32      `json:"datagram_id,omitempty"`
	Trigger             string       `json:"trigger,omitempty"`
}

func (PacketReceived) Category() EventCategory { return CategoryTransport }
func (PacketReceived) Type() string            { return "packet_received" }

// PacketDropped records a packet discarded before or during processing.
type PacketDropped struct {
	Header     *PacketHeader `json:"header,omitempty"`
	Raw        *RawInfo      `json:"raw,omitempty"`
	DatagramID *uint32       `json:"datagram_id,omitempty"`
	Trigger    string        `json:"trigger,omitempty"`
}

func (PacketDropped) Category() EventCategory { return CategoryTransport }
func (PacketDropped) Type() string            { return "packet_dropped" }

// PacketBuffered records a packet held for later processing, typically
// because its keys are not yet available.
type PacketBuffered struct {
	Header     *PacketHeader `json:"header,omitempty"`
	Raw        *RawInfo      `json:"raw,omitempty"`
	DatagramID *uint32       `json:"datagram_id,omitempty"`
	Trigger    string        `json:"trigger,omitempty"`
}

func (PacketBuffered) Category() EventCategory { return CategoryTransport }
func (PacketBuffered) Type() string            { return "packet_buffered" }

// PacketsAcked records packet numbers newly acknowledged by the peer.
type PacketsAcked struct {
	PacketNumberSpace PacketNumberSpace `json:"packet_number_space,omitempty"`
	PacketNumbers     []uint64          `json:"packet_numbers,omitempty"`
}

func (PacketsAcked) Category() EventCategory { return CategoryTransport }
func (PacketsAcked) Type() string            { return "packets_acked" }

// DatagramsSent records UDP datagrams passed to the socket.
type DatagramsSent struct {
	Count       *uint16   `json:"count,omitempty"`
	Raw         []RawInfo `json:"raw,omitempty"`
	DatagramIDs []uint32  `json:"datagram_ids,omitempty"`
}

func (DatagramsSent) Category() EventCategory { return CategoryTransport }
func (DatagramsSent) Type() string            { return "datagrams_sent" }

// DatagramsReceived records UDP datagrams read from the socket.
type DatagramsReceived struct {
	Count       *uint16   `json:"count,omitempty"`
	Raw         []RawInfo `json:"raw,omitempty"`
	DatagramIDs []uint32  `json:"datagram_ids,omitempty"`
}

func (DatagramsReceived) Category() EventCategory { return CategoryTransport }
func (DatagramsReceived) Type() string            { return "datagrams_received" }

// DatagramDropped records a UDP datagram discarded whole.
type DatagramDropped struct {
	Raw *RawInfo `json:"raw,omitempty"`
}

func (DatagramDropped) Category() EventCategory { return CategoryTransport }
func (DatagramDropped) Type() string            { return "datagram_dropped" }

// StreamState enumerates stream states, both the RFC 9000 state-machine
// states and the coarser granular states.
type StreamState string

// Stream states.
const (
	StreamStateIdle             StreamState = "idle"
	StreamStateOpen             StreamState = "open"
	StreamStateClosed           StreamState = "closed"
	StreamStateHalfClosedLocal  StreamState = "half_closed_local"
	StreamStateHalfClosedRemote StreamState = "half_closed_remote"
	StreamStateReady            StreamState = "ready"
	StreamStateSend             StreamState = "send"
	StreamStateDataSent         StreamState = "data_sent"
	StreamStateResetSent        StreamState = "reset_sent"
	StreamStateResetReceived    StreamState = "reset_received"
	StreamStateReceive          StreamState = "receive"
	StreamStateSizeKnown        StreamState = "size_known"
	StreamStateDataRead         StreamState = "data_read"
	StreamStateResetRead        StreamState = "reset_read"
	StreamStateDestroyed        StreamState = "destroyed"
)

// StreamStateUpdated records a stream state-machine transition.
type StreamStateUpdated struct {
	StreamID   uint64      `json:"stream_id"`
	StreamType StreamType  `json:"stream_type,omitempty"`
	Old        StreamState `json:"old,omitempty"`
	New        StreamState `json:"new"`
	StreamSide StreamSide  `json:"stream_side,omitempty"`
}

func (StreamStateUpdated) Category() EventCategory { return CategoryTransport }
func (StreamStateUpdated) Type() string            { return "stream_state_updated" }

// FramesProcessed records frames handled outside packet_sent/received, such
// as during connection migration replay.
type FramesProcessed struct {
	Frames        []Frame  `json:"frames,omitempty"`
	PacketNumbers []uint64 `json:"packet_numbers,omitempty"`
}

func (FramesProcessed) Category() EventCategory { return CategoryTransport }
func (FramesProcessed) Type() string            { return "frames_processed" }

// DataLocation names the buffers data_moved can flow between.
type DataLocation string

// Data locations.
const (
	DataLocationApplication DataLocation = "application"
	DataLocationTransport   DataLocation = "transport"
	DataLocationNetwork     DataLocation = "network"
)

// DataMoved records payload data crossing a layer boundary.
type DataMoved struct {
	StreamID *uint64      `json:"stream_id,omitempty"`
	Offset   *uint64      `json:"offset,omitempty"`
	Length   *uint64      `json:"length,omitempty"`
	From     DataLocation `json:"from,omitempty"`
	To       DataLocation `json:"to,omitempty"`
	Raw      *RawInfo     `json:"raw,omitempty"`
}

func (DataMoved) Category() EventCategory { return CategoryTransport }
func (DataMoved) Type() string            { return "data_moved" }
