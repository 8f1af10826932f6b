package qlog

// H3Owner indicates which endpoint an HTTP/3 event's values belong to.
type H3Owner string

// HTTP/3 owners.
const (
	H3OwnerLocal  H3Owner = "local"
	H3OwnerRemote H3Owner = "remote"
)

// H3StreamType enumerates the HTTP/3 unidirectional stream types plus the
// request stream.
type H3StreamType string

// HTTP/3 stream types.
const (
	H3StreamRequest     H3StreamType = "request"
	H3StreamControl     H3StreamType = "control"
	H3StreamPush        H3StreamType = "push"
	H3StreamReserved    H3StreamType = "reserved"
	H3StreamQpackEncode H3StreamType = "qpack_encode"
	H3StreamQpackDecode H3StreamType = "qpack_decode"
	H3StreamUnknownType H3StreamType = "unknown"
)

// H3FrameType enumerates HTTP/3 frame types by their qlog names.
type H3FrameType string

// HTTP/3 frame types.
const (
	H3FrameData           H3FrameType = "data"
	H3FrameHeaders        H3FrameType = "headers"
	H3FrameCancelPush     H3FrameType = "cancel_push"
	H3FrameSettings       H3FrameType = "settings"
	H3FramePushPromise    H3FrameType = "push_promise"
	H3FrameGoaway         H3FrameType = "goaway"
	H3FrameMaxPushID      H3FrameType = "max_push_id"
	H3FramePriorityUpdate H3FrameType = "priority_update"
	H3FrameReserved       H3FrameType = "reserved"
	H3FrameUnknownType    H3FrameType = "unknown"
)

// HTTPHeader is one name/value pair of a header list.
type HTTPHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Setting is one HTTP/3 or QPACK setting.
type Setting struct {
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

// H3Frame is one HTTP/3 frame, discriminated by FrameType.
type H3Frame struct {
	FrameType H3FrameType `json:"frame_type"`

	// headers, push_promise
	Headers []HTTPHeader `json:"headers,omitempty"`

	// cancel_push, push_promise
	PushID *uint64 `json:"push_id,omitempty"`

	// settings
	Settings []Setting `json:"settings,omitempty"`

	// goaway
	ID *uint64 `json:"id,omitempty"`

	// priority_update
	PriorityFieldValue string `json:"priority_field_value,omitempty"`

	// unknown
	RawFrameType *uint64 `json:"raw_frame_type,omitempty"`

	Raw *RawInfo `json:"raw,omitempty"`
}

// H3ParametersSet records the HTTP/3 settings in effect for one endpoint.
type H3ParametersSet struct {
	Owner                 H3Owner `json:"owner,omitempty"`
	MaxHeaderListSize     *uint64 `json:"max_header_list_size,omitempty"`
	MaxTableCapacity      *uint64 `json:"max_table_capacity,omitempty"`
	BlockedStreamsCount   *uint64 `json:"blocked_streams_count,omitempty"`
	EnableConnectProtocol *bool   `json:"enable_connect_protocol,omitempty"`
	H3Datagram            *bool   `json:"h3_datagram,omitempty"`
	WaitsForSettings      *bool   `json:"waits_for_settings,omitempty"`
}

func (H3ParametersSet) Category() EventCategory { return CategoryHTTP }
func (H3ParametersSet) Type() string            { return "parameters_set" }

// H3ParametersRestored records HTTP/3 settings carried over for 0-RTT.
type H3ParametersRestored struct {
	MaxHeaderListSize   *uint64 `json:"max_header_list_size,omitempty"`
	MaxTableCapacity    *uint64 `json:"max_table_capacity,omitempty"`
	BlockedStreamsCount *uint64 `json:"blocked_streams_count,omitempty"`
}

func (H3ParametersRestored) Category() EventCategory { return CategoryHTTP }
func (H3ParametersRestored) Type() string            { return "parameters_restored" }

// H3StreamTypeSet records the type assigned to a unidirectional stream.
type H3StreamTypeSet struct {
	StreamID uint64       `json:"stream_id"`
	Owner    H3Owner      `json:"owner,omitempty"`
	Old      H3StreamType `json:"old,omitempty"`
	New      H3StreamType `json:"new"`
	// AssociatedPushID links a push stream to its promise.
	AssociatedPushID *uint64 `json:"associated_push_id,omitempty"`
}

func (H3StreamTypeSet) Category() EventCategory { return CategoryHTTP }
func (H3StreamTypeSet) Type() string            { return "stream_type_set" }

// H3FrameCreated records an HTTP/3 frame queued for sending.
type H3FrameCreated struct {
	StreamID uint64   `json:"stream_id"`
	Length   *uint64  `json:"length,omitempty"`
	Frame    H3Frame  `json:"frame"`
	Raw      *RawInfo `json:"raw,omitempty"`
}

func (H3FrameCreated) Category() EventCategory { return CategoryHTTP }
func (H3FrameCreated) Type() string            { return "frame_created" }

// H3FrameParsed records an HTTP/3 frame parsed from a stream.
type H3FrameParsed struct {
	StreamID uint64   `json:"stream_id"`
	Length   *uint64  `json:"length,omitempty"`
	Frame    H3Frame  `json:"frame"`
	Raw      *RawInfo `json:"raw,omitempty"`
}

func (H3FrameParsed) Category() EventCategory { return CategoryHTTP }
func (H3FrameParsed) Type() string            { return "frame_parsed" }

// H3PushDecision enumerates the outcomes of a server push.
type H3PushDecision string

// Push decisions.
const (
	H3PushClaimed   H3PushDecision = "claimed"
	H3PushAbandoned H3PushDecision = "abandoned"
)

// H3PushResolved records the client's decision on a pushed resource.
type H3PushResolved struct {
	PushID   *uint64        `json:"push_id,omitempty"`
	StreamID *uint64        `json:"stream_id,omitempty"`
	Decision H3PushDecision `json:"decision"`
}

func (H3PushResolved) Category() EventCategory { return CategoryHTTP }
func (H3PushResolved) Type() string            { return "push_resolved" }
