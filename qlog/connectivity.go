package qlog

// ConnectionState enumerates the coarse connection lifecycle states.
type ConnectionState string

// Connection states.
const (
	ConnectionAttempted          ConnectionState = "attempted"
	ConnectionPeerValidated      ConnectionState = "peer_validated"
	ConnectionHandshakeStarted   ConnectionState = "handshake_started"
	ConnectionEarlyWrite         ConnectionState = "early_write"
	ConnectionHandshakeComplete  ConnectionState = "handshake_complete"
	ConnectionHandshakeConfirmed ConnectionState = "handshake_confirmed"
	ConnectionClosing            ConnectionState = "closing"
	ConnectionDraining           ConnectionState = "draining"
	ConnectionClosed             ConnectionState = "closed"
)

// ServerListening records a server ready to accept connections.
type ServerListening struct {
	IPv4          string  `json:"ip_v4,omitempty"`
	IPv6          string  `json:"ip_v6,omitempty"`
	PortV4        *uint16 `json:"port_v4,omitempty"`
	PortV6        *uint16 `json:"port_v6,omitempty"`
	RetryRequired *bool   `json:"retry_required,omitempty"`
}

func (ServerListening) Category() EventCategory { return CategoryConnectivity }
func (ServerListening) Type() string            { return "server_listening" }

// ConnectionStarted records the establishment of a new connection, from the
// vantage point's perspective.
type ConnectionStarted struct {
	IPVersion string  `json:"ip_version,omitempty"`
	SrcIP     string  `json:"src_ip"`
	DstIP     string  `json:"dst_ip"`
	Protocol  string  `json:"protocol,omitempty"`
	SrcPort   *uint16 `json:"src_port,omitempty"`
	DstPort   *uint16 `json:"dst_port,omitempty"`
	SrcCID    string  `json:"src_cid,omitempty"`
	DstCID    string  `json:"dst_cid,omitempty"`
}

func (ConnectionStarted) Category() EventCategory { return CategoryConnectivity }
func (ConnectionStarted) Type() string            { return "connection_started" }

// ConnectionClosedEvent records connection teardown. The owner indicates
// which endpoint initiated the close.
type ConnectionClosedEvent struct {
	Owner           TransportOwner    `json:"owner,omitempty"`
	ConnectionCode  *TransportError   `json:"connection_code,omitempty"`
	ApplicationCode *ApplicationError `json:"application_code,omitempty"`
	InternalCode    *uint32           `json:"internal_code,omitempty"`
	Reason          string            `json:"reason,omitempty"`
	Trigger         string            `json:"trigger,omitempty"`
}

func (ConnectionClosedEvent) Category() EventCategory { return CategoryConnectivity }
func (ConnectionClosedEvent) Type() string            { return "connection_closed" }

// ConnectionIDUpdated records a connection ID change on either side.
type ConnectionIDUpdated struct {
	Owner TransportOwner `json:"owner,omitempty"`
	Old   string         `json:"old,omitempty"`
	New   string         `json:"new,omitempty"`
}

func (ConnectionIDUpdated) Category() EventCategory { return CategoryConnectivity }
func (ConnectionIDUpdated) Type() string            { return "connection_id_updated" }

// SpinBitUpdated records a change of the latency spin bit.
type SpinBitUpdated struct {
	State bool `json:"state"`
}

func (SpinBitUpdated) Category() EventCategory { return CategoryConnectivity }
func (SpinBitUpdated) Type() string            { return "spin_bit_updated" }

// ConnectionStateUpdated records a transition of the coarse connection
// lifecycle state machine.
type ConnectionStateUpdated struct {
	Old ConnectionState `json:"old,omitempty"`
	New ConnectionState `json:"new"`
}

func (ConnectionStateUpdated) Category() EventCategory { return CategoryConnectivity }
func (ConnectionStateUpdated) Type() string            { return "connection_state_updated" }

// MTUUpdated records the result of path MTU discovery.
type MTUUpdated struct {
	Old  *uint16 `json:"old,omitempty"`
	New  uint16  `json:"new"`
	Done *bool   `json:"done,omitempty"`
}

func (MTUUpdated) Category() EventCategory { return CategoryConnectivity }
func (MTUUpdated) Type() string            { return "mtu_updated" }
