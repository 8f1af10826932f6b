package qlog

// KeyType enumerates the secrets of the QUIC key schedule.
type KeyType string

// Key types.
const (
	KeyServerInitialSecret   KeyType = "server_initial_secret"
	KeyClientInitialSecret   KeyType = "client_initial_secret"
	KeyServerHandshakeSecret KeyType = "server_handshake_secret"
	KeyClientHandshakeSecret KeyType = "client_handshake_secret"
	KeyServer0RTTSecret      KeyType = "server_0rtt_secret"
	KeyClient0RTTSecret      KeyType = "client_0rtt_secret"
	KeyServer1RTTSecret      KeyType = "server_1rtt_secret"
	KeyClient1RTTSecret      KeyType = "client_1rtt_secret"
)

// KeyUpdated records a new key becoming active, either from the handshake
// key schedule or from a key update.
type KeyUpdated struct {
	KeyType KeyType `json:"key_type"`
	Old     string  `json:"old,omitempty"`
	New     string  `json:"new,omitempty"`
	// Generation counts 1-RTT key updates.
	Generation *uint32 `json:"generation,omitempty"`
	Trigger    string  `json:"trigger,omitempty"`
}

func (KeyUpdated) Category() EventCategory { return CategorySecurity }
func (KeyUpdated) Type() string            { return "key_updated" }

// KeyDiscarded records a key being dropped, typically when its encryption
// level is retired.
type KeyDiscarded struct {
	KeyType    KeyType `json:"key_type"`
	Key        string  `json:"key,omitempty"`
	Generation *uint32 `json:"generation,omitempty"`
	Trigger    string  `json:"trigger,omitempty"`
}

func (KeyDiscarded) Category() EventCategory { return CategorySecurity }
func (KeyDiscarded) Type() string            { return "key_discarded" }
