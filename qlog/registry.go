package qlog

import (
	"encoding/json"
	"reflect"
	"sync"
)

// Registry maps qlog event names to constructors of their concrete record
// types. A Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]func() EventData
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]func() EventData)}
}

// Register associates name with a constructor. Each name maps to exactly one
// constructor; registering an already-known name replaces the previous entry
// and reports the replacement.
func (r *Registry) Register(name string, ctor func() EventData) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, replaced = r.ctors[name]
	r.ctors[name] = ctor
	return replaced
}

// Lookup returns the constructor for name.
func (r *Registry) Lookup(name string) (func() EventData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctor, ok := r.ctors[name]
	return ctor, ok
}

// Names returns the registered event names, in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	return names
}

// Decode unmarshals an event payload into the concrete type registered for
// name. Unknown names decode into GenericEventData with the raw payload
// retained.
func (r *Registry) Decode(name string, data json.RawMessage) (EventData, error) {
	ctor, ok := r.Lookup(name)
	if !ok {
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return GenericEventData{EventName: name, Raw: raw}, nil
	}
	d := ctor()
	if err := json.Unmarshal(data, d); err != nil {
		return nil, err
	}
	return deref(d), nil
}

// deref unwraps the pointer a constructor returned, so that decoded events
// compare equal to the value-typed records that produced them.
func deref(d EventData) EventData {
	v := reflect.ValueOf(d)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		if e, ok := v.Elem().Interface().(EventData); ok {
			return e
		}
	}
	return d
}

// Package-level registry state. Registrations that happen before a registry
// is installed (package init of importers runs before anyone can call
// InstallRegistry) are queued and flushed on install.
var (
	registryMu      sync.Mutex
	defaultRegistry *Registry
	pendingRegs     []pendingReg
)

type pendingReg struct {
	name string
	ctor func() EventData
}

// RegisterEventType associates a qlog event name with a constructor in the
// package registry. If no registry has been installed yet the registration
// is queued and applied as soon as one is.
func RegisterEventType(name string, ctor func() EventData) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if defaultRegistry == nil {
		pendingRegs = append(pendingRegs, pendingReg{name: name, ctor: ctor})
		return
	}
	defaultRegistry.Register(name, ctor)
}

// InstallRegistry makes r the package registry and flushes any queued
// registrations into it, in the order they were made.
func InstallRegistry(r *Registry) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, p := range pendingRegs {
		r.Register(p.name, p.ctor)
	}
	pendingRegs = nil
	defaultRegistry = r
}

// DefaultRegistry returns the package registry, installing an empty one
// (and flushing queued registrations) on first use.
func DefaultRegistry() *Registry {
	registryMu.Lock()
	if defaultRegistry == nil {
		r := NewRegistry()
		for _, p := range pendingRegs {
			r.Register(p.name, p.ctor)
		}
		pendingRegs = nil
		defaultRegistry = r
	}
	r := defaultRegistry
	registryMu.Unlock()
	return r
}

func init() {
	for name, ctor := range builtinEvents {
		RegisterEventType(name, ctor)
	}
}

// builtinEvents lists the constructors for every record type this package
// defines. Constructors return pointers so that json.Unmarshal can populate
// them; Decode dereferences before returning.
var builtinEvents = map[string]func() EventData{
	"connectivity:server_listening":         func() EventData { return &ServerListening{} },
	"connectivity:connection_started":       func() EventData { return &ConnectionStarted{} },
	"connectivity:connection_closed":        func() EventData { return &ConnectionClosedEvent{} },
	"connectivity:connection_id_updated":    func() EventData { return &ConnectionIDUpdated{} },
	"connectivity:spin_bit_updated":         func() EventData { return &SpinBitUpdated{} },
	"connectivity:connection_state_updated": func() EventData { return &ConnectionStateUpdated{} },
	"connectivity:mtu_updated":              func() EventData { return &MTUUpdated{} },
	"transport:version_information":         func() EventData { return &VersionInformation{} },
	"transport:alpn_information":            func() EventData { return &AlpnInformation{} },
	"transport:parameters_set":              func() EventData { return &TransportParametersSet{} },
	"transport:parameters_restored":         func() EventData { return &TransportParametersRestored{} },
	"transport:packet_sent":                 func() EventData { return &PacketSent{} },
	"transport:packet_received":             func() EventData { return &PacketReceived{} },
	"transport:packet_dropped":              func() EventData { return &PacketDropped{} },
	"transport:packet_buffered":             func() EventData { return &PacketBuffered{} },
	"transport:packets_acked":               func() EventData { return &PacketsAcked{} },
	"transport:datagrams_sent":              func() EventData { return &DatagramsSent{} },
	"transport:datagrams_received":          func() EventData { return &DatagramsReceived{} },
	"transport:datagram_dropped":            func() EventData { return &DatagramDropped{} },
	"transport:stream_state_updated":        func() EventData { return &StreamStateUpdated{} },
	"transport:frames_processed":            func() EventData { return &FramesProcessed{} },
	"transport:data_moved":                  func() EventData { return &DataMoved{} },
	"security:key_updated":                  func() EventData { return &KeyUpdated{} },
	"security:key_discarded":                func() EventData { return &KeyDiscarded{} },
	"recovery:parameters_set":               func() EventData { return &RecoveryParametersSet{} },
	"recovery:metrics_updated":              func() EventData { return &MetricsUpdated{} },
	"recovery:congestion_state_updated":     func() EventData { return &CongestionStateUpdated{} },
	"recovery:loss_timer_updated":           func() EventData { return &LossTimerUpdated{} },
	"recovery:packet_lost":                  func() EventData { return &PacketLost{} },
	"recovery:marked_for_retransmit":        func() EventData { return &MarkedForRetransmit{} },
	"recovery:ecn_state_updated":            func() EventData { return &ECNStateUpdated{} },
	"http:parameters_set":                   func() EventData { return &H3ParametersSet{} },
	"http:parameters_restored":              func() EventData { return &H3ParametersRestored{} },
	"http:stream_type_set":                  func() EventData { return &H3StreamTypeSet{} },
	"http:frame_created":                    func() EventData { return &H3FrameCreated{} },
	"http:frame_parsed":                     func() EventData { return &H3FrameParsed{} },
	"http:push_resolved":                    func() EventData { return &H3PushResolved{} },
	"qpack:state_updated":                   func() EventData { return &QpackStateUpdated{} },
	"qpack:stream_state_updated":            func() EventData { return &QpackStreamStateUpdated{} },
	"qpack:dynamic_table_updated":           func() EventData { return &QpackDynamicTableUpdated{} },
	"qpack:headers_encoded":                 func() EventData { return &QpackHeadersEncoded{} },
	"qpack:headers_decoded":                 func() EventData { return &QpackHeadersDecoded{} },
	"qpack:instruction_created":             func() EventData { return &QpackInstructionCreated{} },
	"qpack:instruction_parsed":              func() EventData { return &QpackInstructionParsed{} },
}
